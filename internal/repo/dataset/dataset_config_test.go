package dataset_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-signup/internal/repo/dataset"
)

func TestNewSourceFactory(t *testing.T) {
	t.Parallel()

	cfg := dataset.Config{
		HTTP:   dataset.HTTPSourceConfig{URL: "https://dataset.test/raw"},
		File:   dataset.FileSourceConfig{Path: "dataset.json"},
		SQLite: dataset.SQLiteSourceConfig{DatabasePath: filepath.Join(t.TempDir(), "dataset.db")},
	}

	tests := []struct {
		source   string
		wantType any
	}{
		{dataset.SourceHTTP, &dataset.HTTPSource{}},
		{dataset.SourceFile, &dataset.FileSource{}},
		{dataset.SourceSQLite, &dataset.SQLiteSource{}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			cfg := cfg
			cfg.Source = tt.source

			factory, err := dataset.NewSourceFactory(cfg, nil)
			require.NoError(t, err)

			src, err := factory()
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, src)

			if closer, ok := src.(io.Closer); ok {
				assert.NoError(t, closer.Close())
			}
		})
	}

	_, err := dataset.NewSourceFactory(dataset.Config{Source: "ftp"}, nil)
	assert.ErrorIs(t, err, dataset.ErrUnknownSource)
}

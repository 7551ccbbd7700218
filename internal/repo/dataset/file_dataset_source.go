package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mkrupp/homecase-signup/internal/domain"
	"github.com/mkrupp/homecase-signup/internal/infra/logging"
)

// FileSourceConfig holds configuration for the file dataset source.
type FileSourceConfig struct {
	// Path is the filesystem path of a JSON dataset document
	Path string `env:"PATH" default:"var/storage/dataset.json"`
}

// FileSource reads the dataset from a local JSON document.
type FileSource struct {
	log logging.Logger
	cfg FileSourceConfig
}

var _ Source = (*FileSource)(nil)

// FileSourceFactory creates a factory function that returns a new FileSource.
func FileSourceFactory(cfg FileSourceConfig) SourceFactory {
	return func() (Source, error) {
		return NewFileSource(cfg), nil
	}
}

// NewFileSource creates a new FileSource with the given configuration.
func NewFileSource(cfg FileSourceConfig) *FileSource {
	return &FileSource{
		log: logging.GetLogger("repo.dataset.file_source").With(logging.Group("file", "path", cfg.Path)),
		cfg: cfg,
	}
}

// Fetch implements Source.Fetch.
// A missing or unreadable file wraps domain.ErrRequestFailed.
func (s *FileSource) Fetch(ctx context.Context) (_ domain.ValidationDataset, err error) {
	defer func() {
		if err != nil {
			s.log.WarnContext(ctx, "dataset load failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "dataset loaded")
		}
	}()

	file, err := os.Open(s.cfg.Path)
	if err != nil {
		return domain.ValidationDataset{}, errors.Join(domain.ErrRequestFailed, fmt.Errorf("open dataset: %w", err))
	}
	defer file.Close()

	ds, err := Decode(file)
	if err != nil {
		return domain.ValidationDataset{}, fmt.Errorf("read dataset: %w", err)
	}

	return ds, nil
}

package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-signup/internal/repo/dataset"
	"github.com/mkrupp/homecase-signup/internal/repo/dataset/fixture"
	"github.com/mkrupp/homecase-signup/internal/svc/signupsvc"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers and readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func newFixtureValidator(t *testing.T) *signupsvc.CredentialValidator {
	t.Helper()

	validator := signupsvc.NewCredentialValidator(context.Background(), fixture.Source(), signupsvc.DefaultValidatorConfig())
	require.NoError(t, validator.WaitReady(context.Background()))

	return validator
}

func TestRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"serve", "check", "form", "dataset"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	sub, _, err := cmd.Find([]string{"dataset", "import"})
	require.NoError(t, err)
	assert.Equal(t, "import", sub.Name())

	assert.NotNil(t, cmd.PersistentFlags().Lookup("env-file"))
}

func TestCheckRequiresAValue(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"check"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--username")
}

func TestRunCheck(t *testing.T) {
	validator := newFixtureValidator(t)

	tests := []struct {
		name     string
		cfg      checkConfig
		username bool
		password bool
		want     string
		wantErr  error
	}{
		{
			name:     "valid credentials",
			cfg:      checkConfig{username: "newcomer", password: "correct-horse"},
			username: true,
			password: true,
			want:     "username: ok\npassword: ok\n",
		},
		{
			name:     "taken username",
			cfg:      checkConfig{username: "Admin"},
			username: true,
			want:     "username: This username already exists\n",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "insecure password",
			cfg:      checkConfig{password: "PASSWORD"},
			password: true,
			want:     "password: Password is insecure\n",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "short username only fails its own field",
			cfg:      checkConfig{username: "abc", password: "correct-horse"},
			username: true,
			password: true,
			want:     "username: Username too short\npassword: ok\n",
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			err := runCheck(context.Background(), validator, tt.cfg, tt.username, tt.password, &out)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunForm(t *testing.T) {
	validator := newFixtureValidator(t)

	in, feed := io.Pipe()
	out := &syncBuffer{}

	done := make(chan error, 1)
	go func() {
		done <- runForm(context.Background(), validator, signupsvc.PipelineConfig{Debounce: 10 * time.Millisecond}, in, out)
	}()

	send := func(line string) {
		_, err := io.WriteString(feed, line+"\n")
		require.NoError(t, err)
	}

	waitFor := func(text string) {
		require.Eventually(t, func() bool {
			return strings.Contains(out.String(), text)
		}, time.Second, 5*time.Millisecond, "missing %q in %q", text, out.String())
	}

	send("username admin")
	waitFor("username: This username already exists\n")

	send("password password")
	waitFor("password: Password is insecure\n")

	send("submit")
	waitFor("form cannot be submitted\n")

	send("username newcomer")
	waitFor("username: ok\n")

	send("password correct-horse")
	waitFor("password: ok\n")

	send("submit")
	waitFor("form can be submitted for \"newcomer\"\n")

	send("shout")
	waitFor("unknown command \"shout\"\n")

	send("quit")

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("form did not quit")
	}

	require.NoError(t, feed.Close())
}

func TestRunFormEndOfInput(t *testing.T) {
	validator := newFixtureValidator(t)

	var out bytes.Buffer

	err := runForm(context.Background(), validator, signupsvc.PipelineConfig{}, strings.NewReader("username admin\n"), &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRunDatasetImportAndShow(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := dataset.NewSQLiteSource(dataset.SQLiteSourceConfig{
		DatabasePath: filepath.Join(dir, "dataset.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var importOut bytes.Buffer

	err = runDatasetImport(ctx, fixture.Source(), store, &importOut)
	require.NoError(t, err)
	assert.Equal(t, "imported 4 usernames, 3 passwords, 4 insecure passwords\n", importOut.String())

	var showOut bytes.Buffer

	require.NoError(t, runDatasetShow(ctx, store, &showOut))

	got, err := dataset.Decode(&showOut)
	require.NoError(t, err)
	assert.True(t, fixture.MustLoad().Equal(got))
}

func TestRunDatasetImportMissingFile(t *testing.T) {
	store, err := dataset.NewSQLiteSource(dataset.SQLiteSourceConfig{
		DatabasePath: filepath.Join(t.TempDir(), "dataset.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	src := dataset.NewFileSource(dataset.FileSourceConfig{Path: filepath.Join(t.TempDir(), "missing.json")})

	err = runDatasetImport(context.Background(), src, store, io.Discard)
	require.Error(t, err)
}

package dataset

import (
	"errors"
	"fmt"
	"net/http"
)

// Source kinds selectable through configuration.
const (
	SourceHTTP   = "http"
	SourceFile   = "file"
	SourceSQLite = "sqlite"
)

// ErrUnknownSource is returned for a source kind that is not supported.
var ErrUnknownSource = errors.New("unknown dataset source")

// Config selects and configures the dataset source.
type Config struct {
	// Source is one of "http", "file" or "sqlite"
	Source string `env:"SOURCE" default:"http" validate:"oneof=http file sqlite"`

	HTTP   HTTPSourceConfig   `envPrefix:"HTTP_"`
	File   FileSourceConfig   `envPrefix:"FILE_"`
	SQLite SQLiteSourceConfig `envPrefix:"SQLITE_"`
}

// NewSourceFactory returns the factory of the configured source.
// httpClient is only used by the http source and may be nil.
func NewSourceFactory(cfg Config, httpClient *http.Client) (SourceFactory, error) {
	switch cfg.Source {
	case SourceHTTP:
		return HTTPSourceFactory(cfg.HTTP, httpClient), nil
	case SourceFile:
		return FileSourceFactory(cfg.File), nil
	case SourceSQLite:
		return SQLiteSourceFactory(cfg.SQLite), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}

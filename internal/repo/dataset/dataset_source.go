package dataset

import (
	"context"

	"github.com/mkrupp/homecase-signup/internal/domain"
)

// Source provides the dataset sign-up candidates are validated against.
type Source interface {
	// Fetch retrieves the current dataset.
	// Failures wrap domain.ErrNetwork; the caller decides on a fallback.
	Fetch(ctx context.Context) (domain.ValidationDataset, error)
}

// SourceFactory is a function that creates a new Source instance.
// Returns an error if initialization fails.
type SourceFactory func() (Source, error)

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context) (domain.ValidationDataset, error)

// Fetch implements Source.Fetch.
func (f SourceFunc) Fetch(ctx context.Context) (domain.ValidationDataset, error) {
	return f(ctx)
}

// Package fixture bundles a deterministic dataset document for tests and offline runs.
package fixture

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"github.com/mkrupp/homecase-signup/internal/domain"
	"github.com/mkrupp/homecase-signup/internal/repo/dataset"
)

//go:embed mock_response.json
var mockResponse []byte

// Bytes returns a copy of the bundled dataset document.
func Bytes() []byte {
	return bytes.Clone(mockResponse)
}

// Load decodes the bundled dataset document.
func Load() (domain.ValidationDataset, error) {
	if len(mockResponse) == 0 {
		return domain.ValidationDataset{}, fmt.Errorf("load fixture: %w", domain.ErrRequestFailed)
	}

	ds, err := dataset.Decode(bytes.NewReader(mockResponse))
	if err != nil {
		return domain.ValidationDataset{}, fmt.Errorf("load fixture: %w", err)
	}

	return ds, nil
}

// MustLoad is like Load but panics if the bundled document is missing or malformed.
func MustLoad() domain.ValidationDataset {
	ds, err := Load()
	if err != nil {
		panic(err)
	}

	return ds
}

// Source returns a dataset.Source serving the bundled document.
func Source() dataset.Source {
	return dataset.SourceFunc(func(context.Context) (domain.ValidationDataset, error) {
		return Load()
	})
}

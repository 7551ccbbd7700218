package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/mkrupp/homecase-signup/internal/domain"
)

// ErrMissingKey is returned when a required dataset key is absent or null.
var ErrMissingKey = errors.New("missing key")

// ErrTrailingData is returned when the document is followed by anything but whitespace.
var ErrTrailingData = errors.New("trailing data")

// datasetDocument is the wire shape of the remote dataset.
// Keys map 1:1 onto the published document.
type datasetDocument struct {
	ExistingUsernames []string `json:"existingUsernames"`
	ExistingPasswords []string `json:"existingPasswords"`
	InsecurePasswords []string `json:"insecurePasswords"`
}

// Decode reads a JSON dataset document.
// The body must hold exactly one document with all three lists present;
// any failure wraps domain.ErrParsingFailed.
func Decode(r io.Reader) (domain.ValidationDataset, error) {
	var doc datasetDocument

	dec := json.NewDecoder(r)

	if err := dec.Decode(&doc); err != nil {
		return domain.ValidationDataset{}, errors.Join(domain.ErrParsingFailed, fmt.Errorf("decode dataset: %w", err))
	}

	// the document must be the only value in the body
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return domain.ValidationDataset{}, errors.Join(domain.ErrParsingFailed, fmt.Errorf("%w after dataset", ErrTrailingData))
	}

	switch {
	case doc.ExistingUsernames == nil:
		return domain.ValidationDataset{}, missingKey("existingUsernames")
	case doc.ExistingPasswords == nil:
		return domain.ValidationDataset{}, missingKey("existingPasswords")
	case doc.InsecurePasswords == nil:
		return domain.ValidationDataset{}, missingKey("insecurePasswords")
	}

	return domain.NewValidationDataset(doc.ExistingUsernames, doc.ExistingPasswords, doc.InsecurePasswords), nil
}

func missingKey(key string) error {
	return errors.Join(domain.ErrParsingFailed, fmt.Errorf("%w: %s", ErrMissingKey, key))
}

// Encode writes ds as a JSON dataset document.
func Encode(w io.Writer, ds domain.ValidationDataset) error {
	doc := datasetDocument{
		ExistingUsernames: ds.TakenUsernames(),
		ExistingPasswords: ds.TakenPasswords(),
		InsecurePasswords: ds.InsecurePasswords(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	return nil
}

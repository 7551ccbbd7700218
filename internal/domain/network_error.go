package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork is the kind of every dataset fetch failure.
	ErrNetwork = errors.New("network error")
	// ErrRequestFailed is returned when the remote dataset could not be retrieved.
	ErrRequestFailed = fmt.Errorf("%w: request failed", ErrNetwork)
	// ErrParsingFailed is returned when the remote dataset could not be decoded.
	ErrParsingFailed = fmt.Errorf("%w: parsing failed", ErrNetwork)
)

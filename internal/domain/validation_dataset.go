package domain

import (
	"slices"
	"strings"
)

// DefaultInsecurePassword is the only entry of the default dataset.
const DefaultInsecurePassword = "12345678"

// ValidationDataset holds the credentials a sign-up candidate is checked against.
// A dataset is immutable once constructed; all lookups are case-insensitive.
type ValidationDataset struct {
	takenUsernames    []string
	takenPasswords    []string
	insecurePasswords []string

	usernameSet map[string]struct{}
	passwordSet map[string]struct{}
	insecureSet map[string]struct{}
}

// NewValidationDataset creates a dataset from the given lists.
// The lists are copied, later changes by the caller are not observed.
func NewValidationDataset(takenUsernames, takenPasswords, insecurePasswords []string) ValidationDataset {
	return ValidationDataset{
		takenUsernames:    cloneList(takenUsernames),
		takenPasswords:    cloneList(takenPasswords),
		insecurePasswords: cloneList(insecurePasswords),
		usernameSet:       foldSet(takenUsernames),
		passwordSet:       foldSet(takenPasswords),
		insecureSet:       foldSet(insecurePasswords),
	}
}

// DefaultValidationDataset returns the dataset used until a remote dataset has been loaded.
func DefaultValidationDataset() ValidationDataset {
	return NewValidationDataset(nil, nil, []string{DefaultInsecurePassword})
}

// TakenUsernames returns a copy of the taken usernames in their original order.
func (d ValidationDataset) TakenUsernames() []string {
	return cloneList(d.takenUsernames)
}

// TakenPasswords returns a copy of the taken passwords in their original order.
func (d ValidationDataset) TakenPasswords() []string {
	return cloneList(d.takenPasswords)
}

// InsecurePasswords returns a copy of the insecure passwords in their original order.
func (d ValidationDataset) InsecurePasswords() []string {
	return cloneList(d.insecurePasswords)
}

// IsUsernameTaken reports whether username matches a taken username, ignoring case.
func (d ValidationDataset) IsUsernameTaken(username string) bool {
	return contains(d.usernameSet, username)
}

// IsPasswordTaken reports whether password matches a taken password, ignoring case.
func (d ValidationDataset) IsPasswordTaken(password string) bool {
	return contains(d.passwordSet, password)
}

// IsPasswordInsecure reports whether password matches an insecure password, ignoring case.
func (d ValidationDataset) IsPasswordInsecure(password string) bool {
	return contains(d.insecureSet, password)
}

// Equal reports whether both datasets hold the same lists in the same order.
func (d ValidationDataset) Equal(other ValidationDataset) bool {
	return slices.Equal(d.takenUsernames, other.takenUsernames) &&
		slices.Equal(d.takenPasswords, other.takenPasswords) &&
		slices.Equal(d.insecurePasswords, other.insecurePasswords)
}

// FoldCase returns the case-insensitive lookup key of s.
func FoldCase(s string) string {
	return strings.ToLower(s)
}

func contains(set map[string]struct{}, s string) bool {
	_, ok := set[FoldCase(s)]

	return ok
}

func foldSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))

	for _, s := range list {
		set[FoldCase(s)] = struct{}{}
	}

	return set
}

func cloneList(list []string) []string {
	if list == nil {
		return []string{}
	}

	return slices.Clone(list)
}

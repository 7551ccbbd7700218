package signupsvc

import "github.com/mkrupp/homecase-signup/internal/domain"

// Form field names, also used to tag validation contexts.
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// FormState is a snapshot of the sign-up form as seen by the UI.
// A zero UsernameError or PasswordError means the field currently has no error.
type FormState struct {
	Username      string
	Password      string
	UsernameError domain.UsernameError
	PasswordError domain.PasswordError
	GeneralError  error
}

// HasUsernameError reports whether the username field shows an error.
func (s FormState) HasUsernameError() bool {
	return s.UsernameError != 0
}

// HasPasswordError reports whether the password field shows an error.
func (s FormState) HasPasswordError() bool {
	return s.PasswordError != 0
}

// CanSubmit reports whether the sign-up button is enabled:
// no field error, no general error and both fields filled in.
func (s FormState) CanSubmit() bool {
	return !s.HasUsernameError() &&
		!s.HasPasswordError() &&
		s.GeneralError == nil &&
		s.Username != "" &&
		s.Password != ""
}

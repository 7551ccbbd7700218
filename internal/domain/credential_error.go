package domain

// UsernameError is a user-facing reason a username candidate was rejected.
type UsernameError int

// Username validation failures, in the order they are checked.
const (
	UsernameTooShort UsernameError = iota + 1
	UsernameTooLong
	UsernameAlreadyExists
)

func (e UsernameError) Error() string {
	switch e {
	case UsernameTooShort:
		return "Username too short"
	case UsernameTooLong:
		return "Username too long"
	case UsernameAlreadyExists:
		return "This username already exists"
	default:
		return "Invalid username"
	}
}

// Code returns a stable machine-readable identifier of the failure.
func (e UsernameError) Code() string {
	return failureCode(int(e))
}

// PasswordError is a user-facing reason a password candidate was rejected.
type PasswordError int

// Password validation failures, in the order they are checked.
const (
	PasswordTooShort PasswordError = iota + 1
	PasswordTooLong
	PasswordAlreadyExists
	PasswordInsecure
)

func (e PasswordError) Error() string {
	switch e {
	case PasswordTooShort:
		return "Password is too short"
	case PasswordTooLong:
		return "Password is too long"
	case PasswordAlreadyExists:
		return "Password already exists"
	case PasswordInsecure:
		return "Password is insecure"
	default:
		return "Invalid password"
	}
}

// Code returns a stable machine-readable identifier of the failure.
func (e PasswordError) Code() string {
	return failureCode(int(e))
}

// username and password failures share their numbering up to AlreadyExists.
func failureCode(n int) string {
	switch n {
	case 1:
		return "too_short"
	case 2:
		return "too_long"
	case 3:
		return "already_exists"
	case 4:
		return "insecure"
	default:
		return "invalid"
	}
}

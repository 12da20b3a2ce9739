package session

import "errors"

var (
	// ErrMissingSecret means the server was started without a signing secret,
	// no session can be issued or verified until an operator fixes that.
	ErrMissingSecret = errors.New("session: missing signing secret")

	// ErrInvalidClaims is returned when trying to issue a token without a subject
	ErrInvalidClaims = errors.New("session: claims must have a non-empty subject")
)

type (
	InvalidSecret struct {
		VarName string
		cause   error
	}
)

func (i InvalidSecret) Error() string {
	if i.cause != nil {
		return "session: unable to read secret from " + i.VarName + ", cause " + i.cause.Error()
	}
	return "session: unable to read secret from " + i.VarName
}

func (i InvalidSecret) Unwrap() error {
	return i.cause
}

func (i InvalidSecret) Is(target error) bool {
	other, ok := target.(InvalidSecret)
	return ok && other.VarName == i.VarName
}

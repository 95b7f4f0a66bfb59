package model

import "errors"

// Kind classifies a domain error so the transport layer can map it to a response
// without knowing every sentinel.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a domain error with a kind. Sentinels below are *Error values, so
// errors.Is keeps comparing by identity.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// ValidationError builds an ad-hoc validation error (e.g. "invalid allergy: X").
func ValidationError(message string) error {
	return newError(KindValidation, message)
}

// KindOf returns the kind of the first domain error in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Authentication errors
var (
	// ErrUnauthenticated is returned when an operation needs an acting user and none was resolved
	ErrUnauthenticated = newError(KindAuth, "authentication required")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = newError(KindAuth, "invalid credentials")
)

package response

import (
	"errors"
)

// Error is a domain error carrying the HTTP status it maps to and a
// machine-readable kind for API consumers.
type Error struct {
	Code int
	Kind string
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Kind == t.Kind && e.Err.Error() == t.Err.Error()
}

func NewKindError(code int, kind string, err string) error {
	return &Error{Code: code, Kind: kind, Err: errors.New(err)}
}

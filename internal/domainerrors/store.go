package domainerrors

import (
	"errors"

	"github.com/krbank/backoffice/internal/sentinel"
)

// FromStore translates a repository error. Errors already in the taxonomy
// pass through; sentinel errors get the matching code with msg; anything
// else is internal.
func FromStore(err error, msg string) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return Wrap(err, CodeNotFound, msg)
	case errors.Is(err, sentinel.ErrConflict):
		return Wrap(err, CodeConflict, msg)
	case errors.Is(err, sentinel.ErrDependency):
		return Wrap(err, CodeDependency, msg)
	default:
		return Wrap(err, CodeInternal, msg)
	}
}

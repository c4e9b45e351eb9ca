package errors

import "github.com/pkg/errors"

// Wrap returns a new error wrapping the passed error with a stack trace
// attached. If the passed error is nil, nil is returned.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	return errors.WithStack(err)
}

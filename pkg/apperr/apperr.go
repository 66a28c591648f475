package apperr

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Error is the single application error. It records where the failure was
// caught and keeps the original cause reachable through Unwrap.
type Error struct {
	Op    string
	File  string
	Line  int
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("error occurred in [%s] line [%d]: %s: %v", e.File, e.Line, e.Op, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Wrap rewraps err with the caller's location. A nil err returns nil and an
// err that is already an *Error is returned as is.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file = "unknown"
	}
	return &Error{Op: op, File: filepath.Base(file), Line: line, Cause: err}
}

// Wrapf is Wrap for a freshly formatted cause.
func Wrapf(op, format string, args ...any) error {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file = "unknown"
	}
	return &Error{Op: op, File: filepath.Base(file), Line: line, Cause: fmt.Errorf(format, args...)}
}

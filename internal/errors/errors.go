// Package errors wraps stdlib errors and pkg/errors behind one import so
// call sites get stack traces on wrap without juggling two packages.
package errors

import (
	"context"
	stderrors "errors"
	"net"

	pkgerrors "github.com/pkg/errors"
)

// New returns an error that formats as the given text.
func New(text string) error {
	return stderrors.New(text)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// Wrap returns an error annotating err with a stack trace and the supplied message.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

// Wrapf returns an error annotating err with a stack trace and the format specifier.
func Wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// WithStack annotates err with a stack trace at the point WithStack was called.
func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

// Errorf formats according to a format specifier and returns an error with stack trace.
func Errorf(format string, args ...any) error {
	return pkgerrors.Errorf(format, args...)
}

// IsTimeout reports whether err was caused by a deadline: either a context
// deadline or a network timeout from the HTTP client.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	// Context deadlines, including the ones http.Client wraps in *url.Error
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Dial and read timeouts surface as net.Error
	var netErr net.Error

	return stderrors.As(err, &netErr) && netErr.Timeout()
}

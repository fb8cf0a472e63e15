// Package service implements booking, coupon, payment, cancellation and
// check-in rules on top of the repositories.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a business rule rejection; handlers answer 400
	// with the message.
	ErrValidation = errors.New("validation failed")
	// ErrPermission marks an action the caller may not perform.
	ErrPermission = errors.New("permission denied")
)

// Error is a user visible rejection.  Its message is shown verbatim.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func throw(format string, args ...any) error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func deny(msg string) error {
	return &Error{kind: ErrPermission, msg: msg}
}

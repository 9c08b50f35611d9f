package binding

import (
	"errors"
	"fmt"

	"github.com/roach88/listbind/internal/observable"
)

// Error is returned for binding contract failures.
//
// Errors from conversion functions and custom property maps are never
// wrapped in an Error; they reach the caller unchanged.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Binder is the name of the binder that raised the error, if any.
	Binder string

	// Side is the list the offending change arrived on (violations and
	// unknown actions).
	Side Side

	// Action is the structural action involved, if any.
	Action observable.Action

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause (validation failures).
	Err error
}

// ErrorCode categorizes binding errors.
type ErrorCode string

const (
	// ErrCodeOneWayViolation: the non-authoritative list was mutated while
	// the binder is one-way. The mutation stands; it was not propagated.
	ErrCodeOneWayViolation ErrorCode = "ONE_WAY_VIOLATION"

	// ErrCodeUnsupportedConfiguration: the operation is forbidden for this
	// binder (pinned source, relay target without a raiser, ...).
	ErrCodeUnsupportedConfiguration ErrorCode = "UNSUPPORTED_CONFIGURATION"

	// ErrCodeInvalidConfiguration: a Config failed validation.
	ErrCodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"

	// ErrCodeUnknownAction: a change notification carried an action kind
	// the binder does not know. The notification source is broken.
	ErrCodeUnknownAction ErrorCode = "UNKNOWN_ACTION"

	// ErrCodeClosed: the binder was used after Close.
	ErrCodeClosed ErrorCode = "BINDER_CLOSED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Binder != "" && e.Side != "" {
		msg = fmt.Sprintf("%s (binder=%s, side=%s)", msg, e.Binder, e.Side)
	} else if e.Side != "" {
		msg = fmt.Sprintf("%s (side=%s)", msg, e.Side)
	} else if e.Binder != "" {
		msg = fmt.Sprintf("%s (binder=%s)", msg, e.Binder)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// IsOneWayViolation reports whether err is a one-way binding violation.
func IsOneWayViolation(err error) bool {
	return hasCode(err, ErrCodeOneWayViolation)
}

// IsUnsupportedConfiguration reports whether err is an unsupported
// configuration error.
func IsUnsupportedConfiguration(err error) bool {
	return hasCode(err, ErrCodeUnsupportedConfiguration)
}

// IsInvalidConfiguration reports whether err is a configuration validation
// error.
func IsInvalidConfiguration(err error) bool {
	return hasCode(err, ErrCodeInvalidConfiguration)
}

// IsUnknownAction reports whether err is an unknown action error.
func IsUnknownAction(err error) bool {
	return hasCode(err, ErrCodeUnknownAction)
}

// IsClosed reports whether err was caused by using a closed binder.
func IsClosed(err error) bool {
	return hasCode(err, ErrCodeClosed)
}

// NewOneWayViolation creates the error raised when side is written while
// the binder only propagates from the other side.
func NewOneWayViolation(binder string, side Side, action observable.Action) *Error {
	return &Error{
		Code:    ErrCodeOneWayViolation,
		Message: fmt.Sprintf("list %s is not the source of truth and the binding is one-way; %s was not propagated", side, action),
		Binder:  binder,
		Side:    side,
		Action:  action,
	}
}

// NewUnsupportedConfiguration creates an unsupported configuration error.
func NewUnsupportedConfiguration(binder, message string) *Error {
	return &Error{
		Code:    ErrCodeUnsupportedConfiguration,
		Message: message,
		Binder:  binder,
	}
}

// NewUnknownAction creates the error for an unrecognised action kind.
func NewUnknownAction(binder string, side Side, action observable.Action) *Error {
	return &Error{
		Code:    ErrCodeUnknownAction,
		Message: fmt.Sprintf("unknown change action %s", action),
		Binder:  binder,
		Side:    side,
		Action:  action,
		Details: map[string]string{"action": fmt.Sprintf("%d", int(action))},
	}
}

func newClosedError(binder string) *Error {
	return &Error{
		Code:    ErrCodeClosed,
		Message: "binder is closed",
		Binder:  binder,
	}
}

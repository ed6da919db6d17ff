// Package errs defines the error kinds surfaced by the scheduling engine.
package errs

import "fmt"

// Kind classifies an engine error
type Kind string

const (
	KindInvalidTiming Kind = "invalid_timing"
	KindInvalidRange  Kind = "invalid_range"
	KindNotInTiming   Kind = "not_in_timing"
	KindDecode        Kind = "decode"
)

// Error represents an input-validation failure of the engine
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is; they match any Error of the same kind.
var (
	ErrInvalidTiming = &Error{Kind: KindInvalidTiming}
	ErrInvalidRange  = &Error{Kind: KindInvalidRange}
	ErrNotInTiming   = &Error{Kind: KindNotInTiming}
	ErrDecode        = &Error{Kind: KindDecode}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// InvalidTiming reports a non-positive duration or block count, or an unusable timezone
func InvalidTiming(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTiming, Message: fmt.Sprintf(format, args...)}
}

// InvalidRange reports a range whose end precedes its start
func InvalidRange(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRange, Message: fmt.Sprintf(format, args...)}
}

// NotInTiming reports an instant outside a timing
func NotInTiming(format string, args ...any) *Error {
	return &Error{Kind: KindNotInTiming, Message: fmt.Sprintf(format, args...)}
}

// Decode reports a malformed encoded week
func Decode(format string, args ...any) *Error {
	return &Error{Kind: KindDecode, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new error of the given kind
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

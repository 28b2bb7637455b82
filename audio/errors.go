// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

// Error codes. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	// ErrInvalidParam reports an out of range argument: a bad enum, a zero
	// frequency, a malformed pan or speed value.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrInvalidObject reports an operation that is not allowed in the
	// current state of the object (attached, playing, released ...).
	ErrInvalidObject = errors.New("invalid object state")
	// ErrGeneric reports any other failure, most commonly a driver error.
	ErrGeneric = errors.New("generic error")
)

var (
	ErrAlreadyAttached  = errors.New("object is already attached")
	ErrFormatMismatch   = errors.New("format does not match")
	ErrVoiceBusy        = errors.New("voice already has an attachment")
	ErrPlaying          = errors.New("object is playing")
	ErrNoData           = errors.New("sample has no data")
	ErrNoFeeder         = errors.New("stream has no feeder")
	ErrFragmentsFull    = errors.New("pending fragment list is full")
	ErrUnknownFragment  = errors.New("fragment does not belong to stream")
	ErrUnknownExtension = errors.New("no decoder registered for extension")
	ErrReleased         = errors.New("buffer has been released")
	ErrCycle            = errors.New("attachment would create a cycle")
	ErrUnsupportedProp  = errors.New("property not supported")
	ErrSystemClosed     = errors.New("audio system is closed")

	errVoiceParent = errors.New("not supported while attached to a voice")
	errNotChild    = errors.New("not attached to this mixer")
	errHasChildren = errors.New("mixer has attached children")
)

// Error carries the error code, the operation that failed and the cause.
type Error struct {
	Code error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Code.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Code}
	}
	return []error{e.Code, e.Err}
}

func invalidParam(op, format string, args ...any) error {
	return &Error{Code: ErrInvalidParam, Op: op, Err: fmt.Errorf(format, args...)}
}

func invalidObject(op string, err error) error {
	return &Error{Code: ErrInvalidObject, Op: op, Err: err}
}

func generic(op string, err error) error {
	return &Error{Code: ErrGeneric, Op: op, Err: err}
}

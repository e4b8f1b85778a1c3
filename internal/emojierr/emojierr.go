// Package emojierr defines the failure kinds a render can report.
//
// Every error returned by the render pipeline either is, or wraps, an
// [*Error] carrying one of the kinds below. Callers branch on the kind with
// [errors.Is] against the sentinel values or with [KindOf].
package emojierr

import (
	"errors"
	"fmt"
)

// Kind classifies a render failure.
type Kind int

const (
	// Unknown is reported by [KindOf] for errors outside the render pipeline.
	Unknown Kind = iota
	UnknownFont
	UnsupportedEffectForRequestKind
	UnsupportedImageFormat
	DecodeError
	ArtifactTooLarge
	InvalidRequest
)

// String returns the kind name used in logs and CLI output.
func (k Kind) String() string {
	switch k {
	case UnknownFont:
		return "UnknownFont"
	case UnsupportedEffectForRequestKind:
		return "UnsupportedEffectForRequestKind"
	case UnsupportedImageFormat:
		return "UnsupportedImageFormat"
	case DecodeError:
		return "DecodeError"
	case ArtifactTooLarge:
		return "ArtifactTooLarge"
	case InvalidRequest:
		return "InvalidRequest"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is matching. An [*Error] matches the sentinel of its kind.
var (
	ErrUnknownFont                     = &Error{Kind: UnknownFont}
	ErrUnsupportedEffectForRequestKind = &Error{Kind: UnsupportedEffectForRequestKind}
	ErrUnsupportedImageFormat          = &Error{Kind: UnsupportedImageFormat}
	ErrDecode                          = &Error{Kind: DecodeError}
	ErrArtifactTooLarge                = &Error{Kind: ArtifactTooLarge}
	ErrInvalidRequest                  = &Error{Kind: InvalidRequest}
)

// Error is a tagged render failure with a human-readable detail and an
// optional underlying cause.
type Error struct {
	// Kind is the failure classification.
	Kind Kind
	// Detail describes what was rejected.
	Detail string
	// Err is the underlying cause, if any.
	Err error
}

// New returns an [*Error] of the given kind with a formatted detail.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap returns an [*Error] of the given kind that unwraps to err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an [*Error] of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first [*Error] in err's chain, or [Unknown].
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

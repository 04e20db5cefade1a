package hcsave

import (
	"errors"

	intr "github.com/dadrian/hcsave/internal"
)

// Error carries the kind, stream offset and tree location of a decode
// failure. Match kinds with errors.Is(err, ErrTruncatedInput) and friends.
type Error = intr.Error

// ErrorKind classifies decoding errors.
type ErrorKind = intr.ErrorKind

// Path locates a value in the decoded tree. It renders as
// $.field#index for object fields and [index] for array elements.
type Path = intr.Path

// PathElem is one step of a Path.
type PathElem = intr.PathElem

const (
	ErrTruncatedInput    = intr.ErrTruncatedInput
	ErrMalformedMarker   = intr.ErrMalformedMarker
	ErrUnknownMarker     = intr.ErrUnknownMarker
	ErrUnexpectedMarker  = intr.ErrUnexpectedMarker
	ErrBadLengthSentinel = intr.ErrBadLengthSentinel
	ErrInvalidBoolValue  = intr.ErrInvalidBoolValue
	ErrInvalidUTF8       = intr.ErrInvalidUTF8
	ErrIO                = intr.ErrIO
	ErrTooDeep           = intr.ErrTooDeep
)

// Accessor errors.
var (
	ErrMissingField = errors.New("not found")
	ErrWrongKind    = errors.New("wrong kind")
	ErrOutOfRange   = errors.New("index out of range")
)

package internal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind classifies decoding errors. It implements error so callers
// can match a kind with errors.Is.
type ErrorKind int

const (
	ErrTruncatedInput ErrorKind = iota + 1
	ErrMalformedMarker
	ErrUnknownMarker
	ErrUnexpectedMarker
	ErrBadLengthSentinel
	ErrInvalidBoolValue
	ErrInvalidUTF8
	ErrIO
	ErrTooDeep
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTruncatedInput:
		return "truncated input"
	case ErrMalformedMarker:
		return "malformed marker"
	case ErrUnknownMarker:
		return "unknown marker"
	case ErrUnexpectedMarker:
		return "unexpected marker"
	case ErrBadLengthSentinel:
		return "bad length sentinel"
	case ErrInvalidBoolValue:
		return "invalid bool value"
	case ErrInvalidUTF8:
		return "invalid utf-8"
	case ErrIO:
		return "i/o error"
	case ErrTooDeep:
		return "nesting too deep"
	default:
		return "error kind " + strconv.Itoa(int(k))
	}
}

func (k ErrorKind) Error() string { return k.String() }

// PathElem is one step from a composite value to one of its children.
// Object fields carry both the field name and its zero-based position;
// array elements carry only the position.
type PathElem struct {
	Field bool
	Name  string
	Index uint32
}

func (p PathElem) String() string {
	if p.Field {
		return "." + p.Name + "#" + strconv.FormatUint(uint64(p.Index), 10)
	}
	return "[" + strconv.FormatUint(uint64(p.Index), 10) + "]"
}

// Path locates a value inside the decoded tree, outermost step first.
type Path []PathElem

func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var sb strings.Builder
	sb.WriteByte('$')
	for _, e := range p {
		sb.WriteString(e.String())
	}
	return sb.String()
}

// Error carries offset, location and classification for diagnostics.
type Error struct {
	Kind   ErrorKind
	Offset int64
	Path   Path
	Detail string

	// Value is the offending byte for ErrUnknownMarker,
	// ErrBadLengthSentinel and ErrInvalidBoolValue.
	Value byte
	// Expected and Found are set for ErrUnexpectedMarker.
	Expected Kind
	Found    Kind

	// Err is the underlying reader failure for ErrIO.
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "hcsave: %v at offset %d", e.Kind, e.Offset)
	if len(e.Path) > 0 {
		fmt.Fprintf(&sb, " in %s", e.Path)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches an ErrorKind target against e.Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && e.Kind == k
}

// Annotate prepends elem to the path of err as it propagates out of a
// composite value. Errors that are not *Error are returned unchanged.
func Annotate(err error, elem PathElem) error {
	var e *Error
	if errors.As(err, &e) {
		e.Path = append(Path{elem}, e.Path...)
	}
	return err
}

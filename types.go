package hcsave

import intr "github.com/dadrian/hcsave/internal"

// Kind identifies the type of an encoded value. Only byte 0 of a marker
// carries the kind; bytes 1-3 are always zero.
type Kind = intr.Kind

const (
	KindBool        = intr.KindBool
	KindInt         = intr.KindInt
	KindUnknown     = intr.KindUnknown
	KindString      = intr.KindString
	KindCoordinates = intr.KindCoordinates
	KindReference   = intr.KindReference
	KindObject      = intr.KindObject
	KindArray       = intr.KindArray
)

// Omission records a value that decoded to the null placeholder and was
// left out of its parent.
type Omission struct {
	Path Path
	Kind Kind
}

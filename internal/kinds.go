package internal

import "fmt"

// Kind is the discriminant carried in byte 0 of a type marker.
type Kind byte

const (
	KindBool        Kind = 0x01
	KindInt         Kind = 0x02
	KindUnknown     Kind = 0x03
	KindString      Kind = 0x04
	KindCoordinates Kind = 0x05
	KindReference   Kind = 0x12
	KindObject      Kind = 0x14
	KindArray       Kind = 0x15
)

// Valid reports whether k is one of the recognized discriminants.
func (k Kind) Valid() bool {
	switch k {
	case KindBool, KindInt, KindUnknown, KindString, KindCoordinates,
		KindReference, KindObject, KindArray:
		return true
	default:
		return false
	}
}

// IsPlaceholder reports whether values of kind k decode to the null
// placeholder instead of a real value.
func (k Kind) IsPlaceholder() bool { return k == KindUnknown || k == KindReference }

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUnknown:
		return "unknown"
	case KindString:
		return "string"
	case KindCoordinates:
		return "coordinates"
	case KindReference:
		return "reference"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(0x%02X)", byte(k))
	}
}

// Package savetest builds save-format byte streams for tests, including
// deliberately malformed ones.
package savetest

import (
	"bytes"
	"encoding/binary"
	"math"

	intr "github.com/dadrian/hcsave/internal"
)

// Builder accumulates encoded values. Methods append and return the
// builder so fixtures read top to bottom like the data they describe.
type Builder struct {
	buf bytes.Buffer
}

// New returns an empty Builder.
func New() *Builder { return &Builder{} }

// Bytes returns the encoded stream.
func (b *Builder) Bytes() []byte { return bytes.Clone(b.buf.Bytes()) }

// Save returns the stream prefixed with a 4-byte size marker, the way
// save blobs are stored on disk.
func (b *Builder) Save() []byte {
	out := binary.LittleEndian.AppendUint32(nil, uint32(b.buf.Len()))
	return append(out, b.buf.Bytes()...)
}

// Raw appends p verbatim.
func (b *Builder) Raw(p ...byte) *Builder {
	b.buf.Write(p)
	return b
}

// Marker appends a type marker with the given discriminant.
func (b *Builder) Marker(k intr.Kind) *Builder { return b.Raw(byte(k), 0, 0, 0) }

// U32 appends v little-endian.
func (b *Builder) U32(v uint32) *Builder {
	b.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
	return b
}

// Bool appends a Bool value.
func (b *Builder) Bool(v bool) *Builder {
	var p byte
	if v {
		p = 1
	}
	return b.Marker(intr.KindBool).Raw(p, 0, 0, 0)
}

// Int appends an Int value.
func (b *Builder) Int(v uint32) *Builder { return b.Marker(intr.KindInt).U32(v) }

// Unknown appends a 0x03 value with the given opaque payload.
func (b *Builder) Unknown(raw uint32) *Builder { return b.Marker(intr.KindUnknown).U32(raw) }

// Reference appends a 0x12 value, which has no payload.
func (b *Builder) Reference() *Builder { return b.Marker(intr.KindReference) }

// String appends a String value with zero padding.
func (b *Builder) String(s string) *Builder {
	return b.Marker(intr.KindString).StringPayload([]byte(s))
}

// StringPayload appends a length-prefixed, zero-padded byte string
// without a marker. p need not be valid UTF-8.
func (b *Builder) StringPayload(p []byte) *Builder {
	b.U32(uint32(len(p)))
	b.buf.Write(p)
	for i := uint32(0); i < intr.Padding(uint32(len(p))); i++ {
		b.buf.WriteByte(0)
	}
	return b
}

// Coordinates appends a Coordinates value.
func (b *Builder) Coordinates(x, y float32) *Builder {
	return b.Marker(intr.KindCoordinates).U32(math.Float32bits(x)).U32(math.Float32bits(y))
}

// Object appends an Object header declaring n fields. Each field must
// follow as Field(name) and then a value.
func (b *Builder) Object(n uint32) *Builder {
	c := intr.EncodeCount(n)
	return b.Marker(intr.KindObject).Raw(c[:]...)
}

// Array appends an Array header declaring n elements.
func (b *Builder) Array(n uint32) *Builder {
	c := intr.EncodeCount(n)
	return b.Marker(intr.KindArray).Raw(c[:]...)
}

// Field appends an object field name.
func (b *Builder) Field(name string) *Builder { return b.String(name) }

package internal

import (
	"encoding/binary"
	"io"
	"math"
)

var le = binary.LittleEndian

// U32 reinterprets b as a little-endian uint32.
func U32(b [4]byte) uint32 { return le.Uint32(b[:]) }

// F32 reinterprets b as a little-endian IEEE 754 float32.
func F32(b [4]byte) float32 { return math.Float32frombits(le.Uint32(b[:])) }

// ReadFull reads exactly len(buf) bytes and returns how many were read.
// A short read reports io.ErrUnexpectedEOF, or io.EOF when nothing was
// read at all.
func ReadFull(r io.Reader, buf []byte) (int, error) {
	var off int
	for off < len(buf) {
		n, err := r.Read(buf[off:])
		if n > 0 {
			off += n
		}
		if err != nil {
			if off == len(buf) {
				return off, nil
			}
			if err == io.EOF && off > 0 {
				return off, io.ErrUnexpectedEOF
			}
			return off, err
		}
		if n == 0 {
			// io.Reader made no progress; avoid infinite loop
			return off, io.ErrUnexpectedEOF
		}
	}
	return off, nil
}

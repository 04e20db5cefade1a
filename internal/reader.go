package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// readChunk caps how much is read into memory ahead of the bytes
// actually arriving, so an absurd declared string length fails as
// truncated input instead of allocating it up front.
const readChunk = 64 << 10

// Reader decodes framing primitives from a forward-only byte stream.
// It never seeks or peeks; every read either consumes exactly the bytes
// it asked for or fails.
type Reader struct {
	r   io.Reader
	off int64
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.off }

func (r *Reader) fill(buf []byte, what string) error {
	start := r.off
	n, err := ReadFull(r.r, buf)
	r.off += int64(n)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Error{
			Kind:   ErrTruncatedInput,
			Offset: start,
			Detail: fmt.Sprintf("%s: need %d bytes, got %d", what, len(buf), n),
		}
	}
	return &Error{Kind: ErrIO, Offset: start, Detail: what, Err: err}
}

// ReadFixed4 reads exactly four bytes.
func (r *Reader) ReadFixed4() ([4]byte, error) {
	var b [4]byte
	err := r.fill(b[:], "read 4 bytes")
	return b, err
}

// ReadMarker reads a type marker. Bytes 1-3 must be zero and byte 0 must
// be a recognized kind.
func (r *Reader) ReadMarker() (Kind, error) {
	start := r.off
	b, err := r.ReadFixed4()
	if err != nil {
		return 0, err
	}
	if b[1]|b[2]|b[3] != 0 {
		return 0, &Error{
			Kind:   ErrMalformedMarker,
			Offset: start,
			Detail: fmt.Sprintf("reserved bytes must be zero, got % X", b),
		}
	}
	k := Kind(b[0])
	if !k.Valid() {
		return 0, &Error{
			Kind:   ErrUnknownMarker,
			Offset: start,
			Value:  b[0],
			Detail: fmt.Sprintf("unrecognized marker 0x%02X", b[0]),
		}
	}
	return k, nil
}

// ReadLengthField reads the length that follows a String, Object or
// Array marker. It panics for any other kind.
func (r *Reader) ReadLengthField(k Kind) (uint32, error) {
	start := r.off
	b, err := r.ReadFixed4()
	if err != nil {
		return 0, err
	}
	switch k {
	case KindString:
		return U32(b), nil
	case KindObject, KindArray:
		n, ok := DecodeCount(b)
		if !ok {
			return 0, &Error{
				Kind:   ErrBadLengthSentinel,
				Offset: start,
				Value:  b[3],
				Detail: fmt.Sprintf("%v length must end in 0x%02X, got % X", k, LengthSentinel, b),
			}
		}
		return n, nil
	default:
		panic("internal: no length field for " + k.String())
	}
}

// ReadString reads a length-prefixed UTF-8 string and skips its padding.
// When expectMarker is set the string must be preceded by a String
// marker. Invalid UTF-8 fails before any padding is consumed. Padding
// content is not checked.
func (r *Reader) ReadString(expectMarker bool) (string, error) {
	if expectMarker {
		start := r.off
		k, err := r.ReadMarker()
		if err != nil {
			return "", err
		}
		if k != KindString {
			return "", &Error{
				Kind:     ErrUnexpectedMarker,
				Offset:   start,
				Expected: KindString,
				Found:    k,
				Detail:   fmt.Sprintf("expected %v, found %v", KindString, k),
			}
		}
	}
	n, err := r.ReadLengthField(KindString)
	if err != nil {
		return "", err
	}

	start := r.off
	buf := GetBuffer()
	defer PutBuffer(buf)
	if err := r.readInto(buf, n); err != nil {
		return "", err
	}
	if !utf8.Valid(buf.Bytes()) {
		return "", &Error{
			Kind:   ErrInvalidUTF8,
			Offset: start,
			Detail: fmt.Sprintf("string of %d bytes", n),
		}
	}
	s := buf.String()

	if pad := Padding(n); pad != 0 {
		var skip [3]byte
		if err := r.fill(skip[:pad], "string padding"); err != nil {
			return "", err
		}
	}
	return s, nil
}

// readInto appends exactly n bytes from the stream to buf, growing it
// one chunk at a time.
func (r *Reader) readInto(buf *bytes.Buffer, n uint32) error {
	start := r.off
	remaining := int64(n)
	for remaining > 0 {
		m := remaining
		if m > readChunk {
			m = readChunk
		}
		buf.Grow(int(m))
		p := buf.AvailableBuffer()[:m]
		got, err := ReadFull(r.r, p)
		buf.Write(p[:got])
		r.off += int64(got)
		remaining -= int64(got)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return &Error{
					Kind:   ErrTruncatedInput,
					Offset: start,
					Detail: fmt.Sprintf("string bytes: need %d bytes, got %d", n, buf.Len()),
				}
			}
			return &Error{Kind: ErrIO, Offset: start, Detail: "string bytes", Err: err}
		}
	}
	return nil
}

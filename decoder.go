package hcsave

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	intr "github.com/dadrian/hcsave/internal"
)

// DefaultMaxDepth is the nesting limit used when Decoder.MaxDepth is zero.
const DefaultMaxDepth = 1024

// Decoder reads save-format values from an io.Reader.
//
// Decoded values are bool, uint32, string, float64 (coordinate
// components), Object and Array. A Decoder is not safe for concurrent
// use; independent decoders share nothing.
type Decoder struct {
	// Logger receives a warning for every placeholder value. Nil means
	// slog.Default().
	Logger *slog.Logger
	// KeepOmitted keeps placeholder values as nil entries instead of
	// dropping them from their parent.
	KeepOmitted bool
	// MaxDepth bounds how deeply objects and arrays may nest. A composite
	// beyond it fails with ErrTooDeep. Zero means DefaultMaxDepth.
	MaxDepth int

	r       *intr.Reader
	path    Path
	omitted []Omission
	raw     [4]byte // payload of the last Unknown value
}

// NewDecoder creates a decoder reading from r. Wrap r in a bufio.Reader
// when it is a file; the decoder issues many 4-byte reads.
func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: intr.NewReader(r)} }

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int64 { return d.r.Offset() }

// Omissions lists the placeholder values encountered so far inside
// objects and arrays.
func (d *Decoder) Omissions() []Omission { return d.omitted }

// Decode reads one value. A top-level placeholder decodes to nil.
func (d *Decoder) Decode() (any, error) {
	d.path = d.path[:0]
	v, k, err := d.decodeValue()
	if err != nil {
		return nil, err
	}
	if k.IsPlaceholder() {
		d.placeholder(nil, k)
	}
	return v, nil
}

// DecodeSave skips the 4-byte size marker at the start of a save blob
// and decodes the value that follows.
func (d *Decoder) DecodeSave() (any, error) {
	if _, err := d.r.ReadFixed4(); err != nil {
		if e, ok := err.(*Error); ok {
			e.Detail = "size marker: " + e.Detail
		}
		return nil, err
	}
	return d.Decode()
}

func (d *Decoder) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d *Decoder) maxDepth() int {
	if d.MaxDepth > 0 {
		return d.MaxDepth
	}
	return DefaultMaxDepth
}

// decodeValue reads a marker and its payload. For placeholder kinds it
// returns a nil value along with the kind; the caller reports it.
func (d *Decoder) decodeValue() (any, Kind, error) {
	start := d.r.Offset()
	k, err := d.r.ReadMarker()
	if err != nil {
		return nil, 0, err
	}
	switch k {
	case KindBool:
		payload := d.r.Offset()
		b, err := d.r.ReadFixed4()
		if err != nil {
			return nil, k, err
		}
		switch b[0] {
		case 0:
			return false, k, nil
		case 1:
			return true, k, nil
		default:
			return nil, k, &Error{
				Kind:   ErrInvalidBoolValue,
				Offset: payload,
				Value:  b[0],
				Detail: fmt.Sprintf("bool payload must be 0 or 1, got 0x%02X", b[0]),
			}
		}

	case KindInt:
		b, err := d.r.ReadFixed4()
		if err != nil {
			return nil, k, err
		}
		return intr.U32(b), k, nil

	case KindUnknown:
		b, err := d.r.ReadFixed4()
		if err != nil {
			return nil, k, err
		}
		d.raw = b
		return nil, k, nil

	case KindString:
		s, err := d.r.ReadString(false)
		if err != nil {
			return nil, k, err
		}
		return s, k, nil

	case KindCoordinates:
		x, err := d.r.ReadFixed4()
		if err != nil {
			return nil, k, err
		}
		y, err := d.r.ReadFixed4()
		if err != nil {
			return nil, k, err
		}
		return Object{"x": float64(intr.F32(x)), "y": float64(intr.F32(y))}, k, nil

	case KindReference:
		return nil, k, nil

	case KindObject, KindArray:
		if depth := len(d.path) + 1; depth > d.maxDepth() {
			return nil, k, &Error{
				Kind:   ErrTooDeep,
				Offset: start,
				Detail: fmt.Sprintf("%v at depth %d exceeds limit of %d", k, depth, d.maxDepth()),
			}
		}
		if k == KindObject {
			v, err := d.decodeObject()
			return v, k, err
		}
		v, err := d.decodeArray()
		return v, k, err

	default:
		// ReadMarker only returns recognized kinds.
		panic("hcsave: unhandled kind " + k.String())
	}
}

func (d *Decoder) decodeObject() (Object, error) {
	n, err := d.r.ReadLengthField(KindObject)
	if err != nil {
		return nil, err
	}
	obj := make(Object, intr.CapacityHint(n))
	for i := uint32(0); i < n; i++ {
		name, err := d.r.ReadString(true)
		if err != nil {
			return nil, intr.Annotate(err, PathElem{Field: true, Index: i})
		}
		elem := PathElem{Field: true, Name: name, Index: i}
		v, k, err := d.child(elem)
		if err != nil {
			return nil, intr.Annotate(err, elem)
		}
		if k.IsPlaceholder() {
			d.placeholder(&elem, k)
			if !d.KeepOmitted {
				continue
			}
		}
		obj[name] = v
	}
	return obj, nil
}

func (d *Decoder) decodeArray() (Array, error) {
	n, err := d.r.ReadLengthField(KindArray)
	if err != nil {
		return nil, err
	}
	arr := make(Array, 0, intr.CapacityHint(n))
	for i := uint32(0); i < n; i++ {
		elem := PathElem{Index: i}
		v, k, err := d.child(elem)
		if err != nil {
			return nil, intr.Annotate(err, elem)
		}
		if k.IsPlaceholder() {
			d.placeholder(&elem, k)
			if !d.KeepOmitted {
				continue
			}
		}
		arr = append(arr, v)
	}
	return arr, nil
}

// child decodes one nested value with elem pushed onto the current path.
func (d *Decoder) child(elem PathElem) (any, Kind, error) {
	d.path = append(d.path, elem)
	v, k, err := d.decodeValue()
	d.path = d.path[:len(d.path)-1]
	return v, k, err
}

// placeholder emits the single warning for a value of kind k that has no
// data. elem is nil for a top-level value; otherwise the value is
// recorded as an omission from its parent at d.path.
func (d *Decoder) placeholder(elem *PathElem, k Kind) {
	var msg string
	attrs := []any{"path", d.path.String(), "kind", k.String()}
	switch {
	case elem == nil:
		msg = "top-level value has no data, decoding as null"
	case elem.Field:
		msg = "got null value for field"
		attrs = append(attrs, "field", elem.Name, "index", elem.Index)
	default:
		msg = "got null value for element"
		attrs = append(attrs, "index", elem.Index)
	}
	if elem != nil {
		d.omitted = append(d.omitted, Omission{Path: append(slices.Clone(d.path), *elem), Kind: k})
		if d.KeepOmitted {
			msg += ", keeping as null"
		} else {
			msg += ", skipping"
		}
	}
	if k == KindUnknown {
		attrs = append(attrs, "raw", fmt.Sprintf("% X", d.raw))
	}
	d.logger().Warn(msg, attrs...)
}

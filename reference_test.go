package hcsave

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dadrian/hcsave/internal/savetest"
)

// assertDecodes decodes b and expects it to produce want and consume
// every byte.
func assertDecodes(t *testing.T, want any, b []byte) *Decoder {
	t.Helper()
	dec := NewDecoder(bytes.NewReader(b))
	dec.Logger = discardLogger()
	got, err := dec.Decode()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded value mismatch (-want +got):\n%s", diff)
	}
	if dec.Offset() != int64(len(b)) {
		t.Fatalf("consumed %d of %d bytes", dec.Offset(), len(b))
	}
	return dec
}

// assertFails decodes b and expects an *Error of the given kind.
func assertFails(t *testing.T, kind ErrorKind, b []byte) *Error {
	t.Helper()
	dec := NewDecoder(bytes.NewReader(b))
	dec.Logger = discardLogger()
	got, err := dec.Decode()
	if err == nil {
		t.Fatalf("expected %v, decoded %#v", kind, got)
	}
	if got != nil {
		t.Fatalf("partial value returned with error: %#v", got)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("got %v, want kind %v", err, kind)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}
	return e
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func capturingLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func Test_Bool(t *testing.T) {
	assertDecodes(t, false, []byte{0x01, 0, 0, 0, 0x00, 0, 0, 0})
	assertDecodes(t, true, []byte{0x01, 0, 0, 0, 0x01, 0, 0, 0})
	for _, b := range []byte{0x02, 0x80, 0xFF} {
		e := assertFails(t, ErrInvalidBoolValue, []byte{0x01, 0, 0, 0, b, 0, 0, 0})
		if e.Value != b {
			t.Fatalf("value=%02x want %02x", e.Value, b)
		}
		if e.Offset != 4 {
			t.Fatalf("offset=%d want 4", e.Offset)
		}
	}
}

func Test_Int(t *testing.T) {
	for _, n := range []uint32{0, 1, 42, 0x7FFFFFFF, 0x80000000, math.MaxUint32} {
		assertDecodes(t, n, savetest.New().Int(n).Bytes())
	}
	assertDecodes(t, uint32(0x12345678), []byte{0x02, 0, 0, 0, 0x78, 0x56, 0x34, 0x12})
}

func Test_String(t *testing.T) {
	for n := 0; n <= 300; n++ {
		s := strings.Repeat("z", n)
		assertDecodes(t, s, savetest.New().String(s).Bytes())
	}
	assertDecodes(t, "ÄÖÜ 日本", savetest.New().String("ÄÖÜ 日本").Bytes())
	// Exact byte layout: marker, length 5, bytes, 3 bytes of padding.
	assertDecodes(t, "hello", []byte{0x04, 0, 0, 0, 0x05, 0, 0, 0, 'h', 'e', 'l', 'l', 'o', 0, 0, 0})
}

func Test_StringInvalidUTF8(t *testing.T) {
	b := savetest.New().Marker(KindString).StringPayload([]byte{0xFF, 0xFE, 'a'}).Bytes()
	dec := NewDecoder(bytes.NewReader(b))
	dec.Logger = discardLogger()
	if _, err := dec.Decode(); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("got %v", err)
	}
	// marker + length + 3 payload bytes; the padding byte is left unread.
	if dec.Offset() != 11 {
		t.Fatalf("offset=%d want 11", dec.Offset())
	}
}

func Test_Coordinates(t *testing.T) {
	assertDecodes(t, Object{"x": 1.5, "y": -2.25}, savetest.New().Coordinates(1.5, -2.25).Bytes())
	// float32 values are widened exactly.
	assertDecodes(t, Object{"x": float64(float32(0.1)), "y": 0.0}, savetest.New().Coordinates(0.1, 0).Bytes())
}

func Test_UnknownMarker(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{0x99, 0, 0, 0, 0x01, 0, 0, 0}))
	_, err := dec.Decode()
	var e *Error
	if !errors.As(err, &e) || e.Kind != ErrUnknownMarker || e.Value != 0x99 {
		t.Fatalf("got %v", err)
	}
	if dec.Offset() != 4 {
		t.Fatalf("offset=%d want 4", dec.Offset())
	}
}

func Test_MalformedMarker(t *testing.T) {
	assertFails(t, ErrMalformedMarker, []byte{0x02, 0, 1, 0, 0, 0, 0, 0})
}

func Test_LengthSentinel(t *testing.T) {
	assertFails(t, ErrBadLengthSentinel, []byte{0x14, 0, 0, 0, 0x02, 0x00, 0x00, 0x00})
	assertFails(t, ErrBadLengthSentinel, []byte{0x15, 0, 0, 0, 0x02, 0x00, 0x00, 0x00})

	b := []byte{0x15, 0, 0, 0, 0x02, 0x00, 0x00, 0x80}
	b = append(b, savetest.New().Int(7).Bool(true).Bytes()...)
	assertDecodes(t, Array{uint32(7), true}, b)
}

func Test_EmptyComposites(t *testing.T) {
	assertDecodes(t, Object{}, savetest.New().Object(0).Bytes())
	assertDecodes(t, Array{}, savetest.New().Array(0).Bytes())
}

func Test_Object(t *testing.T) {
	b := savetest.New().Object(4).
		Field("name").String("Ada").
		Field("level").Int(12).
		Field("alive").Bool(true).
		Field("pos").Coordinates(3, 4).
		Bytes()
	dec := assertDecodes(t, Object{
		"name":  "Ada",
		"level": uint32(12),
		"alive": true,
		"pos":   Object{"x": 3.0, "y": 4.0},
	}, b)
	if len(dec.Omissions()) != 0 {
		t.Fatalf("omissions: %v", dec.Omissions())
	}
}

func Test_ObjectDuplicateFieldOverwrites(t *testing.T) {
	b := savetest.New().Object(3).
		Field("a").Int(1).
		Field("b").Int(2).
		Field("a").Int(3).
		Bytes()
	assertDecodes(t, Object{"a": uint32(3), "b": uint32(2)}, b)
}

func Test_ObjectDropsReference(t *testing.T) {
	b := savetest.New().Object(3).
		Field("first").Int(1).
		Field("ref").Reference().
		Field("third").String("c").
		Bytes()

	var logs bytes.Buffer
	dec := NewDecoder(bytes.NewReader(b))
	dec.Logger = capturingLogger(&logs)
	got, err := dec.Decode()
	if err != nil {
		t.Fatal(err)
	}
	want := Object{"first": uint32(1), "third": "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "field=ref") || !strings.Contains(logs.String(), "index=1") {
		t.Fatalf("expected warning naming the field, got:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "level=WARN") {
		t.Fatalf("expected warn level, got:\n%s", logs.String())
	}
	om := dec.Omissions()
	if len(om) != 1 || om[0].Kind != KindReference || om[0].Path.String() != "$.ref#1" {
		t.Fatalf("omissions: %+v", om)
	}
}

func Test_ArrayDropsUnknown(t *testing.T) {
	b := savetest.New().Array(4).
		String("a").
		Unknown(0xDEADBEEF).
		String("b").
		Unknown(0).
		Bytes()

	var logs bytes.Buffer
	dec := NewDecoder(bytes.NewReader(b))
	dec.Logger = capturingLogger(&logs)
	got, err := dec.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Array{"a", "b"}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "raw=\"EF BE AD DE\"") {
		t.Fatalf("expected raw bytes in warning, got:\n%s", logs.String())
	}
	var paths []string
	for _, o := range dec.Omissions() {
		paths = append(paths, o.Path.String())
	}
	if diff := cmp.Diff([]string{"$[1]", "$[3]"}, paths); diff != "" {
		t.Fatalf("omission paths (-want +got):\n%s", diff)
	}
}

func Test_KeepOmitted(t *testing.T) {
	b := savetest.New().Object(2).
		Field("list").Array(2).Reference().Int(5).
		Field("gone").Unknown(1).
		Bytes()
	dec := NewDecoder(bytes.NewReader(b))
	dec.Logger = discardLogger()
	dec.KeepOmitted = true
	got, err := dec.Decode()
	if err != nil {
		t.Fatal(err)
	}
	want := Object{"list": Array{nil, uint32(5)}, "gone": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if len(dec.Omissions()) != 2 {
		t.Fatalf("omissions: %+v", dec.Omissions())
	}
}

func Test_TopLevelPlaceholder(t *testing.T) {
	assertDecodes(t, nil, savetest.New().Reference().Bytes())
	assertDecodes(t, nil, savetest.New().Unknown(9).Bytes())
}

func Test_Nested(t *testing.T) {
	b := savetest.New().Object(2).
		Field("inventory").Array(2).
		Object(2).Field("id").Int(1).Field("tags").Array(1).String("rare").
		Object(1).Field("id").Int(2).
		Field("settings").Object(1).Field("volume").Int(80).
		Bytes()
	assertDecodes(t, Object{
		"inventory": Array{
			Object{"id": uint32(1), "tags": Array{"rare"}},
			Object{"id": uint32(2)},
		},
		"settings": Object{"volume": uint32(80)},
	}, b)
}

func Test_FieldNameMustBeString(t *testing.T) {
	b := savetest.New().Object(1).Int(3).Int(4).Bytes()
	e := assertFails(t, ErrUnexpectedMarker, b)
	if e.Expected != KindString || e.Found != KindInt {
		t.Fatalf("expected/found %v/%v", e.Expected, e.Found)
	}
	if got := e.Path.String(); got != "$.#0" {
		t.Fatalf("path %q", got)
	}
}

func Test_ErrorPath(t *testing.T) {
	b := savetest.New().Object(2).
		Field("ok").Int(1).
		Field("items").Array(3).
		Int(1).
		Object(1).Field("flag").Bool(true).
		Marker(KindBool).Raw(7, 0, 0, 0).
		Bytes()
	e := assertFails(t, ErrInvalidBoolValue, b)
	if got := e.Path.String(); got != "$.items#1[2]" {
		t.Fatalf("path %q", got)
	}
	if !strings.Contains(e.Error(), "$.items#1[2]") {
		t.Fatalf("message %q", e.Error())
	}
	if want := int64(len(b) - 4); e.Offset != want {
		t.Fatalf("offset=%d want %d", e.Offset, want)
	}
}

func Test_Truncated(t *testing.T) {
	full := savetest.New().Object(3).
		Field("name").String("Nadia").
		Field("pos").Coordinates(1, 2).
		Field("list").Array(2).Bool(false).Int(9).
		Bytes()
	assertDecodes(t, Object{
		"name": "Nadia",
		"pos":  Object{"x": 1.0, "y": 2.0},
		"list": Array{false, uint32(9)},
	}, full)
	for n := 0; n < len(full); n++ {
		assertFails(t, ErrTruncatedInput, full[:n])
	}
}

func Test_HugeDeclaredCount(t *testing.T) {
	assertFails(t, ErrTruncatedInput, []byte{0x15, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0x80})
	assertFails(t, ErrTruncatedInput, []byte{0x14, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0x80})
}

func Test_UnmarshalSave(t *testing.T) {
	body := savetest.New().Object(1).Field("money").Int(250)
	got, err := UnmarshalSave(body.Save())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Object{"money": uint32(250)}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	if _, err := UnmarshalSave([]byte{1, 2}); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("short size marker: %v", err)
	}
	got, err = Unmarshal(body.Bytes())
	if err != nil || got == nil {
		t.Fatalf("Unmarshal: %v", err)
	}
}

func Test_DecodeSequence(t *testing.T) {
	b := savetest.New().Int(1).String("two").Bool(true).Bytes()
	dec := NewDecoder(bytes.NewReader(b))
	var got []any
	for i := 0; i < 3; i++ {
		v, err := dec.Decode()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
	}
	if diff := cmp.Diff([]any{uint32(1), "two", true}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if _, err := dec.Decode(); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("past end: %v", err)
	}
}

func Test_NestingTooDeep(t *testing.T) {
	// Nested one-element arrays that never terminate.
	b := bytes.Repeat(savetest.New().Array(1).Bytes(), 4*DefaultMaxDepth)
	e := assertFails(t, ErrTooDeep, b)
	if len(e.Path) != DefaultMaxDepth {
		t.Fatalf("path depth %d want %d", len(e.Path), DefaultMaxDepth)
	}
	if want := int64(8 * DefaultMaxDepth); e.Offset != want {
		t.Fatalf("offset=%d want %d", e.Offset, want)
	}
}

func Test_MaxDepth(t *testing.T) {
	atLimit := savetest.New().Array(1).Object(1).Field("a").Int(1).Bytes()
	dec := NewDecoder(bytes.NewReader(atLimit))
	dec.Logger = discardLogger()
	dec.MaxDepth = 2
	got, err := dec.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Array{Object{"a": uint32(1)}}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	tooDeep := savetest.New().Array(1).Object(1).Field("a").Array(0).Bytes()
	dec = NewDecoder(bytes.NewReader(tooDeep))
	dec.Logger = discardLogger()
	dec.MaxDepth = 2
	_, err = dec.Decode()
	if !errors.Is(err, ErrTooDeep) {
		t.Fatalf("got %v want %v", err, ErrTooDeep)
	}
	var e *Error
	if !errors.As(err, &e) || e.Path.String() != "$[0].a#0" {
		t.Fatalf("error %v", err)
	}
}

func Test_PlaceholderWarnsOnce(t *testing.T) {
	b := savetest.New().Object(2).
		Field("odd").Unknown(0x01020304).
		Field("list").Array(1).Reference().
		Bytes()

	var logs bytes.Buffer
	dec := NewDecoder(bytes.NewReader(b))
	dec.Logger = capturingLogger(&logs)
	if _, err := dec.Decode(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one record per placeholder, got:\n%s", logs.String())
	}
	for _, want := range []string{"field=odd", "kind=unknown", `raw="04 03 02 01"`, "path=$", "skipping"} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("record %q missing %q", lines[0], want)
		}
	}
	for _, want := range []string{"kind=reference", "path=$.list#1", "index=0"} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("record %q missing %q", lines[1], want)
		}
	}
	if strings.Contains(lines[1], "raw=") {
		t.Fatalf("reference record carries raw bytes: %q", lines[1])
	}

	logs.Reset()
	dec = NewDecoder(bytes.NewReader(b))
	dec.Logger = capturingLogger(&logs)
	dec.KeepOmitted = true
	if _, err := dec.Decode(); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(logs.String(), "skipping") || strings.Count(logs.String(), "keeping as null") != 2 {
		t.Fatalf("kept placeholders logged as skipped:\n%s", logs.String())
	}
}

func Test_TopLevelPlaceholderWarns(t *testing.T) {
	var logs bytes.Buffer
	dec := NewDecoder(bytes.NewReader(savetest.New().Unknown(7).Bytes()))
	dec.Logger = capturingLogger(&logs)
	got, err := dec.Decode()
	if err != nil || got != nil {
		t.Fatalf("got %v err=%v", got, err)
	}
	if !strings.Contains(logs.String(), "top-level value has no data") || len(dec.Omissions()) != 0 {
		t.Fatalf("logs=%q omissions=%v", logs.String(), dec.Omissions())
	}
}

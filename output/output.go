// Package output serializes decoded save trees as JSON, YAML or CBOR.
//
// All three writers emit object keys in sorted order, so the same tree
// always produces the same bytes.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/dadrian/hcsave"
)

// Format selects the serialization.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case JSON, YAML, CBOR:
		return f, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, yaml or cbor)", name)
	}
}

// Extension returns the file extension, without the dot, for f.
func (f Format) Extension() string { return string(f) }

// Options controls serialization.
type Options struct {
	Format Format
	// Indent is the number of spaces per nesting level for JSON and
	// YAML. Zero means 2.
	Indent int
	// Compact writes single-line JSON. Ignored for YAML and CBOR.
	Compact bool
}

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("output: CBOR encoder initialization failed: " + err.Error())
	}
}

// Write serializes v to w.
func Write(w io.Writer, v any, opts Options) error {
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	switch opts.Format {
	case JSON, "":
		return writeJSON(w, v, indent, opts.Compact)
	case YAML:
		return writeYAML(w, v, indent)
	case CBOR:
		if err := encMode.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("encode CBOR: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// writeJSON encodes value as JSON with a trailing newline. HTML
// characters are left unescaped so strings appear as stored. NaN and
// infinite numbers are written as null.
func writeJSON(w io.Writer, v any, indent int, compact bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if !compact {
		encoder.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := encoder.Encode(finite(v)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any, indent int) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(indent)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	return nil
}

// finite returns a copy of v with every non-finite float replaced by
// nil. v itself is not modified.
func finite(v any) any {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil
		}
		return n
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return nil
		}
		return n
	}
	if obj, ok := hcsave.AsObject(v); ok {
		out := make(hcsave.Object, len(obj))
		for k, e := range obj {
			out[k] = finite(e)
		}
		return out
	}
	if arr, ok := hcsave.AsArray(v); ok {
		out := make(hcsave.Array, len(arr))
		for i, e := range arr {
			out[i] = finite(e)
		}
		return out
	}
	return v
}

package hcsave

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Object is a decoded object. Keys are unique; a later duplicate field in
// the input overwrites an earlier one. Iteration order is unspecified;
// use Keys for the canonical sorted order.
type Object map[string]any

// Array is a decoded array in input order.
type Array []any

// TypeName names the JSON type of a decoded value for error messages.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case uint32, float64, int, int64, json.Number:
		return "number"
	case string:
		return "string"
	case Object, map[string]any:
		return "object"
	case Array, []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Keys returns the field names in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the named field.
func (o Object) Get(name string) (any, error) {
	v, ok := o[name]
	if !ok {
		return nil, fmt.Errorf("key %s: %w", name, ErrMissingField)
	}
	return v, nil
}

// GetObject returns the named field, which must be an object.
func (o Object) GetObject(name string) (Object, error) {
	v, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	obj, ok := AsObject(v)
	if !ok {
		return nil, wrongKind(name, "an object", v)
	}
	return obj, nil
}

// GetArray returns the named field, which must be an array.
func (o Object) GetArray(name string) (Array, error) {
	v, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	arr, ok := AsArray(v)
	if !ok {
		return nil, wrongKind(name, "an array", v)
	}
	return arr, nil
}

// GetString returns the named field, which must be a string.
func (o Object) GetString(name string) (string, error) {
	v, err := o.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongKind(name, "a string", v)
	}
	return s, nil
}

// GetInt returns the named field, which must be an integer in the
// uint32 range.
func (o Object) GetInt(name string) (uint32, error) {
	v, err := o.Get(name)
	if err != nil {
		return 0, err
	}
	n, ok := AsInt(v)
	if !ok || n < 0 || n > math.MaxUint32 {
		return 0, wrongKind(name, "an integer", v)
	}
	return uint32(n), nil
}

// GetBool returns the named field, which must be a bool.
func (o Object) GetBool(name string) (bool, error) {
	v, err := o.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, wrongKind(name, "a bool", v)
	}
	return b, nil
}

// GetFloat returns the named field, which must be a number. Integers are
// widened.
func (o Object) GetFloat(name string) (float64, error) {
	v, err := o.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case uint32:
		return float64(n), nil
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, nil
		}
	}
	return 0, wrongKind(name, "a number", v)
}

// GetStrings returns the named field, which must be an array of strings.
func (o Object) GetStrings(name string) ([]string, error) {
	arr, err := o.GetArray(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(arr))
	for i, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("key %s: element %d: not a string (found %s): %w", name, i, TypeName(v), ErrWrongKind)
		}
		out[i] = s
	}
	return out, nil
}

// At returns element i.
func (a Array) At(i int) (any, error) {
	if i < 0 || i >= len(a) {
		return nil, fmt.Errorf("index %d of %d: %w", i, len(a), ErrOutOfRange)
	}
	return a[i], nil
}

// AsObject reports whether v is an object, accepting trees that came
// from encoding/json as well as from the decoder.
func AsObject(v any) (Object, bool) {
	switch o := v.(type) {
	case Object:
		return o, true
	case map[string]any:
		return Object(o), true
	default:
		return nil, false
	}
}

// AsInt reports whether v is an integer. Besides the decoder's uint32 it
// accepts the json.Number and integral float64 values of trees read with
// encoding/json.
func AsInt(v any) (int64, bool) {
	switch n := v.(type) {
	case uint32:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) >= 1<<63 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// AsArray is the array counterpart of AsObject.
func AsArray(v any) (Array, bool) {
	switch a := v.(type) {
	case Array:
		return a, true
	case []any:
		return Array(a), true
	default:
		return nil, false
	}
}

func wrongKind(name, want string, got any) error {
	return fmt.Errorf("key %s: not %s (found %s): %w", name, want, TypeName(got), ErrWrongKind)
}

package hcsave

import (
	"bytes"
)

// Unmarshal decodes the single value encoded in data.
func Unmarshal(data []byte) (any, error) {
	return NewDecoder(bytes.NewReader(data)).Decode()
}

// UnmarshalSave decodes a complete save blob: a 4-byte size marker
// followed by one value.
func UnmarshalSave(data []byte) (any, error) {
	return NewDecoder(bytes.NewReader(data)).DecodeSave()
}

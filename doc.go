// Package hcsave decodes the tagged binary format used by legacy
// (pre-release) save files into a generic JSON-like value tree.
//
// A save blob starts with a 4-byte size marker followed by one encoded
// value, conventionally an object. Every value is preceded by a 4-byte
// type marker. Scalars have fixed payloads, strings are length-prefixed
// and padded to a 4-byte boundary, and objects and arrays carry a count
// whose top byte is the 0x80 sentinel.
//
// Decoding is decode-only and single pass. Values of the two kinds with
// no known meaning (0x03 and the 0x12 reference) are reported and
// dropped from their parent object or array. Any other violation of the
// format aborts the decode with an *Error describing where it happened.
package hcsave

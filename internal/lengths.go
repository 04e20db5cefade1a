package internal

// Object and array counts are stored as a 4-byte little-endian field
// whose top byte must be LengthSentinel. The sentinel is cleared before
// the remaining bytes are interpreted. String lengths are plain.

const LengthSentinel = 0x80

// MaxCapacityHint bounds the capacity pre-allocated for a declared
// element count. Counts come straight from the input and are not
// trusted until the elements have actually been read.
const MaxCapacityHint = 1024

// Padding returns the number of bytes needed after a string of length n
// to reach the next 4-byte boundary.
func Padding(n uint32) uint32 { return (4 - n%4) % 4 }

// DecodeCount validates the sentinel in b and returns the element count.
func DecodeCount(b [4]byte) (uint32, bool) {
	if b[3] != LengthSentinel {
		return 0, false
	}
	b[3] = 0
	return U32(b), true
}

// EncodeCount is the inverse of DecodeCount. n must be below 1<<24.
func EncodeCount(n uint32) [4]byte {
	var b [4]byte
	le.PutUint32(b[:], n)
	b[3] = LengthSentinel
	return b
}

// CapacityHint clamps a declared count to MaxCapacityHint.
func CapacityHint(n uint32) int {
	if n > MaxCapacityHint {
		return MaxCapacityHint
	}
	return int(n)
}

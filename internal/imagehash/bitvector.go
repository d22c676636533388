package imagehash

import (
	"encoding/hex"
	"fmt"
	"math/bits"
)

// BitVector is a fixed-width perceptual fingerprint. Bit i lives at byte
// i/8, most significant bit first, so the hex encoding is stable across
// runs and safe to persist.
type BitVector struct {
	width int
	data  []byte
}

// NewBitVector returns an all-zero vector of the given bit width.
func NewBitVector(width int) BitVector {
	if width <= 0 {
		return BitVector{}
	}
	return BitVector{width: width, data: make([]byte, (width+7)/8)}
}

// Width returns the number of bits in the vector.
func (v BitVector) Width() int {
	return v.width
}

// IsZero reports whether the vector is the uninitialized zero value.
func (v BitVector) IsZero() bool {
	return v.width == 0
}

func (v BitVector) setBit(i int) {
	v.data[i>>3] |= 0x80 >> (i & 7)
}

// Bit returns bit i as 0 or 1.
func (v BitVector) Bit(i int) int {
	if i < 0 || i >= v.width {
		return 0
	}
	if v.data[i>>3]&(0x80>>(i&7)) != 0 {
		return 1
	}
	return 0
}

// Distance returns the Hamming distance to other. Both vectors must have
// the same width; comparing fingerprints computed at different core sizes
// is a programming error.
func (v BitVector) Distance(other BitVector) (int, error) {
	if v.width != other.width {
		return 0, fmt.Errorf("bit width mismatch: %d vs %d", v.width, other.width)
	}
	total := 0
	for i := range v.data {
		total += bits.OnesCount8(v.data[i] ^ other.data[i])
	}
	return total, nil
}

// Prefix16 returns the first 16 bits of the vector, used as a coarse bucket
// key for pre-filtering candidate pairs. Vectors narrower than 16 bits are
// zero-padded on the right.
func (v BitVector) Prefix16() uint16 {
	var hi, lo byte
	if len(v.data) > 0 {
		hi = v.data[0]
	}
	if len(v.data) > 1 {
		lo = v.data[1]
	}
	return uint16(hi)<<8 | uint16(lo)
}

// EncodeHex renders the vector for persistence.
func (v BitVector) EncodeHex() string {
	return hex.EncodeToString(v.data)
}

// DecodeHex reconstructs a vector of the given width from EncodeHex output.
func DecodeHex(encoded string, width int) (BitVector, error) {
	data, err := hex.DecodeString(encoded)
	if err != nil {
		return BitVector{}, fmt.Errorf("decode fingerprint hex: %w", err)
	}
	if width <= 0 || len(data) != (width+7)/8 {
		return BitVector{}, fmt.Errorf("fingerprint length %d does not match width %d bits", len(data), width)
	}
	return BitVector{width: width, data: data}, nil
}

package imagehash_test

import (
	"strings"
	"testing"

	"winnow/internal/imagehash"
)

func vectorWithBits(t *testing.T, width int, bits ...int) imagehash.BitVector {
	t.Helper()
	raw := make([]byte, (width+7)/8)
	for _, bit := range bits {
		raw[bit>>3] |= 0x80 >> (bit & 7)
	}
	v, err := imagehash.DecodeHex(hexEncode(raw), width)
	if err != nil {
		t.Fatalf("DecodeHex failed: %v", err)
	}
	return v
}

func hexEncode(data []byte) string {
	const digits = "0123456789abcdef"
	var sb strings.Builder
	for _, b := range data {
		sb.WriteByte(digits[b>>4])
		sb.WriteByte(digits[b&0x0f])
	}
	return sb.String()
}

func TestDistanceCountsDifferingBits(t *testing.T) {
	a := vectorWithBits(t, 64, 0, 5, 17, 63)
	b := vectorWithBits(t, 64, 0, 5, 17, 63)

	d, err := a.Distance(b)
	if err != nil {
		t.Fatalf("Distance failed: %v", err)
	}
	if d != 0 {
		t.Fatalf("identical vectors must have distance 0, got %d", d)
	}

	c := vectorWithBits(t, 64, 0, 5, 18, 40)
	d, err = a.Distance(c)
	if err != nil {
		t.Fatalf("Distance failed: %v", err)
	}
	// 17 and 63 only in a; 18 and 40 only in c.
	if d != 4 {
		t.Fatalf("expected distance 4, got %d", d)
	}
}

func TestDistanceRejectsWidthMismatch(t *testing.T) {
	a := vectorWithBits(t, 64, 1)
	b := vectorWithBits(t, 256, 1)
	if _, err := a.Distance(b); err == nil {
		t.Fatal("expected width mismatch error")
	}
}

func TestHexRoundTrip(t *testing.T) {
	original := vectorWithBits(t, 100, 0, 3, 64, 99)
	decoded, err := imagehash.DecodeHex(original.EncodeHex(), 100)
	if err != nil {
		t.Fatalf("DecodeHex failed: %v", err)
	}
	d, err := original.Distance(decoded)
	if err != nil {
		t.Fatalf("Distance failed: %v", err)
	}
	if d != 0 {
		t.Fatalf("round trip changed the vector, distance %d", d)
	}
	if decoded.Width() != 100 {
		t.Fatalf("expected width 100, got %d", decoded.Width())
	}
}

func TestDecodeHexRejectsWrongLength(t *testing.T) {
	if _, err := imagehash.DecodeHex("abcd", 64); err == nil {
		t.Fatal("expected length mismatch error")
	}
	if _, err := imagehash.DecodeHex("zz", 8); err == nil {
		t.Fatal("expected invalid hex error")
	}
}

func TestPrefix16(t *testing.T) {
	v := vectorWithBits(t, 64, 0, 15)
	if got := v.Prefix16(); got != 0x8001 {
		t.Fatalf("expected prefix 0x8001, got 0x%04x", got)
	}

	// Bits beyond the first 16 must not affect the prefix.
	w := vectorWithBits(t, 64, 0, 15, 20, 63)
	if v.Prefix16() != w.Prefix16() {
		t.Fatal("prefix should ignore bits past 16")
	}
}

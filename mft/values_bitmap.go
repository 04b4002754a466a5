package mft

import (
	"math/bits"

	"github.com/t9t/ntfscore/binutil"
)

// Bitmap is a packed bit vector as stored in a $BITMAP attribute: bit i lives in byte i>>3 at mask 1<<(i&7). It is
// append-only, matching the way the orchestrator feeds it one decoded cluster block at a time (§4.8 step 7).
type Bitmap struct {
	data []byte
	bits int
}

// NewBitmap creates an empty Bitmap.
func NewBitmap() *Bitmap {
	return &Bitmap{}
}

// ParseBitmap creates a Bitmap directly from a single resident or fully-reassembled non-resident payload.
func ParseBitmap(b []byte) *Bitmap {
	return &Bitmap{data: binutil.Duplicate(b), bits: len(b) * 8}
}

// Append adds another decoded block's worth of bytes to the end of the bitmap.
func (bm *Bitmap) Append(b []byte) {
	bm.data = append(bm.data, b...)
	bm.bits += len(b) * 8
}

// Len returns the number of bits in the bitmap.
func (bm *Bitmap) Len() int {
	return bm.bits
}

// Get reports whether bit i is set. It panics if i is out of range; callers should check i < Len() first.
func (bm *Bitmap) Get(i int) bool {
	return bm.data[i>>3]&(1<<(uint(i)&7)) != 0
}

// Cardinality returns the number of set bits in the bitmap.
func (bm *Bitmap) Cardinality() int {
	count := 0
	for _, b := range bm.data {
		count += bits.OnesCount8(b)
	}
	return count
}

// FindLowestClear returns the index of the lowest-numbered clear bit, and true, or (0, false) if every bit in the
// bitmap is set.
func (bm *Bitmap) FindLowestClear() (int, bool) {
	for byteIndex, b := range bm.data {
		if b == 0xFF {
			continue
		}
		for bitIndex := 0; bitIndex < 8; bitIndex++ {
			if b&(1<<uint(bitIndex)) == 0 {
				return byteIndex*8 + bitIndex, true
			}
		}
	}
	return 0, false
}

package binutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t9t/ntfscore/binutil"
)

func TestIsOnlyZeroesYes(t *testing.T) {
	assert.True(t, binutil.IsOnlyZeroes([]byte{0, 0, 0, 0, 0, 0}))
}

func TestIsOnlyZeroesNo(t *testing.T) {
	assert.False(t, binutil.IsOnlyZeroes([]byte{0, 0, 0, 0, 0, 1}))
}

func TestTryReadOutOfBounds(t *testing.T) {
	r := binutil.NewLittleEndianReader([]byte{1, 2, 3, 4})
	_, err := r.TryRead(2, 4)
	require.ErrorIs(t, err, binutil.ErrTruncated)
}

func TestTryReadWithinBounds(t *testing.T) {
	r := binutil.NewLittleEndianReader([]byte{1, 2, 3, 4})
	b, err := r.TryRead(1, 2)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, []byte{2, 3}, b)
}

func TestTryUint32OutOfBounds(t *testing.T) {
	r := binutil.NewLittleEndianReader([]byte{1, 2, 3})
	_, err := r.TryUint32(0)
	require.ErrorIs(t, err, binutil.ErrTruncated)
}

func TestSignExtendPositive(t *testing.T) {
	assert.Equal(t, int64(0x34), binutil.SignExtend([]byte{0x34}))
	assert.Equal(t, int64(0x5634), binutil.SignExtend([]byte{0x34, 0x56}))
}

func TestSignExtendNegative(t *testing.T) {
	// 0x80 as a single byte is -128.
	assert.Equal(t, int64(-128), binutil.SignExtend([]byte{0x80}))
	// 0x8000 as two bytes (little endian) is -32768.
	assert.Equal(t, int64(-32768), binutil.SignExtend([]byte{0x00, 0x80}))
	// 0x800000 sign-extended from 3 bytes.
	assert.Equal(t, int64(-8388608), binutil.SignExtend([]byte{0x00, 0x00, 0x80}))
}

func TestSignExtendEmpty(t *testing.T) {
	assert.Equal(t, int64(0), binutil.SignExtend(nil))
}

func TestZeroExtend(t *testing.T) {
	assert.Equal(t, uint64(0x5634), binutil.ZeroExtend([]byte{0x34, 0x56}))
	assert.Equal(t, uint64(0), binutil.ZeroExtend(nil))
}

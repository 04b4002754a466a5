package lznt1_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t9t/ntfscore/lznt1"
)

func decodeHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.Nilf(t, err, "bad hex fixture: %v", err)
	return b
}

func TestDecompress_LiteralOnlyChunk(t *testing.T) {
	input := decodeHex(t, "048000414243440000")
	out, err := lznt1.Decompress(input)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, []byte("ABCD"), out)
}

func TestDecompress_LiteralsThenMatch(t *testing.T) {
	input := decodeHex(t, "048004414201100000")
	out, err := lznt1.Decompress(input)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, []byte("ABABAB"), out)
}

func TestDecompress_UncompressedChunk(t *testing.T) {
	input := decodeHex(t, "0f0048454c4c4f2c20574f524c44212121210000")
	out, err := lznt1.Decompress(input)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, []byte("HELLO, WORLD!!!!"), out)
}

func TestDecompress_MultipleChunks(t *testing.T) {
	input := decodeHex(t, "048000414243440f0048454c4c4f2c20574f524c44212121210000")
	out, err := lznt1.Decompress(input)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, []byte("ABCDHELLO, WORLD!!!!"), out)
}

func TestDecompress_EmptyInput(t *testing.T) {
	out, err := lznt1.Decompress(nil)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Empty(t, out)
}

func TestDecompress_TruncatedHeader(t *testing.T) {
	_, err := lznt1.Decompress([]byte{0x04})
	assert.ErrorIs(t, err, lznt1.ErrInvalidChunk)
}

func TestDecompress_ChunkDeclaresMoreThanAvailable(t *testing.T) {
	input := decodeHex(t, "ff7f4141")
	_, err := lznt1.Decompress(input)
	assert.ErrorIs(t, err, lznt1.ErrInvalidChunk)
}

func TestDecompress_MatchDisplacementOutOfBounds(t *testing.T) {
	// flags = 0x01 (first token is a match), tag = 0x0000 -> displacement 1 with nothing decoded yet.
	input := decodeHex(t, "03800100000000")
	_, err := lznt1.Decompress(input)
	assert.ErrorIs(t, err, lznt1.ErrOutOfBounds)
}

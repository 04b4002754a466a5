package mft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t9t/ntfscore/mft"
)

func TestParseReparsePoint_Symlink(t *testing.T) {
	// Symlink reparse data for substitute name "C:\Target" with relative flag set, print name identical.
	input := decodeHex(t, "0c0000a03000000000001200120012000100000043003a005c0054006100720067006500740043003a005c00540061007200670065007400")

	rp, err := mft.ParseReparsePoint(input)
	require.Nilf(t, err, "error parsing reparse point: %v", err)

	assert.Equal(t, mft.ReparseTagSymlink, rp.Tag)
	assert.True(t, rp.Tag.IsMicrosoft())
	assert.True(t, rp.Tag.IsNameSurrogate())
	assert.Equal(t, mft.SymlinkFlagRelative, rp.SymlinkFlags)
	assert.Equal(t, `C:\Target`, rp.SubstituteName)
	assert.Equal(t, `C:\Target`, rp.PrintName)
}

func TestParseReparsePoint_OpaqueTag(t *testing.T) {
	input := decodeHex(t, "efbeadde04000000deadbeef")

	rp, err := mft.ParseReparsePoint(input)
	require.Nilf(t, err, "error parsing reparse point: %v", err)

	assert.Equal(t, mft.ReparseTag(0xdeadbeef), rp.Tag)
	assert.Empty(t, rp.SubstituteName)
	assert.Empty(t, rp.PrintName)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, rp.Data)
}

func TestParseReparsePoint_TooShort(t *testing.T) {
	_, err := mft.ParseReparsePoint(make([]byte, 4))
	require.NotNil(t, err)
}

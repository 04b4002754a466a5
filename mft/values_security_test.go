package mft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t9t/ntfscore/mft"
)

func TestParseSecurityDescriptor(t *testing.T) {
	input := decodeHex(t, "010004801400000024000000000000003000000001020000000000052000000020020000010100000000000512000000020020000100000000001800ff011f0001020000000000052000000020020000")

	sd, err := mft.ParseSecurityDescriptor(input)
	require.Nilf(t, err, "error parsing security descriptor: %v", err)

	assert.Equal(t, byte(1), sd.Revision)
	assert.True(t, sd.Control&mft.SecurityDescriptorControlSelfRelative != 0)
	assert.True(t, sd.Control&mft.SecurityDescriptorControlDaclPresent != 0)
	assert.Equal(t, "S-1-5-32-544", sd.Owner.String())
	assert.Equal(t, "S-1-5-18", sd.Group.String())
	assert.Nil(t, sd.Sacl)
	require.NotNil(t, sd.Dacl)
	assert.Equal(t, byte(2), sd.Dacl.Revision)
	require.Len(t, sd.Dacl.Entries, 1)
	assert.Equal(t, mft.AceTypeAccessAllowed, sd.Dacl.Entries[0].Type)
	assert.Equal(t, uint32(0x1f01ff), sd.Dacl.Entries[0].Mask)
	assert.Equal(t, "S-1-5-32-544", sd.Dacl.Entries[0].Sid.String())
}

func TestParseSecurityDescriptor_TooShort(t *testing.T) {
	_, err := mft.ParseSecurityDescriptor(make([]byte, 10))
	require.NotNil(t, err)
}

func TestParseSecurityDescriptorStreamEntry(t *testing.T) {
	sdHex := "010004801400000024000000000000003000000001020000000000052000000020020000010100000000000512000000020020000100000000001800ff011f0001020000000000052000000020020000"
	input := append(decodeHex(t, "01000000102700000000000050000000"), decodeHex(t, sdHex)...)

	entry, err := mft.ParseSecurityDescriptorStreamEntry(input)
	require.Nilf(t, err, "error parsing $SDS stream entry: %v", err)
	assert.Equal(t, uint32(1), entry.Hash)
	assert.Equal(t, uint32(0x2710), entry.SecurityId)
	assert.Equal(t, uint32(0), entry.Offset)
	assert.Equal(t, uint32(80), entry.Size)
	assert.Equal(t, "S-1-5-32-544", entry.SecurityDescriptor.Owner.String())
}

package mft_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t9t/ntfscore/mft"
)

func TestParseAttributeList_SdsEntry(t *testing.T) {
	data, err := hex.DecodeString(
		"80000000" + "2800" + "04" + "1a" +
			"0000000000000000" +
			"c808000000000100" +
			"0000" +
			"2400530044005300" + "000000000000")
	require.Nilf(t, err, "unable to convert input hex to []byte: %v", err)

	entries, err := mft.ParseAttributeList(data)
	require.Nilf(t, err, "unexpected error: %v", err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, mft.AttributeType(0x80), e.Type)
	assert.Equal(t, uint64(0), e.StartingVCN)
	assert.Equal(t, uint64(0x08C8), e.FileReference.RecordNumber)
	assert.Equal(t, uint16(1), e.FileReference.SequenceNumber)
	assert.Equal(t, uint16(0), e.Identifier)
	assert.Equal(t, "$SDS", e.Name)
}

func TestCompareByFileReference(t *testing.T) {
	less := mft.CompareByFileReference(
		mft.FileReference{RecordNumber: 1, SequenceNumber: 5},
		mft.FileReference{RecordNumber: 2, SequenceNumber: 1},
		0, 0)
	assert.Negative(t, less)

	equal := mft.CompareByFileReference(
		mft.FileReference{RecordNumber: 1, SequenceNumber: 7},
		mft.FileReference{RecordNumber: 1, SequenceNumber: 3},
		2, 2)
	assert.Zero(t, equal)
}

func TestCompareByFileReference_TieBreaksByIdentifier(t *testing.T) {
	a := mft.FileReference{RecordNumber: 9, SequenceNumber: 1}
	b := mft.FileReference{RecordNumber: 9, SequenceNumber: 9}

	assert.Negative(t, mft.CompareByFileReference(a, b, 1, 2))
	assert.Positive(t, mft.CompareByFileReference(a, b, 2, 1))
	assert.Zero(t, mft.CompareByFileReference(a, b, 3, 3))
}

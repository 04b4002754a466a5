package mft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t9t/ntfscore/mft"
)

func TestParseObjectId_DroidOnly(t *testing.T) {
	input := decodeHex(t, "78563412341278561234567812345678")

	oid, err := mft.ParseObjectId(input)
	require.Nilf(t, err, "error parsing $OBJECT_ID: %v", err)

	assert.Equal(t, "12345678-1234-5678-1234-567812345678", oid.DroidId.String())
	assert.False(t, oid.HasBirthFields)
}

func TestParseObjectId_WithBirthFields(t *testing.T) {
	droid := "78563412341278561234567812345678"
	birthVolume := "00000000000000000000000000000000"
	birthObject := "11111111111111111111111111111111"
	birthDomain := "22222222222222222222222222222222"
	input := decodeHex(t, droid+birthVolume+birthObject+birthDomain)

	oid, err := mft.ParseObjectId(input)
	require.Nilf(t, err, "error parsing $OBJECT_ID: %v", err)

	assert.True(t, oid.HasBirthFields)
	assert.Equal(t, "12345678-1234-5678-1234-567812345678", oid.DroidId.String())
	assert.Equal(t, byte(0x11), oid.BirthObjectId[0])
	assert.Equal(t, byte(0x22), oid.BirthDomainId[0])
}

func TestParseObjectId_TooShort(t *testing.T) {
	_, err := mft.ParseObjectId(make([]byte, 10))
	require.NotNil(t, err)
}

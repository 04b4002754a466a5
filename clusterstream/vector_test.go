package clusterstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t9t/ntfscore/clusterstream"
	"github.com/t9t/ntfscore/runlist"
)

func TestBlockVector_FullAndPartialBlocks(t *testing.T) {
	device := &fakeDevice{data: decodeHex(t, "00010203040506070809")}
	runs := []runlist.Run{{VCN: 0, Count: 2, LCN: 0, Sparse: false}}
	stream := clusterstream.New(device, runs, 8, 10, 10)

	v := clusterstream.NewBlockVector(stream, 4, 1)
	require.Equal(t, 3, v.BlockCount())

	b0, err := v.Get(0)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, device.data[0:4], b0)

	b1, err := v.Get(1)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, device.data[4:8], b1)

	b2, err := v.Get(2)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, device.data[8:10], b2[:2])
	assert.Equal(t, make([]byte, 2), b2[2:])
}

func TestBlockVector_GetCachesDecodedBlock(t *testing.T) {
	device := &fakeDevice{data: decodeHex(t, "0001020304050607")}
	runs := []runlist.Run{{VCN: 0, Count: 1, LCN: 0, Sparse: false}}
	stream := clusterstream.New(device, runs, 8, 8, 8)

	v := clusterstream.NewBlockVector(stream, 4, 1)
	b1, err := v.Get(0)
	require.Nilf(t, err, "unexpected error: %v", err)
	b2, err := v.Get(0)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, b1, b2)
}

func TestBlockVector_OutOfRangeIndex(t *testing.T) {
	device := &fakeDevice{data: decodeHex(t, "0001020304050607")}
	runs := []runlist.Run{{VCN: 0, Count: 1, LCN: 0, Sparse: false}}
	stream := clusterstream.New(device, runs, 8, 8, 8)

	v := clusterstream.NewBlockVector(stream, 4, 1)
	_, err := v.Get(2)
	assert.ErrorIs(t, err, clusterstream.ErrInvalidArgument)
}

func TestBlockVector_EvictsBeyondCapacity(t *testing.T) {
	device := &fakeDevice{data: decodeHex(t, "000102030405060708090a0b")}
	runs := []runlist.Run{{VCN: 0, Count: 2, LCN: 0, Sparse: false}}
	stream := clusterstream.New(device, runs, 8, 12, 12)

	v := clusterstream.NewBlockVector(stream, 4, 1)
	_, err := v.Get(0)
	require.Nilf(t, err, "unexpected error: %v", err)
	_, err = v.Get(1)
	require.Nilf(t, err, "unexpected error: %v", err)
	b0again, err := v.Get(0)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, device.data[0:4], b0again)
}

package runlist_test

import (
	"encoding/hex"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t9t/ntfscore/runlist"
)

func init() {
	rand.Seed(time.Now().UTC().UnixNano())
}

func TestDecode_SingleRun(t *testing.T) {
	data, err := hex.DecodeString("2118345600")
	require.Nilf(t, err, "unable to convert input hex to []byte: %v", err)

	runs, err := runlist.Decode(data, 0)
	require.Nilf(t, err, "unexpected error: %v", err)

	assert.Equal(t, []runlist.Run{{VCN: 0, Count: 24, LCN: 0x5634, Sparse: false}}, runs)
}

func TestDecode_SparseRuns(t *testing.T) {
	// Run headers carrying no offset field (high nibble 0) are sparse and leave the running lcn untouched.
	data, err := hex.DecodeString("0105110200010300")
	require.Nilf(t, err, "unable to convert input hex to []byte: %v", err)

	runs, err := runlist.Decode(data, 0)
	require.Nilf(t, err, "unexpected error: %v", err)

	assert.Equal(t, []runlist.Run{
		{VCN: 0, Count: 5, Sparse: true},
		{VCN: 5, Count: 2, LCN: 0, Sparse: false},
		{VCN: 7, Count: 3, Sparse: true},
	}, runs)
}

func TestDecode_NegativeOffset(t *testing.T) {
	// First run: header 0x21 (count width 1, offset width 2), lcn=0x5634. Second run: header 0x11 (count width 1,
	// offset width 1), offset -0x34, so its lcn is 0x5634-0x34.
	data, err := hex.DecodeString("211834561105CC00")
	require.Nilf(t, err, "unable to convert input hex to []byte: %v", err)

	runs, err := runlist.Decode(data, 0)
	require.Nilf(t, err, "unexpected error: %v", err)
	require.Len(t, runs, 2)
	assert.Equal(t, uint64(0x5634), runs[0].LCN)
	assert.Equal(t, uint64(0x5634-0x34), runs[1].LCN)
}

func TestDecode_MissingTerminator(t *testing.T) {
	data, err := hex.DecodeString("21183456")
	require.Nilf(t, err, "unable to convert input hex to []byte: %v", err)

	_, err = runlist.Decode(data, 0)
	assert.ErrorIs(t, err, runlist.ErrOutOfBounds)
}

func TestDecode_HeaderWidthTooWide(t *testing.T) {
	_, err := runlist.Decode([]byte{0x99}, 0)
	assert.ErrorIs(t, err, runlist.ErrInvalidRunHeader)
}

func TestDecode_FieldExtendsPastData(t *testing.T) {
	_, err := runlist.Decode([]byte{0x21, 0x18}, 0)
	assert.ErrorIs(t, err, runlist.ErrOutOfBounds)
}

func TestTotalClusters(t *testing.T) {
	runs := []runlist.Run{{Count: 5}, {Count: 2}, {Count: 3}}
	assert.Equal(t, uint64(10), runlist.TotalClusters(runs))
}

func TestRoundTrip_Fixed(t *testing.T) {
	runs := []runlist.Run{
		{VCN: 0, Count: 5, Sparse: true},
		{VCN: 5, Count: 2, LCN: 0, Sparse: false},
		{VCN: 7, Count: 3, Sparse: true},
	}
	encoded := runlist.Encode(runs)
	decoded, err := runlist.Decode(encoded, 0)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, runs, decoded)
}

func TestRoundTrip_Random(t *testing.T) {
	for i := 0; i < 200; i++ {
		runs := randomRuns(rand.Intn(64) + 1)
		encoded := runlist.Encode(runs)
		decoded, err := runlist.Decode(encoded, runs[0].VCN)
		require.Nilf(t, err, "unexpected error on iteration %d: %v", i, err)
		assert.Equal(t, runs, decoded)
	}
}

func randomRuns(n int) []runlist.Run {
	runs := make([]runlist.Run, n)
	vcn := uint64(rand.Intn(1000))
	lcn := int64(0)
	for i := 0; i < n; i++ {
		count := uint64(rand.Intn(1<<20)) + 1
		sparse := rand.Intn(4) == 0
		run := runlist.Run{VCN: vcn, Count: count, Sparse: sparse}
		if !sparse {
			// Keep offsets within i40, as a compliant encoder would produce.
			delta := int64(rand.Int63n(1<<39)) - (1 << 38)
			lcn += delta
			if lcn < 0 {
				lcn = -lcn
			}
			run.LCN = uint64(lcn)
			lcn = int64(run.LCN)
		}
		runs[i] = run
		vcn += count
	}
	return runs
}

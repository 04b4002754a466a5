package mft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t9t/ntfscore/mft"
)

func TestMaterializeValue_Resident(t *testing.T) {
	data := decodeHex(t, "000000000000000003010800")
	attr := &mft.Attribute{Type: mft.AttributeTypeVolumeInformation, Resident: true, Data: data}
	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)

	v, err := mft.MaterializeValue(f, nil, nil, 0)
	require.Nilf(t, err, "unexpected error: %v", err)

	vi, ok := v.(mft.VolumeInformation)
	require.True(t, ok)
	assert.Equal(t, byte(3), vi.MajorVersion)
}

func TestMaterializeValue_ResidentCachesAcrossCalls(t *testing.T) {
	data := decodeHex(t, "000000000000000003010800")
	attr := &mft.Attribute{Type: mft.AttributeTypeVolumeInformation, Resident: true, Data: data}
	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)

	v1, err := mft.MaterializeValue(f, nil, nil, 0)
	require.Nilf(t, err, "unexpected error: %v", err)
	v2, err := mft.MaterializeValue(f, nil, nil, 0)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, v1, v2)
}

func TestMaterializeValue_MftOnlyReturnsEmptyValue(t *testing.T) {
	attr := &mft.Attribute{Type: mft.AttributeTypeFileName, Resident: false}
	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)

	v, err := mft.MaterializeValue(f, nil, nil, mft.ReadFlagMftOnly)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.Equal(t, mft.FileName{}, v)
}

func TestMaterializeValue_NonResidentResidentOnlyTypeFails(t *testing.T) {
	attr := &mft.Attribute{Type: mft.AttributeTypeFileName, Resident: false}
	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)

	_, err = mft.MaterializeValue(f, nil, nil, 0)
	assert.ErrorIs(t, err, mft.ErrUnsupportedNonResident)
}

func TestMaterializeValue_LeftToHigherLayersReturnsNilNil(t *testing.T) {
	attr := &mft.Attribute{Type: mft.AttributeTypeData, Resident: false}
	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)

	v, err := mft.MaterializeValue(f, nil, nil, 0)
	assert.Nil(t, err)
	assert.Nil(t, v)
}

type fakeStream struct {
	data []byte
}

func (s *fakeStream) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, s.data[off:])
	return n, nil
}

func (s *fakeStream) Len() uint64 {
	return uint64(len(s.data))
}

func TestMaterializeValue_SecurityDescriptorFromStream(t *testing.T) {
	sdHex := "010004801400000024000000000000003000000001020000000000052000000020020000010100000000000512000000020020000100000000001800ff011f0001020000000000052000000020020000"
	attr := &mft.Attribute{Type: mft.AttributeTypeSecurityDescriptor, Resident: false}
	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)

	stream := &fakeStream{data: decodeHex(t, sdHex)}
	opener := func(*mft.AttributeFacade) (mft.ClusterStream, error) { return stream, nil }

	v, err := mft.MaterializeValue(f, opener, nil, 0)
	require.Nilf(t, err, "unexpected error: %v", err)
	sd, ok := v.(mft.SecurityDescriptor)
	require.True(t, ok)
	assert.Equal(t, "S-1-5-32-544", sd.Owner.String())
}

type fakeVector struct {
	blocks [][]byte
}

func (v *fakeVector) Get(i int) ([]byte, error) { return v.blocks[i], nil }
func (v *fakeVector) BlockCount() int           { return len(v.blocks) }

func TestMaterializeValue_BitmapFromVector(t *testing.T) {
	attr := &mft.Attribute{Type: mft.AttributeTypeBitmap, Resident: false}
	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)

	vector := &fakeVector{blocks: [][]byte{{0x01}, {0x02}}}
	opener := func(*mft.AttributeFacade) (mft.ClusterBlockVector, error) { return vector, nil }

	v, err := mft.MaterializeValue(f, nil, opener, 0)
	require.Nilf(t, err, "unexpected error: %v", err)
	bm, ok := v.(*mft.Bitmap)
	require.True(t, ok)
	assert.Equal(t, 16, bm.Len())
	assert.Equal(t, 2, bm.Cardinality())
}

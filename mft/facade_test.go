package mft_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t9t/ntfscore/mft"
	"github.com/t9t/ntfscore/runlist"
)

func TestNewAttributeFacade_XORConstruction(t *testing.T) {
	_, err := mft.NewAttributeFacade(nil, nil)
	assert.ErrorIs(t, err, mft.ErrInvalidArgument)

	attr := &mft.Attribute{Type: mft.AttributeTypeData}
	entry := &mft.AttributeListEntry{Type: mft.AttributeTypeData}
	_, err = mft.NewAttributeFacade(attr, entry)
	assert.ErrorIs(t, err, mft.ErrInvalidArgument)

	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.False(t, f.IsListEntryBound())

	f, err = mft.NewAttributeFacade(nil, entry)
	require.Nilf(t, err, "unexpected error: %v", err)
	assert.True(t, f.IsListEntryBound())
}

func TestAttributeFacade_OwningAttributeAccessors(t *testing.T) {
	attr := &mft.Attribute{
		Type:          mft.AttributeTypeData,
		Name:          "foo",
		Flags:         mft.AttributeFlagsSparse,
		Resident:      false,
		DataFirstVCN:  0,
		DataLastVCN:   1,
		DataSize:      8192,
		ValidDataSize: 4096,
		Runs:          []runlist.Run{{VCN: 0, Count: 2, LCN: 10}},
	}
	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)

	assert.Equal(t, mft.AttributeTypeData, f.Type())
	assert.Equal(t, mft.AttributeFlagsSparse, f.DataFlags())
	assert.Equal(t, "foo", f.Utf8Name())
	assert.Equal(t, 3, f.Utf16NameSize())
	assert.Equal(t, uint64(8192), f.DataSize())
	assert.Equal(t, uint64(4096), f.ValidDataSize())

	first, last, ok := f.DataVcnRange()
	assert.True(t, ok)
	assert.Equal(t, uint64(0), first)
	assert.Equal(t, uint64(1), last)

	assert.Equal(t, 1, f.DataRunCount())
	run, ok := f.DataRunAt(0)
	assert.True(t, ok)
	assert.Equal(t, uint64(10), run.LCN)

	_, ok = f.DataRunAt(1)
	assert.False(t, ok)
}

func TestAttributeFacade_ListEntryBoundAccessors(t *testing.T) {
	entry := &mft.AttributeListEntry{Type: mft.AttributeTypeData, Name: "bar"}
	f, err := mft.NewAttributeFacade(nil, entry)
	require.Nilf(t, err, "unexpected error: %v", err)

	assert.Equal(t, mft.AttributeFlags(0), f.DataFlags())
	assert.Equal(t, uint64(0), f.DataSize())
	assert.Equal(t, uint64(0), f.ValidDataSize())
	_, _, ok := f.DataVcnRange()
	assert.False(t, ok)
	assert.Equal(t, 0, f.DataRunCount())

	ref, ok := f.FileReference()
	assert.True(t, ok)
	assert.Equal(t, entry.FileReference, ref)
}

func TestAttributeFacade_ValueCachesAndDeduplicatesMaterialization(t *testing.T) {
	attr := &mft.Attribute{Type: mft.AttributeTypeStandardInformation, Resident: true, Data: []byte{1, 2, 3}}
	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)

	calls := 0
	var mu sync.Mutex
	materialize := func() (interface{}, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "parsed", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := f.Value(materialize)
			assert.Nil(t, err)
			assert.Equal(t, "parsed", v)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
}

func TestAttributeFacade_ValueCachesFailure(t *testing.T) {
	attr := &mft.Attribute{Type: mft.AttributeTypeStandardInformation, Resident: true}
	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)

	wantErr := errors.New("boom")
	calls := 0
	materialize := func() (interface{}, error) {
		calls++
		return nil, wantErr
	}

	_, err = f.Value(materialize)
	assert.Equal(t, wantErr, err)
	_, err = f.Value(materialize)
	assert.Equal(t, wantErr, err)
	assert.Equal(t, 1, calls)
}

func TestAttributeFacade_Reset(t *testing.T) {
	attr := &mft.Attribute{Type: mft.AttributeTypeStandardInformation, Resident: true}
	f, err := mft.NewAttributeFacade(attr, nil)
	require.Nilf(t, err, "unexpected error: %v", err)

	calls := 0
	materialize := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	v, _ := f.Value(materialize)
	assert.Equal(t, 1, v)
	f.Reset()
	v, _ = f.Value(materialize)
	assert.Equal(t, 2, v)
}

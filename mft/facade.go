package mft

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/t9t/ntfscore/runlist"
	"github.com/t9t/ntfscore/utf16"
)

// materializationState tracks the lazily-parsed typed value cached on an AttributeFacade.
type materializationState int

const (
	materializationNotYet materializationState = iota
	materializationInProgress
	materializationReady
	materializationFailed
)

// AttributeFacade is a uniform view over an attribute, regardless of whether it was reached directly as an owning
// MFT attribute record or indirectly through a $ATTRIBUTE_LIST entry pointing at a different MFT record. Exactly one
// of the two collaborators is bound; all public accessors route to whichever one is present. Materializing the
// typed value is lazy and protected by a read-write lock: a reader that observes materializationReady is guaranteed
// to observe the fully-populated cached value.
type AttributeFacade struct {
	mu sync.RWMutex

	attribute *Attribute
	listEntry *AttributeListEntry

	state materializationState
	value interface{}
	err   error
}

// NewAttributeFacade constructs a facade bound to exactly one of attribute or listEntry. Passing both, or neither,
// is a construction error.
func NewAttributeFacade(attribute *Attribute, listEntry *AttributeListEntry) (*AttributeFacade, error) {
	if (attribute == nil) == (listEntry == nil) {
		return nil, fmt.Errorf("%w: exactly one of attribute or list entry must be bound", ErrInvalidArgument)
	}
	return &AttributeFacade{attribute: attribute, listEntry: listEntry}, nil
}

// IsListEntryBound reports whether this facade is bound to a $ATTRIBUTE_LIST entry rather than an owning attribute.
func (f *AttributeFacade) IsListEntryBound() bool {
	return f.listEntry != nil
}

// Type returns the attribute type, from whichever collaborator is bound.
func (f *AttributeFacade) Type() AttributeType {
	if f.attribute != nil {
		return f.attribute.Type
	}
	return f.listEntry.Type
}

// Name returns the attribute's name, or "" if it is unnamed.
func (f *AttributeFacade) Name() string {
	if f.attribute != nil {
		return f.attribute.Name
	}
	return f.listEntry.Name
}

// DataFlags returns the attribute's data_flags. A list-entry-bound facade always reports 0, since that field only
// exists on the owning attribute record.
func (f *AttributeFacade) DataFlags() AttributeFlags {
	if f.attribute != nil {
		return f.attribute.Flags
	}
	return 0
}

// ResidentData returns the owning attribute's inline data and true, when this facade is bound to a resident owning
// attribute. It returns (nil, false) for a non-resident attribute or a list-entry-bound facade.
func (f *AttributeFacade) ResidentData() ([]byte, bool) {
	if f.attribute == nil || !f.attribute.Resident {
		return nil, false
	}
	return f.attribute.Data, true
}

// Utf8NameSize returns the byte length of Name() when encoded as UTF-8.
func (f *AttributeFacade) Utf8NameSize() int {
	return len(f.Name())
}

// Utf8Name returns the attribute's name as a UTF-8 string.
func (f *AttributeFacade) Utf8Name() string {
	return f.Name()
}

// Utf16NameSize returns the number of UTF-16 code units Name() occupies on disk.
func (f *AttributeFacade) Utf16NameSize() int {
	return utf16.CodeUnitCount(f.Name())
}

// Utf16Name returns the attribute's name re-encoded as UTF-16LE bytes, reproducing the on-disk name bytes.
func (f *AttributeFacade) Utf16Name() ([]byte, error) {
	return utf16.EncodeString(f.Name(), binary.LittleEndian)
}

// DataSize returns the attribute's logical data size: for a resident owning attribute, the length of its inline
// data; for a non-resident owning attribute, the declared data_size field. A list-entry-bound facade always reports
// 0, matching §4.4.
func (f *AttributeFacade) DataSize() uint64 {
	if f.attribute == nil {
		return 0
	}
	if f.attribute.Resident {
		return uint64(len(f.attribute.Data))
	}
	return f.attribute.DataSize
}

// ValidDataSize returns the attribute's valid_data_size: for a resident attribute this equals DataSize (residents
// have no partially-valid tail), for non-resident it is the declared field. A list-entry-bound facade reports 0.
func (f *AttributeFacade) ValidDataSize() uint64 {
	if f.attribute == nil {
		return 0
	}
	if f.attribute.Resident {
		return uint64(len(f.attribute.Data))
	}
	return f.attribute.ValidDataSize
}

// DataVcnRange returns the attribute's first and last VCN, and true, when this is a non-resident owning attribute.
// It returns (0, 0, false) for a resident attribute or a list-entry-bound facade, both of which have no run list to
// report a VCN range for.
func (f *AttributeFacade) DataVcnRange() (first uint64, last uint64, ok bool) {
	if f.attribute == nil || f.attribute.Resident {
		return 0, 0, false
	}
	return f.attribute.DataFirstVCN, f.attribute.DataLastVCN, true
}

// DataRunCount returns the number of decoded runs backing a non-resident owning attribute, or 0 otherwise.
func (f *AttributeFacade) DataRunCount() int {
	if f.attribute == nil || f.attribute.Resident {
		return 0
	}
	return len(f.attribute.Runs)
}

// DataRunAt returns the run at index i, and true, when i is in range of a non-resident owning attribute's run list.
func (f *AttributeFacade) DataRunAt(i int) (runlist.Run, bool) {
	if f.attribute == nil || f.attribute.Resident || i < 0 || i >= len(f.attribute.Runs) {
		return runlist.Run{}, false
	}
	return f.attribute.Runs[i], true
}

// FileReference returns the file reference identifying which MFT record actually owns the attribute data: the
// list entry's target when list-entry-bound, or the zero value when owning-attribute-bound (the caller already
// knows which record it read the attribute from).
func (f *AttributeFacade) FileReference() (FileReference, bool) {
	if f.listEntry != nil {
		return f.listEntry.FileReference, true
	}
	return FileReference{}, false
}

// Value returns the facade's lazily-materialized typed value, computing it via materialize on first access and
// caching the result (or failure) for every later call. materialize is invoked with the facade's write lock held
// exclusively; it must not itself call back into this facade.
func (f *AttributeFacade) Value(materialize func() (interface{}, error)) (interface{}, error) {
	f.mu.RLock()
	switch f.state {
	case materializationReady:
		v, err := f.value, f.err
		f.mu.RUnlock()
		return v, err
	case materializationFailed:
		err := f.err
		f.mu.RUnlock()
		return nil, err
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Re-check: another goroutine may have materialized the value between the RUnlock above and this Lock.
	switch f.state {
	case materializationReady:
		return f.value, f.err
	case materializationFailed:
		return nil, f.err
	}

	f.state = materializationInProgress
	value, err := materialize()
	if err != nil {
		f.state = materializationFailed
		f.err = err
		return nil, err
	}
	f.state = materializationReady
	f.value = value
	return value, nil
}

// Reset discards any materialized value, so the next Value call re-runs materialize. Used by tests and by callers
// that need to force re-parsing after the backing bytes change.
func (f *AttributeFacade) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = materializationNotYet
	f.value = nil
	f.err = nil
}

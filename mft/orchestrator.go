package mft

import "fmt"

// ReadFlags controls value materialization behavior.
type ReadFlags uint8

// ReadFlagMftOnly restricts materialization to resident attributes: a non-resident attribute yields an empty typed
// value of the right kind instead of triggering any device I/O.
const ReadFlagMftOnly ReadFlags = 0x01

// Is reports whether this ReadFlags's bit mask contains c.
func (f ReadFlags) Is(c ReadFlags) bool {
	return f&c == c
}

// ClusterStream is the read surface an opened attribute data stream (C6) must provide to materialize a
// stream-sourced typed value such as $SECURITY_DESCRIPTOR.
type ClusterStream interface {
	// ReadAt reads len(p) bytes starting at logical byte offset off, per §4.6's sparse/valid-data-size/compression
	// semantics. It follows io.ReaderAt's contract.
	ReadAt(p []byte, off int64) (int, error)
	// Len returns the attribute's logical data size in bytes.
	Len() uint64
}

// ClusterBlockVector is a cluster-block cache (C7) over a ClusterStream, used by value materializers that consume
// one cluster at a time (currently $BITMAP).
type ClusterBlockVector interface {
	// Get returns the decoded bytes of block i. The returned slice is only valid until the next Get call.
	Get(i int) ([]byte, error)
	// BlockCount returns the number of blocks in the vector.
	BlockCount() int
}

// StreamOpener opens a ClusterStream over a non-resident attribute's data, given the facade bound to it.
type StreamOpener func(f *AttributeFacade) (ClusterStream, error)

// VectorOpener opens a ClusterBlockVector over a non-resident attribute's data, given the facade bound to it.
type VectorOpener func(f *AttributeFacade) (ClusterBlockVector, error)

// residentOnlyTypes is the set of attribute types whose typed value this core only knows how to parse from resident
// data; encountering one of them non-resident is a structural error rather than a type this layer quietly defers.
var residentOnlyTypes = map[AttributeType]bool{
	AttributeTypeFileName:            true,
	AttributeTypeStandardInformation: true,
	AttributeTypeObjectId:            true,
	AttributeTypeReparsePoint:        true,
	AttributeTypeVolumeInformation:   true,
	AttributeTypeVolumeName:          true,
}

// MaterializeValue implements the value-materialization half of the attribute facade contract (§4.8): it fetches
// (or computes and caches) the facade's typed value, dispatching on the attribute's type and residency. openStream
// and openVector are only invoked for the two types that need them ($SECURITY_DESCRIPTOR, $BITMAP respectively) and
// may be nil when materializing any other type.
//
// The returned value's concrete type depends on attr's AttributeType: StandardInformation, FileName, ObjectId,
// ReparsePoint, SecurityDescriptor, VolumeInformation, string (for $VOLUME_NAME), *Bitmap, or LoggedUtilityStream
// (for a resident $LOGGED_UTILITY_STREAM). For $INDEX_ALLOCATION, $INDEX_ROOT, $DATA, $ATTRIBUTE_LIST, a
// non-resident $LOGGED_UTILITY_STREAM read without ReadFlagMftOnly, and unrecognized types, MaterializeValue returns
// (nil, nil): those types are left to higher layers (step 9), which consume the facade's raw data/run list/stream
// access directly instead of a parsed value.
func MaterializeValue(f *AttributeFacade, openStream StreamOpener, openVector VectorOpener, flags ReadFlags) (interface{}, error) {
	return f.Value(func() (interface{}, error) {
		return materializeAttributeValue(f, openStream, openVector, flags)
	})
}

func materializeAttributeValue(f *AttributeFacade, openStream StreamOpener, openVector VectorOpener, flags ReadFlags) (interface{}, error) {
	data, resident := f.ResidentData()
	if resident {
		return parseResidentValue(f.Type(), f.Name(), data)
	}

	if flags.Is(ReadFlagMftOnly) {
		return emptyValueFor(f.Type()), nil
	}

	attrType := f.Type()

	switch attrType {
	case AttributeTypeSecurityDescriptor:
		if f.DataFlags()&AttributeFlagsCompressionMask != 0 {
			return nil, ErrUnsupportedCompression
		}
		if openStream == nil {
			return nil, fmt.Errorf("%w: no stream opener provided for $SECURITY_DESCRIPTOR", ErrInternal)
		}
		stream, err := openStream(f)
		if err != nil {
			return nil, fmt.Errorf("unable to open security descriptor stream: %w", err)
		}
		return readSecurityDescriptorFromStream(stream)
	case AttributeTypeBitmap:
		if f.DataFlags()&AttributeFlagsCompressionMask != 0 {
			return nil, ErrUnsupportedCompression
		}
		if openVector == nil {
			return nil, fmt.Errorf("%w: no vector opener provided for $BITMAP", ErrInternal)
		}
		vector, err := openVector(f)
		if err != nil {
			return nil, fmt.Errorf("unable to open bitmap block vector: %w", err)
		}
		return readBitmapFromVector(vector)
	}

	if residentOnlyTypes[attrType] {
		return nil, ErrUnsupportedNonResident
	}

	// INDEX_ALLOCATION, INDEX_ROOT, DATA, ATTRIBUTE_LIST, LOGGED_UTILITY_STREAM, and unrecognized types: left to
	// higher layers, which read the facade's raw data/run list/stream directly.
	return nil, nil
}

// parseResidentValue dispatches a resident attribute's data slice to the matching C5 typed-value parser.
func parseResidentValue(attrType AttributeType, name string, data []byte) (interface{}, error) {
	switch attrType {
	case AttributeTypeStandardInformation:
		return ParseStandardInformation(data)
	case AttributeTypeFileName:
		return ParseFileName(data)
	case AttributeTypeObjectId:
		return ParseObjectId(data)
	case AttributeTypeReparsePoint:
		return ParseReparsePoint(data)
	case AttributeTypeSecurityDescriptor:
		return ParseSecurityDescriptor(data)
	case AttributeTypeVolumeInformation:
		return ParseVolumeInformation(data)
	case AttributeTypeVolumeName:
		return ParseVolumeName(data)
	case AttributeTypeBitmap:
		return ParseBitmap(data), nil
	case AttributeTypeLoggedUtilityStream:
		return ParseLoggedUtilityStream(name, data)
	}
	// INDEX_ALLOCATION, INDEX_ROOT, DATA, ATTRIBUTE_LIST, and unrecognized types: left to higher layers.
	return nil, nil
}

// emptyValueFor returns the zero-value typed value container for attrType, used when MFT_ONLY suppresses
// non-resident materialization (§4.8 step 4).
func emptyValueFor(attrType AttributeType) interface{} {
	switch attrType {
	case AttributeTypeStandardInformation:
		return StandardInformation{}
	case AttributeTypeFileName:
		return FileName{}
	case AttributeTypeObjectId:
		return ObjectId{}
	case AttributeTypeReparsePoint:
		return ReparsePoint{}
	case AttributeTypeSecurityDescriptor:
		return SecurityDescriptor{}
	case AttributeTypeVolumeInformation:
		return VolumeInformation{}
	case AttributeTypeVolumeName:
		return ""
	case AttributeTypeBitmap:
		return NewBitmap()
	case AttributeTypeLoggedUtilityStream:
		return LoggedUtilityStream{}
	}
	return nil
}

// readSecurityDescriptorFromStream reads a $SECURITY_DESCRIPTOR attribute's entire non-resident data and parses it
// directly as a self-relative security descriptor (§4.8 step 6).
func readSecurityDescriptorFromStream(stream ClusterStream) (interface{}, error) {
	size := stream.Len()
	if size > uint64(maxInt) {
		return nil, fmt.Errorf("%w: security descriptor stream length %d overflows maximum int", ErrInternal, size)
	}
	buf := make([]byte, size)
	if _, err := stream.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	return ParseSecurityDescriptor(buf)
}

// readBitmapFromVector iterates every block of vector, feeding each into an append-only Bitmap (§4.8 step 7).
func readBitmapFromVector(vector ClusterBlockVector) (interface{}, error) {
	bm := NewBitmap()
	for i := 0; i < vector.BlockCount(); i++ {
		block, err := vector.Get(i)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIoFailure, err)
		}
		bm.Append(block)
	}
	return bm, nil
}

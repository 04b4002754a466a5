package mft

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/t9t/ntfscore/binutil"
	"github.com/t9t/ntfscore/runlist"
	"github.com/t9t/ntfscore/utf16"
)

const maxInt = int64(^uint(0) >> 1)

// AttributeType identifies the kind of attribute (its "$NAME" in NTFS documentation). Use Name() for a readable
// label.
type AttributeType uint32

const (
	AttributeTypeStandardInformation AttributeType = 0x10
	AttributeTypeAttributeList       AttributeType = 0x20
	AttributeTypeFileName            AttributeType = 0x30
	AttributeTypeObjectId            AttributeType = 0x40
	AttributeTypeSecurityDescriptor  AttributeType = 0x50
	AttributeTypeVolumeName          AttributeType = 0x60
	AttributeTypeVolumeInformation   AttributeType = 0x70
	AttributeTypeData                AttributeType = 0x80
	AttributeTypeIndexRoot           AttributeType = 0x90
	AttributeTypeIndexAllocation     AttributeType = 0xa0
	AttributeTypeBitmap              AttributeType = 0xb0
	AttributeTypeReparsePoint        AttributeType = 0xc0
	AttributeTypeEAInformation       AttributeType = 0xd0
	AttributeTypeEA                  AttributeType = 0xe0
	AttributeTypePropertySet         AttributeType = 0xf0
	AttributeTypeLoggedUtilityStream AttributeType = 0x100
	AttributeTypeTerminator          AttributeType = 0xFFFFFFFF
)

// Name returns a human-readable label for the attribute type, e.g. "$STANDARD_INFORMATION", or "unknown" for any
// value this package does not recognize.
func (at AttributeType) Name() string {
	switch at {
	case AttributeTypeStandardInformation:
		return "$STANDARD_INFORMATION"
	case AttributeTypeAttributeList:
		return "$ATTRIBUTE_LIST"
	case AttributeTypeFileName:
		return "$FILE_NAME"
	case AttributeTypeObjectId:
		return "$OBJECT_ID"
	case AttributeTypeSecurityDescriptor:
		return "$SECURITY_DESCRIPTOR"
	case AttributeTypeVolumeName:
		return "$VOLUME_NAME"
	case AttributeTypeVolumeInformation:
		return "$VOLUME_INFORMATION"
	case AttributeTypeData:
		return "$DATA"
	case AttributeTypeIndexRoot:
		return "$INDEX_ROOT"
	case AttributeTypeIndexAllocation:
		return "$INDEX_ALLOCATION"
	case AttributeTypeBitmap:
		return "$BITMAP"
	case AttributeTypeReparsePoint:
		return "$REPARSE_POINT"
	case AttributeTypeEAInformation:
		return "$EA_INFORMATION"
	case AttributeTypeEA:
		return "$EA"
	case AttributeTypePropertySet:
		return "$PROPERTY_SET"
	case AttributeTypeLoggedUtilityStream:
		return "$LOGGED_UTILITY_STREAM"
	}
	return "unknown"
}

// AttributeFlags is a bit mask describing an attribute's data (data_flags in the on-disk header).
type AttributeFlags uint16

const (
	AttributeFlagsCompressed AttributeFlags = 0x0001
	// AttributeFlagsCompressionMask covers the full compression sub-field, of which Compressed is the
	// general-purpose bit NTFS actually sets; some documentation calls this the compression_mask.
	AttributeFlagsCompressionMask AttributeFlags = 0x00FF
	AttributeFlagsEncrypted       AttributeFlags = 0x4000
	AttributeFlagsSparse          AttributeFlags = 0x8000
)

// Is reports whether this AttributeFlags's bit mask contains c.
func (f AttributeFlags) Is(c AttributeFlags) bool {
	return f&c == c
}

// Attribute is a parsed MFT attribute record: the common header, fields specific to residency, and either the
// resident data slice or a decoded run list. CompressionUnitSize is the on-disk power-of-two exponent (0 means
// uncompressed); CompressionUnitClusters reports the corresponding cluster count.
type Attribute struct {
	Type        AttributeType
	Resident    bool
	Name        string
	Flags       AttributeFlags
	AttributeId int

	// Resident fields.
	Data []byte

	// Non-resident fields.
	DataFirstVCN        uint64
	DataLastVCN         uint64
	CompressionUnitSize uint16
	AllocatedSize       uint64
	DataSize            uint64
	ValidDataSize       uint64
	CompressedSize      uint64
	Runs                []runlist.Run
}

// CompressionUnitClusters returns the number of clusters grouped into one LZNT1 compression unit, derived from the
// on-disk power-of-two exponent. It is 0 when the attribute carries no compression unit size.
func (a Attribute) CompressionUnitClusters() uint64 {
	if a.CompressionUnitSize == 0 {
		return 0
	}
	return 1 << a.CompressionUnitSize
}

// ParseAttributes parses the bytes of every attribute record inside an MFT entry body, in order, stopping at an
// end-of-list (0xFFFFFFFF) marker or when the data is exhausted.
func ParseAttributes(b []byte) ([]Attribute, error) {
	attributes := make([]Attribute, 0)
	for len(b) > 0 {
		if len(b) < 4 {
			return nil, fmt.Errorf("%w: attribute header needs at least 4 bytes, got %d", ErrTruncated, len(b))
		}

		r := binutil.NewLittleEndianReader(b)
		attrType := r.Uint32(0)
		if attrType == uint32(AttributeTypeTerminator) {
			break
		}

		if len(b) < 8 {
			return nil, fmt.Errorf("%w: attribute header length field needs at least 8 bytes, got %d", ErrTruncated, len(b))
		}

		uRecordLength := r.Uint32(0x04)
		if int64(uRecordLength) > maxInt {
			return nil, fmt.Errorf("%w: record length %d overflows maximum int", ErrMisalignedSize, uRecordLength)
		}
		recordLength := int(uRecordLength)
		if recordLength <= 0 || recordLength%8 != 0 {
			return nil, fmt.Errorf("%w: attribute record length %d is not a positive multiple of 8", ErrMisalignedSize, recordLength)
		}
		if recordLength > len(b) {
			return nil, fmt.Errorf("%w: attribute record length %d exceeds remaining data %d", ErrTruncated, recordLength, len(b))
		}

		attribute, err := ParseAttribute(r.Read(0, recordLength))
		if err != nil {
			return nil, err
		}
		attributes = append(attributes, attribute)
		b = r.ReadFrom(recordLength)
	}
	return attributes, nil
}

// ParseAttribute parses one attribute record, given its full bytes (header through data/run-list). It reads the
// 16-byte common prefix, then branches on residency: resident attributes carry their payload inline; non-resident
// attributes carry VCN range, allocation bookkeeping, and a packed run list decoded via the runlist package.
func ParseAttribute(b []byte) (Attribute, error) {
	if len(b) < 16 {
		return Attribute{}, fmt.Errorf("%w: attribute header needs at least 16 bytes, got %d", ErrTruncated, len(b))
	}

	r := binutil.NewLittleEndianReader(b)

	nameLength := int(r.Byte(0x09))
	nameOffset := int(r.Uint16(0x0A))
	if nameOffset+nameLength*2 > len(b) {
		return Attribute{}, fmt.Errorf("%w: name extends past attribute record", ErrNameOutOfBounds)
	}
	name := ""
	if nameLength != 0 {
		decoded, err := utf16.DecodeString(r.Read(nameOffset, nameLength*2), binary.LittleEndian)
		if err != nil {
			return Attribute{}, fmt.Errorf("unable to decode attribute name: %w", err)
		}
		name = decoded
	}

	attr := Attribute{
		Type:        AttributeType(r.Uint32(0)),
		Resident:    r.Byte(0x08) == 0x00,
		Name:        name,
		Flags:       AttributeFlags(r.Uint16(0x0C)),
		AttributeId: int(r.Uint16(0x0E)),
	}

	if attr.Resident {
		if len(b) < 0x18 {
			return Attribute{}, fmt.Errorf("%w: resident header needs at least 24 bytes, got %d", ErrTruncated, len(b))
		}
		dataOffset := int(r.Uint16(0x14))
		uDataLength := r.Uint32(0x10)
		if int64(uDataLength) > maxInt {
			return Attribute{}, fmt.Errorf("%w: data length %d overflows maximum int", ErrMisalignedSize, uDataLength)
		}
		dataLength := int(uDataLength)
		if dataOffset+dataLength > len(b) {
			return Attribute{}, fmt.Errorf("%w: resident data [%d,%d) extends past record of %d bytes", ErrTruncated, dataOffset, dataOffset+dataLength, len(b))
		}
		attr.Data = binutil.Duplicate(r.Read(dataOffset, dataLength))
		return attr, nil
	}

	if len(b) < 0x40 {
		return Attribute{}, fmt.Errorf("%w: non-resident header needs at least 64 bytes, got %d", ErrTruncated, len(b))
	}

	attr.DataFirstVCN = r.Uint64(0x10)
	attr.DataLastVCN = r.Uint64(0x18)
	runsOffset := int(r.Uint16(0x20))
	attr.CompressionUnitSize = r.Uint16(0x22)
	attr.AllocatedSize = r.Uint64(0x28)
	attr.DataSize = r.Uint64(0x30)
	attr.ValidDataSize = r.Uint64(0x38)
	if attr.Flags.Is(AttributeFlagsCompressed) {
		if len(b) < 0x48 {
			return Attribute{}, fmt.Errorf("%w: compressed non-resident header needs at least 72 bytes, got %d", ErrTruncated, len(b))
		}
		attr.CompressedSize = r.Uint64(0x40)
	}

	if runsOffset < 0x40 || runsOffset > len(b) {
		return Attribute{}, fmt.Errorf("%w: run list offset %d outside of record", ErrRunListOutOfBounds, runsOffset)
	}
	runs, err := runlist.Decode(r.ReadFrom(runsOffset), attr.DataFirstVCN)
	if err != nil {
		switch {
		case errors.Is(err, runlist.ErrInvalidRunHeader):
			return Attribute{}, fmt.Errorf("%w: unable to decode run list: %w", ErrInvalidRunHeader, err)
		case errors.Is(err, runlist.ErrOutOfBounds):
			return Attribute{}, fmt.Errorf("%w: unable to decode run list: %w", ErrRunListOutOfBounds, err)
		}
		return Attribute{}, fmt.Errorf("unable to decode run list: %w", err)
	}
	expectedRunCount := attr.DataLastVCN - attr.DataFirstVCN + 1
	if runlist.TotalClusters(runs) != expectedRunCount {
		return Attribute{}, fmt.Errorf("%w: run list covers %d clusters, expected %d", ErrUnexpectedRunCount, runlist.TotalClusters(runs), expectedRunCount)
	}
	attr.Runs = runs

	return attr, nil
}

package mft

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/t9t/ntfscore/binutil"
)

var fileSignature = []byte{0x46, 0x49, 0x4c, 0x45} // "FILE"

// FileReference packs an MFT entry index (low 48 bits) and a sequence number (high 16 bits) into a single 64-bit
// value, the form NTFS uses on disk to refer to a specific incarnation of an MFT record.
type FileReference struct {
	RecordNumber   uint64
	SequenceNumber uint16
}

// ParseFileReference parses a little-endian 8-byte slice into a FileReference.
func ParseFileReference(b []byte) (FileReference, error) {
	if len(b) != 8 {
		return FileReference{}, fmt.Errorf("%w: expected 8 bytes but got %d", ErrInvalidArgument, len(b))
	}
	return FileReference{
		RecordNumber:   binary.LittleEndian.Uint64(binutil.PadTo(b[:6], 8, false)),
		SequenceNumber: binary.LittleEndian.Uint16(b[6:]),
	}, nil
}

// Packed returns the on-disk 64-bit packed representation of the reference.
func (f FileReference) Packed() uint64 {
	return (f.RecordNumber & 0x0000FFFFFFFFFFFF) | (uint64(f.SequenceNumber) << 48)
}

// CompareByFileReference implements the total order over file references required by $ATTRIBUTE_LIST reassembly:
// comparison is on the low 48 bits (the MFT record number) only, with ties broken by the supplied identifiers.
// It returns a negative number, zero, or a positive number as a < b, a == b, or a > b.
func CompareByFileReference(a, b FileReference, aIdentifier, bIdentifier uint16) int {
	if a.RecordNumber != b.RecordNumber {
		if a.RecordNumber < b.RecordNumber {
			return -1
		}
		return 1
	}
	if aIdentifier != bIdentifier {
		if aIdentifier < bIdentifier {
			return -1
		}
		return 1
	}
	return 0
}

// RecordFlag is a bit mask describing the status of an MFT record.
type RecordFlag uint16

const (
	RecordFlagInUse       RecordFlag = 0x0001
	RecordFlagIsDirectory RecordFlag = 0x0002
	RecordFlagInExtend    RecordFlag = 0x0004
	RecordFlagIsIndex     RecordFlag = 0x0008
)

// Is reports whether this RecordFlag's bit mask contains c.
func (f RecordFlag) Is(c RecordFlag) bool {
	return f&c == c
}

// Record is a parsed MFT entry, excluding the purely technical fields (update sequence array location, and the
// like) consumed entirely during parsing. When this is a base record, BaseRecordReference is the zero value; when it
// is an extension record, BaseRecordReference points back to the base record it extends.
type Record struct {
	FileReference         FileReference
	BaseRecordReference   FileReference
	LogFileSequenceNumber uint64
	HardLinkCount         int
	Flags                 RecordFlag
	ActualSize            uint32
	AllocatedSize         uint32
	NextAttributeId       int
	Attributes            []Attribute
}

// ParseRecord parses b, the bytes of one MFT entry, applying the update-sequence-array fixup before extracting the
// record header and every attribute header it contains. Only attribute headers are parsed here: resident data is
// sliced out eagerly, but typed payload parsing is left to the C5 parsers (values_*.go), dispatched by
// orchestrator.go.
func ParseRecord(b []byte) (Record, error) {
	if len(b) < 48 {
		return Record{}, fmt.Errorf("%w: record data should be at least 48 bytes but is %d", ErrTruncated, len(b))
	}
	if !bytes.Equal(b[:4], fileSignature) {
		return Record{}, fmt.Errorf("%w: unknown record signature %#x", ErrInvalidArgument, b[:4])
	}

	b = binutil.Duplicate(b)
	r := binutil.NewLittleEndianReader(b)

	baseRecordRef, err := ParseFileReference(r.Read(0x20, 8))
	if err != nil {
		return Record{}, fmt.Errorf("unable to parse base record reference: %w", err)
	}

	firstAttributeOffset := int(r.Uint16(0x14))
	if firstAttributeOffset < 0 || firstAttributeOffset >= len(b) {
		return Record{}, fmt.Errorf("%w: invalid first attribute offset %d (data length %d)", ErrTruncated, firstAttributeOffset, len(b))
	}

	updateSequenceOffset := int(r.Uint16(0x04))
	updateSequenceSize := int(r.Uint16(0x06))
	b, err = applyFixUp(b, updateSequenceOffset, updateSequenceSize)
	if err != nil {
		return Record{}, fmt.Errorf("unable to apply fixup: %w", err)
	}

	attributes, err := ParseAttributes(b[firstAttributeOffset:])
	if err != nil {
		return Record{}, err
	}

	return Record{
		FileReference:         FileReference{RecordNumber: uint64(r.Uint32(0x2C)), SequenceNumber: r.Uint16(0x10)},
		BaseRecordReference:   baseRecordRef,
		LogFileSequenceNumber: r.Uint64(0x08),
		HardLinkCount:         int(r.Uint16(0x12)),
		Flags:                 RecordFlag(r.Uint16(0x16)),
		ActualSize:            r.Uint32(0x18),
		AllocatedSize:         r.Uint32(0x1C),
		NextAttributeId:       int(r.Uint16(0x28)),
		Attributes:            attributes,
	}, nil
}

// FindAttributes returns every attribute of the given type contained in this record. An empty (non-nil) slice is
// returned when there are no matches.
func (r *Record) FindAttributes(attrType AttributeType) []Attribute {
	ret := make([]Attribute, 0)
	for _, a := range r.Attributes {
		if a.Type == attrType {
			ret = append(ret, a)
		}
	}
	return ret
}

// applyFixUp validates and replaces the two bytes at the end of each sector with the original content stored in the
// update sequence array, undoing the "fixup" NTFS applies on disk to detect torn writes.
func applyFixUp(b []byte, offset int, length int) ([]byte, error) {
	if length < 2 {
		return b, nil
	}
	if offset+length*2 > len(b) {
		return nil, fmt.Errorf("%w: update sequence array [%d,%d) extends past %d bytes of record data", ErrTruncated, offset, offset+length*2, len(b))
	}
	r := binutil.NewLittleEndianReader(b)

	updateSequence := r.Read(offset, length*2) // length is a count of words, not bytes
	updateSequenceNumber := updateSequence[:2]
	updateSequenceArray := updateSequence[2:]

	sectorCount := len(updateSequenceArray) / 2
	if sectorCount == 0 {
		return b, nil
	}
	sectorSize := len(b) / sectorCount

	for i := 1; i <= sectorCount; i++ {
		checkOffset := sectorSize*i - 2
		if !bytes.Equal(updateSequenceNumber, b[checkOffset:checkOffset+2]) {
			return nil, fmt.Errorf("%w: update sequence mismatch at byte %d", ErrMisalignedSize, checkOffset)
		}
	}

	for i := 0; i < sectorCount; i++ {
		fixupOffset := sectorSize*(i+1) - 2
		num := i * 2
		copy(b[fixupOffset:fixupOffset+2], updateSequenceArray[num:num+2])
	}

	return b, nil
}

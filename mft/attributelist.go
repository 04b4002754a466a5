package mft

import (
	"encoding/binary"
	"fmt"

	"github.com/t9t/ntfscore/binutil"
	"github.com/t9t/ntfscore/utf16"
)

// AttributeListEntry is one entry of a $ATTRIBUTE_LIST payload: a pointer to an attribute that may be stored in a
// different MFT record than the one holding the list.
type AttributeListEntry struct {
	Type          AttributeType
	Name          string
	StartingVCN   uint64
	FileReference FileReference
	Identifier    uint16
}

// ParseAttributeList parses every entry packed into a $ATTRIBUTE_LIST attribute's payload. Layout per entry: type
// (u32 @0x00), size (u16 @0x04), name_length (u8 @0x06), name_offset (u8 @0x07), start_vcn (u64 @0x08),
// file_reference (u64 @0x10), identifier (u16 @0x18), then an optional UTF-16LE name at name_offset.
func ParseAttributeList(b []byte) ([]AttributeListEntry, error) {
	entries := make([]AttributeListEntry, 0)
	for len(b) > 0 {
		if len(b) < 0x19 {
			return entries, fmt.Errorf("%w: attribute list entry needs at least 0x19 bytes, got %d", ErrTruncated, len(b))
		}

		r := binutil.NewLittleEndianReader(b)
		entryLength := int(r.Uint16(0x04))
		if entryLength < 0x19 || entryLength > len(b) {
			return entries, fmt.Errorf("%w: entry length %d invalid for %d remaining bytes", ErrTruncated, entryLength, len(b))
		}

		nameLength := int(r.Byte(0x06))
		nameOffset := int(r.Byte(0x07))
		if nameOffset+nameLength*2 > entryLength {
			return entries, fmt.Errorf("%w: entry name extends past entry of length %d", ErrNameOutOfBounds, entryLength)
		}
		name := ""
		if nameLength != 0 {
			decoded, err := utf16.DecodeString(r.Read(nameOffset, nameLength*2), binary.LittleEndian)
			if err != nil {
				return entries, fmt.Errorf("unable to decode attribute list entry name: %w", err)
			}
			name = decoded
		}

		fileRef, err := ParseFileReference(r.Read(0x10, 8))
		if err != nil {
			return entries, fmt.Errorf("unable to parse file reference: %w", err)
		}

		entries = append(entries, AttributeListEntry{
			Type:          AttributeType(r.Uint32(0x00)),
			Name:          name,
			StartingVCN:   r.Uint64(0x08),
			FileReference: fileRef,
			Identifier:    r.Uint16(0x18),
		})
		b = r.ReadFrom(entryLength)
	}
	return entries, nil
}

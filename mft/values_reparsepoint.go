package mft

import (
	"encoding/binary"
	"fmt"

	"github.com/t9t/ntfscore/binutil"
	"github.com/t9t/ntfscore/utf16"
)

// ReparseTag is the 32-bit tag identifying the kind of reparse point. Its high bits carry three flags in addition
// to the vendor-assigned type in the low 16 bits.
type ReparseTag uint32

const (
	reparseTagFlagIsAlias      ReparseTag = 0x20000000
	reparseTagFlagIsHighLatency ReparseTag = 0x40000000
	reparseTagFlagIsMicrosoft  ReparseTag = 0x80000000

	// ReparseTagSymlink and ReparseTagMountPoint are the two Microsoft-reserved tags this parser understands the
	// substitute-name/print-name sub-layout of.
	ReparseTagSymlink    ReparseTag = 0xA000000C
	ReparseTagMountPoint ReparseTag = 0xA0000003
)

// IsMicrosoft reports whether the tag's Microsoft-reserved bit is set.
func (t ReparseTag) IsMicrosoft() bool { return t&reparseTagFlagIsMicrosoft != 0 }

// IsNameSurrogate reports whether the tag's high bit marking a name-surrogate reparse point (symlinks, mount
// points) is set. NTFS overloads the alias bit for this purpose.
func (t ReparseTag) IsNameSurrogate() bool { return t&reparseTagFlagIsAlias != 0 }

// IsHighLatency reports whether the tag's high-latency bit is set.
func (t ReparseTag) IsHighLatency() bool { return t&reparseTagFlagIsHighLatency != 0 }

// SymlinkFlags is the flags word at the start of a symbolic-link reparse data buffer.
type SymlinkFlags uint32

const SymlinkFlagRelative SymlinkFlags = 0x00000001

// ReparsePoint is the parsed payload of a $REPARSE_POINT attribute. SubstituteName/PrintName are only populated for
// the recognized symlink/mount-point tags; other tags leave Data holding the opaque reparse-specific bytes.
type ReparsePoint struct {
	Tag             ReparseTag
	SubstituteName  string
	PrintName       string
	SymlinkFlags    SymlinkFlags
	Data            []byte
}

// ParseReparsePoint parses a resident $REPARSE_POINT payload: tag (u32), reparse data length (u16), reserved (u16),
// then data_length bytes of tag-specific data. For the symlink and mount point tags, the data further splits into a
// substitute name and a print name, located by offset/length pairs at its start.
func ParseReparsePoint(b []byte) (ReparsePoint, error) {
	if len(b) < 8 {
		return ReparsePoint{}, fmt.Errorf("%w: $REPARSE_POINT needs at least 8 bytes, got %d", ErrTruncated, len(b))
	}

	r := binutil.NewLittleEndianReader(b)
	tag := ReparseTag(r.Uint32(0x00))
	dataLength := int(r.Uint16(0x04))
	if 8+dataLength > len(b) {
		return ReparsePoint{}, fmt.Errorf("%w: reparse data length %d exceeds payload", ErrTruncated, dataLength)
	}
	data := r.Read(0x08, dataLength)

	rp := ReparsePoint{Tag: tag, Data: binutil.Duplicate(data)}

	if tag != ReparseTagSymlink && tag != ReparseTagMountPoint {
		return rp, nil
	}

	dr := binutil.NewLittleEndianReader(data)
	headerSize := 8
	if tag == ReparseTagSymlink {
		headerSize = 12
	}
	if len(data) < headerSize {
		return rp, fmt.Errorf("%w: symlink/mount-point reparse data needs at least %d bytes, got %d", ErrTruncated, headerSize, len(data))
	}

	substituteNameOffset := int(dr.Uint16(0x00))
	substituteNameLength := int(dr.Uint16(0x02))
	printNameOffset := int(dr.Uint16(0x04))
	printNameLength := int(dr.Uint16(0x06))
	pathBufferOffset := 8
	if tag == ReparseTagSymlink {
		rp.SymlinkFlags = SymlinkFlags(dr.Uint32(0x08))
		pathBufferOffset = 12
	}

	substituteBytes, err := readReparseNameBytes(dr, pathBufferOffset, substituteNameOffset, substituteNameLength)
	if err != nil {
		return rp, fmt.Errorf("substitute name: %w", err)
	}
	printBytes, err := readReparseNameBytes(dr, pathBufferOffset, printNameOffset, printNameLength)
	if err != nil {
		return rp, fmt.Errorf("print name: %w", err)
	}

	substituteName, err := utf16.DecodeString(substituteBytes, binary.LittleEndian)
	if err != nil {
		return rp, fmt.Errorf("unable to decode substitute name: %w", err)
	}
	printName, err := utf16.DecodeString(printBytes, binary.LittleEndian)
	if err != nil {
		return rp, fmt.Errorf("unable to decode print name: %w", err)
	}
	rp.SubstituteName = substituteName
	rp.PrintName = printName

	return rp, nil
}

func readReparseNameBytes(r *binutil.BinReader, pathBufferOffset, nameOffset, nameLength int) ([]byte, error) {
	b, err := r.TryRead(pathBufferOffset+nameOffset, nameLength)
	if err != nil {
		return nil, err
	}
	return b, nil
}

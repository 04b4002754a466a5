package mft

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/t9t/ntfscore/binutil"
	"github.com/t9t/ntfscore/utf16"
)

// FileNameNamespace identifies which of NTFS's parallel naming conventions a $FILE_NAME record uses.
type FileNameNamespace byte

const (
	FileNameNamespacePosix       FileNameNamespace = 0
	FileNameNamespaceWin32       FileNameNamespace = 1
	FileNameNamespaceDos         FileNameNamespace = 2
	FileNameNamespaceWin32AndDos FileNameNamespace = 3
)

// FileName is the parsed payload of a $FILE_NAME attribute.
type FileName struct {
	ParentFileReference FileReference
	Creation            time.Time
	FileLastModified    time.Time
	MftLastModified     time.Time
	LastAccess          time.Time
	AllocatedSize       uint64
	RealSize            uint64
	Flags               FileAttribute
	ReparseTag          uint32
	Namespace           FileNameNamespace
	Name                string
}

// ParseFileName parses a resident $FILE_NAME payload: parent file reference, four timestamps, allocated/real sizes,
// flags, a reparse tag (aliased with the EA size field for non-reparse files), a UTF-16 code unit count, a namespace
// tag, and the name itself.
func ParseFileName(b []byte) (FileName, error) {
	if len(b) < 66 {
		return FileName{}, fmt.Errorf("%w: $FILE_NAME needs at least 66 bytes, got %d", ErrTruncated, len(b))
	}

	nameLengthUnits := int(b[0x40])
	if nameLengthUnits > 255 {
		return FileName{}, fmt.Errorf("%w: name length %d exceeds 255 code units", ErrMisalignedSize, nameLengthUnits)
	}
	nameByteLength := nameLengthUnits * 2
	minExpectedSize := 66 + nameByteLength
	if len(b) < minExpectedSize {
		return FileName{}, fmt.Errorf("%w: $FILE_NAME payload needs at least %d bytes, got %d", ErrTruncated, minExpectedSize, len(b))
	}

	r := binutil.NewLittleEndianReader(b)
	name, err := utf16.DecodeString(r.Read(0x42, nameByteLength), binary.LittleEndian)
	if err != nil {
		return FileName{}, fmt.Errorf("unable to decode file name: %w", err)
	}
	parentRef, err := ParseFileReference(r.Read(0x00, 8))
	if err != nil {
		return FileName{}, fmt.Errorf("unable to parse parent file reference: %w", err)
	}

	return FileName{
		ParentFileReference: parentRef,
		Creation:            ConvertFileTime(r.Uint64(0x08)),
		FileLastModified:    ConvertFileTime(r.Uint64(0x10)),
		MftLastModified:     ConvertFileTime(r.Uint64(0x18)),
		LastAccess:          ConvertFileTime(r.Uint64(0x20)),
		AllocatedSize:       r.Uint64(0x28),
		RealSize:            r.Uint64(0x30),
		Flags:               FileAttribute(r.Uint32(0x38)),
		ReparseTag:          r.Uint32(0x3C),
		Namespace:           FileNameNamespace(r.Byte(0x41)),
		Name:                name,
	}, nil
}

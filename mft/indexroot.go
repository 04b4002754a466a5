package mft

import (
	"fmt"

	"github.com/t9t/ntfscore/binutil"
)

// CollationType identifies how an index's entries are ordered.
type CollationType uint32

const (
	CollationTypeBinary            CollationType = 0x00000000
	CollationTypeFileName          CollationType = 0x00000001
	CollationTypeUnicodeString     CollationType = 0x00000002
	CollationTypeNtofsULong        CollationType = 0x00000010
	CollationTypeNtofsSid          CollationType = 0x00000011
	CollationTypeNtofsSecurityHash CollationType = 0x00000012
	CollationTypeNtofsUlongs       CollationType = 0x00000013
)

// IndexRoot is the parsed payload of an $INDEX_ROOT attribute: the small, resident root node of a directory's B-tree
// index. Larger directories spill their remaining entries into a non-resident $INDEX_ALLOCATION attribute, whose
// node-level content parsing is left to higher layers per the component design; only the always-resident root node
// is parsed at this layer.
type IndexRoot struct {
	AttributeType     AttributeType
	CollationType     CollationType
	BytesPerRecord    uint32
	ClustersPerRecord uint32
	Flags             uint32
	Entries           []IndexEntry
}

// ParseIndexRoot parses a resident $INDEX_ROOT payload. Only an indexed attribute type of $FILE_NAME is supported,
// matching the only collation NTFS uses for directory indexes.
func ParseIndexRoot(b []byte) (IndexRoot, error) {
	if len(b) < 32 {
		return IndexRoot{}, fmt.Errorf("%w: $INDEX_ROOT needs at least 32 bytes, got %d", ErrTruncated, len(b))
	}

	r := binutil.NewLittleEndianReader(b)
	attributeType := AttributeType(r.Uint32(0x00))
	if attributeType != AttributeTypeFileName {
		return IndexRoot{}, fmt.Errorf("%w: unsupported indexed attribute type %s in $INDEX_ROOT", ErrUnsupportedVersion, attributeType.Name())
	}

	indexHeaderSize := int(r.Uint32(0x14))
	expectedSize := 0x20 + indexHeaderSize - 16
	if indexHeaderSize < 16 {
		return IndexRoot{}, fmt.Errorf("%w: $INDEX_ROOT index allocation size %d is smaller than the fixed node header", ErrMisalignedSize, indexHeaderSize)
	}
	if len(b) < expectedSize {
		return IndexRoot{}, fmt.Errorf("%w: $INDEX_ROOT needs %d bytes, got %d", ErrTruncated, expectedSize, len(b))
	}

	entries := []IndexEntry{}
	if indexHeaderSize > 16 {
		parsed, err := parseIndexEntries(r.Read(0x20, indexHeaderSize-16))
		if err != nil {
			return IndexRoot{}, fmt.Errorf("unable to parse index entries: %w", err)
		}
		entries = parsed
	}

	return IndexRoot{
		AttributeType:     attributeType,
		CollationType:     CollationType(r.Uint32(0x04)),
		BytesPerRecord:    r.Uint32(0x08),
		ClustersPerRecord: r.Uint32(0x0C),
		Flags:             r.Uint32(0x1C),
		Entries:           entries,
	}, nil
}

// IndexEntry is a single directory-index entry: the file reference and name of the file it indexes, plus (for an
// interior B-tree node) the VCN of the sub-node to descend into for entries comparing less than this one.
type IndexEntry struct {
	FileReference FileReference
	Flags         uint32
	FileName      FileName
	SubNodeVCN    uint64
}

const (
	indexEntryFlagPointsToSubNode   = 0x1
	indexEntryFlagIsLastEntryInNode = 0x2
)

func parseIndexEntries(b []byte) ([]IndexEntry, error) {
	entries := make([]IndexEntry, 0)
	for len(b) > 0 {
		if len(b) < 16 {
			return entries, fmt.Errorf("%w: index entry header needs at least 16 bytes, got %d", ErrTruncated, len(b))
		}

		r := binutil.NewLittleEndianReader(b)
		entryLength := int(r.Uint16(0x08))
		if entryLength < 16 || entryLength > len(b) {
			return entries, fmt.Errorf("%w: index entry length %d invalid for %d remaining bytes", ErrTruncated, entryLength, len(b))
		}

		flags := r.Uint32(0x0C)
		pointsToSubNode := flags&indexEntryFlagPointsToSubNode != 0
		isLastEntryInNode := flags&indexEntryFlagIsLastEntryInNode != 0
		contentLength := int(r.Uint16(0x0A))

		if 0x10+contentLength > entryLength {
			return entries, fmt.Errorf("%w: index entry content of length %d extends past entry of length %d", ErrTruncated, contentLength, entryLength)
		}

		var fileName FileName
		if contentLength != 0 && !isLastEntryInNode {
			parsed, err := ParseFileName(r.Read(0x10, contentLength))
			if err != nil {
				return entries, fmt.Errorf("unable to parse $FILE_NAME in index entry: %w", err)
			}
			fileName = parsed
		}

		var subNodeVCN uint64
		if pointsToSubNode {
			if entryLength < 8 {
				return entries, fmt.Errorf("%w: index entry too short to hold sub-node VCN", ErrTruncated)
			}
			subNodeVCN = r.Uint64(entryLength - 8)
		}

		fileReference, err := ParseFileReference(r.Read(0x00, 8))
		if err != nil {
			return entries, fmt.Errorf("unable to parse file reference: %w", err)
		}

		entries = append(entries, IndexEntry{
			FileReference: fileReference,
			Flags:         flags,
			FileName:      fileName,
			SubNodeVCN:    subNodeVCN,
		})
		b = r.ReadFrom(entryLength)
	}
	return entries, nil
}

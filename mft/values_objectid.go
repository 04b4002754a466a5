package mft

import (
	"fmt"

	"github.com/t9t/ntfscore/binutil"
)

// GUID is a 16-byte globally unique identifier, stored on disk as the standard mixed-endian GUID encoding.
type GUID [16]byte

// String renders the GUID in the canonical "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" form.
func (g GUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binutil.NewLittleEndianReader(g[0:4]).Uint32(0),
		binutil.NewLittleEndianReader(g[4:6]).Uint16(0),
		binutil.NewLittleEndianReader(g[6:8]).Uint16(0),
		g[8:10],
		g[10:16],
	)
}

// ObjectId is the parsed payload of a $OBJECT_ID attribute: a mandatory droid ID, plus an optional birth-volume,
// birth-object, and birth-domain ID triple carried forward from whatever volume the file was copied from.
type ObjectId struct {
	DroidId         GUID
	HasBirthFields  bool
	BirthVolumeId   GUID
	BirthObjectId   GUID
	BirthDomainId   GUID
}

// ParseObjectId parses a resident $OBJECT_ID payload. A bare payload is 16 bytes (just DroidId); a payload of 64
// bytes or more also carries the three birth-* GUIDs.
func ParseObjectId(b []byte) (ObjectId, error) {
	if len(b) < 16 {
		return ObjectId{}, fmt.Errorf("%w: $OBJECT_ID needs at least 16 bytes, got %d", ErrTruncated, len(b))
	}

	var id ObjectId
	copy(id.DroidId[:], b[0:16])

	if len(b) >= 64 {
		id.HasBirthFields = true
		copy(id.BirthVolumeId[:], b[16:32])
		copy(id.BirthObjectId[:], b[32:48])
		copy(id.BirthDomainId[:], b[48:64])
	}

	return id, nil
}

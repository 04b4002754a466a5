package mft

import (
	"encoding/binary"
	"fmt"

	"github.com/t9t/ntfscore/binutil"
	"github.com/t9t/ntfscore/utf16"
)

// VolumeFlags is a bit mask of $VOLUME_INFORMATION dirty/upgrade flags.
type VolumeFlags uint16

const (
	VolumeFlagsDirty               VolumeFlags = 0x0001
	VolumeFlagsResizeLogFile       VolumeFlags = 0x0002
	VolumeFlagsUpgradeOnMount      VolumeFlags = 0x0004
	VolumeFlagsMounted             VolumeFlags = 0x0008
	VolumeFlagsDeleteUsnUnderway   VolumeFlags = 0x0010
	VolumeFlagsRepairObjectId      VolumeFlags = 0x0020
	VolumeFlagsModifiedByChkdsk    VolumeFlags = 0x8000
)

// VolumeInformation is the parsed payload of a $VOLUME_INFORMATION attribute.
type VolumeInformation struct {
	MajorVersion byte
	MinorVersion byte
	Flags        VolumeFlags
}

// ParseVolumeInformation parses a resident $VOLUME_INFORMATION payload: reserved (u64), major version (u8), minor
// version (u8), flags (u16).
func ParseVolumeInformation(b []byte) (VolumeInformation, error) {
	if len(b) < 12 {
		return VolumeInformation{}, fmt.Errorf("%w: $VOLUME_INFORMATION needs at least 12 bytes, got %d", ErrTruncated, len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	return VolumeInformation{
		MajorVersion: r.Byte(0x08),
		MinorVersion: r.Byte(0x09),
		Flags:        VolumeFlags(r.Uint16(0x0A)),
	}, nil
}

// ParseVolumeName parses a resident $VOLUME_NAME payload: a UTF-16LE string occupying the entire payload, with no
// terminator.
func ParseVolumeName(b []byte) (string, error) {
	name, err := utf16.DecodeString(b, binary.LittleEndian)
	if err != nil {
		return "", fmt.Errorf("unable to decode volume name: %w", err)
	}
	return name, nil
}

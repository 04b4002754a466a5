package mft

import (
	"fmt"

	"github.com/t9t/ntfscore/binutil"
)

// TxfDataAttributeName is the attribute name that discriminates a TxF (Transactional NTFS) schema out of an
// otherwise opaque $LOGGED_UTILITY_STREAM payload. The comparison is case-sensitive, matching the raw UTF-16LE bytes
// NTFS stores; other logged-utility-stream names (e.g. $EFS) are left opaque, per the open question in the
// component design.
const TxfDataAttributeName = "$TXF_DATA"

// TxfData is the parsed payload of a $LOGGED_UTILITY_STREAM attribute named $TXF_DATA.
type TxfData struct {
	Version             uint16
	Flags                uint16
	RmRootFileReference  FileReference
	UsnIndexLsn          uint64
	UserDataLsn          uint64
	DirectoryIndexLsn    uint64
	Usn                  uint64
}

// LoggedUtilityStream is the parsed payload of a $LOGGED_UTILITY_STREAM attribute. TxfData is populated only when
// the owning attribute's name is $TXF_DATA; otherwise Opaque carries the raw bytes.
type LoggedUtilityStream struct {
	TxfData *TxfData
	Opaque  []byte
}

// ParseLoggedUtilityStream parses a $LOGGED_UTILITY_STREAM payload. name is the owning attribute's name; only the
// exact, case-sensitive name "$TXF_DATA" triggers the TxF schema, everything else is kept as opaque bytes.
func ParseLoggedUtilityStream(name string, b []byte) (LoggedUtilityStream, error) {
	if name != TxfDataAttributeName {
		return LoggedUtilityStream{Opaque: binutil.Duplicate(b)}, nil
	}

	txf, err := parseTxfData(b)
	if err != nil {
		return LoggedUtilityStream{}, fmt.Errorf("unable to parse $TXF_DATA: %w", err)
	}
	return LoggedUtilityStream{TxfData: &txf}, nil
}

func parseTxfData(b []byte) (TxfData, error) {
	if len(b) < 44 {
		return TxfData{}, fmt.Errorf("%w: $TXF_DATA needs at least 44 bytes, got %d", ErrTruncated, len(b))
	}

	r := binutil.NewLittleEndianReader(b)
	rmRootRef, err := ParseFileReference(r.Read(0x04, 8))
	if err != nil {
		return TxfData{}, fmt.Errorf("unable to parse RM root file reference: %w", err)
	}

	return TxfData{
		Version:             r.Uint16(0x00),
		Flags:               r.Uint16(0x02),
		RmRootFileReference: rmRootRef,
		UsnIndexLsn:         r.Uint64(0x0C),
		UserDataLsn:         r.Uint64(0x14),
		DirectoryIndexLsn:   r.Uint64(0x1C),
		Usn:                 r.Uint64(0x24),
	}, nil
}

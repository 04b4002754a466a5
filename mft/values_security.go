package mft

import (
	"fmt"

	"github.com/t9t/ntfscore/binutil"
)

// SecurityDescriptorControl is the control bitfield of a self-relative security descriptor.
type SecurityDescriptorControl uint16

const (
	SecurityDescriptorControlSelfRelative SecurityDescriptorControl = 0x8000
	SecurityDescriptorControlDaclPresent  SecurityDescriptorControl = 0x0004
	SecurityDescriptorControlSaclPresent  SecurityDescriptorControl = 0x0010
)

// Sid is a Windows security identifier: a revision, a 48-bit identifier authority, and a chain of sub-authorities.
type Sid struct {
	Revision            byte
	IdentifierAuthority uint64
	SubAuthority        []uint32
}

// String renders the SID in its canonical "S-rev-auth-sub1-sub2-..." form.
func (s Sid) String() string {
	out := fmt.Sprintf("S-%d-%d", s.Revision, s.IdentifierAuthority)
	for _, sub := range s.SubAuthority {
		out += fmt.Sprintf("-%d", sub)
	}
	return out
}

// parseSid parses a SID starting at offset 0 of b, returning the SID and the number of bytes it occupies.
func parseSid(b []byte) (Sid, int, error) {
	if len(b) < 8 {
		return Sid{}, 0, fmt.Errorf("%w: SID needs at least 8 bytes, got %d", ErrTruncated, len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	revision := r.Byte(0x00)
	subAuthorityCount := int(r.Byte(0x01))

	// IdentifierAuthority is a 6-byte big-endian value.
	authority := uint64(0)
	for i := 0; i < 6; i++ {
		authority = authority<<8 | uint64(r.Byte(2+i))
	}

	size := 8 + subAuthorityCount*4
	if len(b) < size {
		return Sid{}, 0, fmt.Errorf("%w: SID declares %d sub-authorities but only %d bytes available", ErrTruncated, subAuthorityCount, len(b)-8)
	}

	subAuthority := make([]uint32, subAuthorityCount)
	for i := 0; i < subAuthorityCount; i++ {
		subAuthority[i] = r.Uint32(8 + i*4)
	}

	return Sid{Revision: revision, IdentifierAuthority: authority, SubAuthority: subAuthority}, size, nil
}

// AceType identifies the kind of access control entry.
type AceType byte

const (
	AceTypeAccessAllowed AceType = 0x00
	AceTypeAccessDenied  AceType = 0x01
	AceTypeSystemAudit   AceType = 0x02
	AceTypeSystemAlarm   AceType = 0x03
)

// Ace is a single access control entry: a type, flags, an access mask, and the trustee SID it applies to.
type Ace struct {
	Type   AceType
	Flags  byte
	Mask   uint32
	Sid    Sid
}

// Acl is an access control list: a revision and its parsed ACEs.
type Acl struct {
	Revision byte
	Entries  []Ace
}

func parseAcl(b []byte) (Acl, error) {
	if len(b) < 8 {
		return Acl{}, fmt.Errorf("%w: ACL header needs at least 8 bytes, got %d", ErrTruncated, len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	revision := r.Byte(0x00)
	aclSize := int(r.Uint16(0x02))
	aceCount := int(r.Uint16(0x04))
	if aclSize > len(b) {
		return Acl{}, fmt.Errorf("%w: ACL declares size %d but only %d bytes available", ErrTruncated, aclSize, len(b))
	}

	entries := make([]Ace, 0, aceCount)
	offset := 8
	for i := 0; i < aceCount; i++ {
		if offset+4 > aclSize {
			return Acl{}, fmt.Errorf("%w: ACE %d header exceeds ACL size", ErrTruncated, i)
		}
		aceType := AceType(r.Byte(offset))
		aceFlags := r.Byte(offset + 1)
		aceSize := int(r.Uint16(offset + 2))
		if offset+aceSize > aclSize {
			return Acl{}, fmt.Errorf("%w: ACE %d of size %d exceeds ACL size", ErrTruncated, i, aceSize)
		}
		mask := r.Uint32(offset + 4)
		sid, _, err := parseSid(r.ReadFrom(offset + 8))
		if err != nil {
			return Acl{}, fmt.Errorf("ACE %d: unable to parse trustee SID: %w", i, err)
		}
		entries = append(entries, Ace{Type: aceType, Flags: aceFlags, Mask: mask, Sid: sid})
		offset += aceSize
	}

	return Acl{Revision: revision, Entries: entries}, nil
}

// SecurityDescriptor is the parsed payload of a $SECURITY_DESCRIPTOR attribute: a self-relative security descriptor
// consisting of a fixed header plus owner/group SIDs and an optional SACL/DACL, all located by byte offsets relative
// to the start of the descriptor.
type SecurityDescriptor struct {
	Revision byte
	Control  SecurityDescriptorControl
	Owner    Sid
	Group    Sid
	Sacl     *Acl
	Dacl     *Acl
}

// ParseSecurityDescriptor parses a self-relative security descriptor: revision, reserved byte, control flags, then
// owner/group/SACL/DACL offsets relative to the start of b.
func ParseSecurityDescriptor(b []byte) (SecurityDescriptor, error) {
	if len(b) < 20 {
		return SecurityDescriptor{}, fmt.Errorf("%w: security descriptor needs at least 20 bytes, got %d", ErrTruncated, len(b))
	}

	r := binutil.NewLittleEndianReader(b)
	sd := SecurityDescriptor{
		Revision: r.Byte(0x00),
		Control:  SecurityDescriptorControl(r.Uint16(0x02)),
	}

	ownerOffset := r.Uint32(0x04)
	groupOffset := r.Uint32(0x08)
	saclOffset := r.Uint32(0x0C)
	daclOffset := r.Uint32(0x10)

	var err error
	if ownerOffset != 0 {
		rest, err2 := r.TryReadFrom(int(ownerOffset))
		if err2 != nil {
			return SecurityDescriptor{}, fmt.Errorf("owner SID offset: %w", err2)
		}
		sd.Owner, _, err = parseSid(rest)
		if err != nil {
			return SecurityDescriptor{}, fmt.Errorf("unable to parse owner SID: %w", err)
		}
	}
	if groupOffset != 0 {
		rest, err2 := r.TryReadFrom(int(groupOffset))
		if err2 != nil {
			return SecurityDescriptor{}, fmt.Errorf("group SID offset: %w", err2)
		}
		sd.Group, _, err = parseSid(rest)
		if err != nil {
			return SecurityDescriptor{}, fmt.Errorf("unable to parse group SID: %w", err)
		}
	}
	if sd.Control&SecurityDescriptorControlSaclPresent != 0 && saclOffset != 0 {
		rest, err2 := r.TryReadFrom(int(saclOffset))
		if err2 != nil {
			return SecurityDescriptor{}, fmt.Errorf("SACL offset: %w", err2)
		}
		sacl, err := parseAcl(rest)
		if err != nil {
			return SecurityDescriptor{}, fmt.Errorf("unable to parse SACL: %w", err)
		}
		sd.Sacl = &sacl
	}
	if sd.Control&SecurityDescriptorControlDaclPresent != 0 && daclOffset != 0 {
		rest, err2 := r.TryReadFrom(int(daclOffset))
		if err2 != nil {
			return SecurityDescriptor{}, fmt.Errorf("DACL offset: %w", err2)
		}
		dacl, err := parseAcl(rest)
		if err != nil {
			return SecurityDescriptor{}, fmt.Errorf("unable to parse DACL: %w", err)
		}
		sd.Dacl = &dacl
	}

	return sd, nil
}

// SecurityDescriptorStreamEntry is the 16-byte $SII-index header prefixing each security descriptor stored in the
// volume-wide $Secure:$SDS data stream: a hash of the descriptor, its security id, and its byte offset/size within
// the stream.
type SecurityDescriptorStreamEntry struct {
	Hash               uint32
	SecurityId         uint32
	Offset             uint32
	Size               uint32
	SecurityDescriptor SecurityDescriptor
}

// ParseSecurityDescriptorStreamEntry parses one `$SII`-prefixed entry out of the raw $SDS stream: a 16-byte header
// (hash, security id, offset, size) followed by the self-relative security descriptor itself.
func ParseSecurityDescriptorStreamEntry(b []byte) (SecurityDescriptorStreamEntry, error) {
	if len(b) < 16 {
		return SecurityDescriptorStreamEntry{}, fmt.Errorf("%w: $SDS stream entry header needs at least 16 bytes, got %d", ErrTruncated, len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	hash := r.Uint32(0x00)
	securityId := r.Uint32(0x04)
	offset := r.Uint32(0x08)
	size := r.Uint32(0x0C)

	sd, err := ParseSecurityDescriptor(r.ReadFrom(0x10))
	if err != nil {
		return SecurityDescriptorStreamEntry{}, fmt.Errorf("unable to parse embedded security descriptor: %w", err)
	}

	return SecurityDescriptorStreamEntry{Hash: hash, SecurityId: securityId, Offset: offset, Size: size, SecurityDescriptor: sd}, nil
}

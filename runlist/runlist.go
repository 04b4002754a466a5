// Package runlist decodes and encodes NTFS data runs: the packed (cluster-count, signed-offset) pairs that map a
// non-resident attribute's logical clusters (VCNs) onto the volume's physical clusters (LCNs).
package runlist

import (
	"errors"
	"fmt"

	"github.com/t9t/ntfscore/binutil"
)

// ErrInvalidRunHeader is returned when a run header byte declares a count or offset field wider than 8 bytes.
var ErrInvalidRunHeader = errors.New("invalid run header")

// ErrOutOfBounds is returned when a run's declared field widths extend past the end of the supplied data.
var ErrOutOfBounds = errors.New("run list out of bounds")

// Run is a single decoded data run: Count consecutive clusters starting at logical cluster VCN. A Sparse run has no
// backing physical cluster and reads as zeroes; otherwise LCN is the first physical cluster of the run.
type Run struct {
	VCN    uint64
	Count  uint64
	LCN    uint64
	Sparse bool
}

// Decode parses a packed data-run byte slice into an ordered list of Runs, starting the logical cluster numbering at
// startVCN. Each run is encoded as a header byte h: low = h&0x0F is the byte width of the (unsigned) cluster-count
// field that follows, high = h>>4 is the byte width of the (signed, sign-extended) offset field after that. A header
// of 0x00 terminates the list. high == 0 means the run carries no offset field at all and is sparse; the running lcn
// is left unchanged. Otherwise the offset is added to the running lcn, and that becomes the run's physical cluster.
func Decode(data []byte, startVCN uint64) ([]Run, error) {
	var runs []Run
	vcn := startVCN
	var lcn int64
	offset := 0
	for {
		if offset >= len(data) {
			return nil, fmt.Errorf("%w: missing terminator", ErrOutOfBounds)
		}
		header := data[offset]
		offset++
		if header == 0x00 {
			return runs, nil
		}

		low := int(header & 0x0F)
		high := int(header >> 4)
		if low > 8 || high > 8 {
			return nil, fmt.Errorf("%w: count width %d, offset width %d", ErrInvalidRunHeader, low, high)
		}
		if offset+low+high > len(data) {
			return nil, fmt.Errorf("%w: run at byte %d needs %d more bytes, only %d remain", ErrOutOfBounds, offset-1, low+high, len(data)-offset)
		}

		count := binutil.ZeroExtend(data[offset : offset+low])
		offset += low

		run := Run{VCN: vcn, Count: count, Sparse: high == 0}
		if !run.Sparse {
			lcn += binutil.SignExtend(data[offset : offset+high])
			run.LCN = uint64(lcn)
		}
		offset += high

		runs = append(runs, run)
		vcn += count
	}
}

// Encode packs runs back into data-run byte form, producing the minimal header/field widths that Decode would need
// to reproduce the same sequence. It is the inverse of Decode and exists chiefly to exercise the round-trip property
// between the two: Decode(Encode(runs), runs[0].VCN) must reproduce runs exactly.
func Encode(runs []Run) []byte {
	var out []byte
	var lcn int64
	for _, r := range runs {
		countBytes := minimalUnsigned(r.Count)
		var header byte
		var offsetBytes []byte
		if r.Sparse {
			header = byte(len(countBytes))
		} else {
			offsetBytes = minimalSigned(int64(r.LCN) - lcn)
			header = byte(len(countBytes)) | byte(len(offsetBytes))<<4
			lcn = int64(r.LCN)
		}
		out = append(out, header)
		out = append(out, countBytes...)
		out = append(out, offsetBytes...)
	}
	return append(out, 0x00)
}

// TotalClusters returns the sum of Count across all runs, i.e. the logical length of the run list in clusters.
func TotalClusters(runs []Run) uint64 {
	var total uint64
	for _, r := range runs {
		total += r.Count
	}
	return total
}

func minimalUnsigned(v uint64) []byte {
	var b []byte
	for v > 0 {
		b = append(b, byte(v))
		v >>= 8
	}
	return b
}

// minimalSigned returns the minimal little-endian two's complement encoding of v, always at least one byte so that a
// zero-valued non-sparse offset is never mistaken for an absent (sparse-marking) offset field.
func minimalSigned(v int64) []byte {
	b := []byte{byte(v)}
	v >>= 8
	for !((v == 0 && b[len(b)-1]&0x80 == 0) || (v == -1 && b[len(b)-1]&0x80 != 0)) {
		b = append(b, byte(v))
		v >>= 8
	}
	return b
}

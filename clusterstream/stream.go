// Package clusterstream builds a seekable byte stream over a non-resident attribute's run list, and a cached
// cluster-block vector on top of it. Reads are resolved against a backing Device, honoring sparse runs,
// valid-data-size zero-fill, and LZNT1-compressed compression units.
package clusterstream

import (
	"fmt"
	"io"
	"sync"

	"github.com/t9t/ntfscore/lznt1"
	"github.com/t9t/ntfscore/runlist"
)

// Device is the read-only backing store a Stream resolves physical cluster reads against: a volume image, a raw
// block device, or anything else satisfying io.ReaderAt.
type Device interface {
	ReadAt(p []byte, off int64) (int, error)
}

// Stream is a virtual byte stream over a non-resident attribute's run list (C6). It exposes a logical size and
// resolves reads against the backing Device: sparse runs read as zeros without touching the device, and reads past
// ValidDataSize (but still inside DataSize) also read as zeros, modeling Windows' "allocated but never written"
// semantics. A Stream built WithCompressionUnitClusters additionally groups runs into fixed-size compression units
// and decodes LZNT1 data lazily, one unit at a time.
type Stream struct {
	device        Device
	runs          []runlist.Run
	clusterSize   uint64
	dataSize      uint64
	validDataSize uint64

	compressionUnitClusters uint64

	mu        sync.Mutex
	unitCache *blockCache
}

// Option configures a Stream at construction time.
type Option func(*Stream)

// WithCompressionUnitClusters marks the stream compressed, grouping runs into units of n clusters (2^exponent on
// disk) per the compression scheme in §4.6. n == 0 (the default) means the stream is not compressed.
func WithCompressionUnitClusters(n uint64) Option {
	return func(s *Stream) { s.compressionUnitClusters = n }
}

// New builds a Stream over runs, resolving physical reads against device at the given cluster size in bytes.
// dataSize is the logical length exposed by Len and clips ReadAt; validDataSize is the boundary past which reads
// return zeros even for physically-backed clusters.
func New(device Device, runs []runlist.Run, clusterSize int, dataSize, validDataSize uint64, opts ...Option) *Stream {
	s := &Stream{
		device:        device,
		runs:          runs,
		clusterSize:   uint64(clusterSize),
		dataSize:      dataSize,
		validDataSize: validDataSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.compressionUnitClusters > 0 {
		s.unitCache = newBlockCache(4)
	}
	return s
}

// Len returns the attribute's logical data size in bytes.
func (s *Stream) Len() uint64 {
	return s.dataSize
}

// ReadAt implements io.ReaderAt (and satisfies mft.ClusterStream) over the logical byte range [0, Len()). Reads
// that extend past Len() are clipped to it; reads entirely at or past Len() return 0, io.EOF.
func (s *Stream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, off)
	}
	uoff := uint64(off)
	if uoff >= s.dataSize {
		return 0, io.EOF
	}

	end := uoff + uint64(len(p))
	clipped := end > s.dataSize
	if clipped {
		end = s.dataSize
	}
	want := end - uoff
	dst := p[:want]

	validEnd := end
	switch {
	case s.validDataSize <= uoff:
		for i := range dst {
			dst[i] = 0
		}
		validEnd = uoff
	case s.validDataSize < end:
		validEnd = s.validDataSize
	}

	if validEnd > uoff {
		if err := s.fill(dst[:validEnd-uoff], uoff); err != nil {
			return 0, err
		}
	}
	for i := validEnd - uoff; i < want; i++ {
		dst[i] = 0
	}

	if clipped {
		return int(want), io.EOF
	}
	return int(want), nil
}

func (s *Stream) fill(dst []byte, startOffset uint64) error {
	if s.compressionUnitClusters == 0 {
		return s.fillFromRuns(dst, startOffset)
	}
	return s.fillCompressed(dst, startOffset)
}

// fillFromRuns resolves dst directly against s.runs: each run is read from the device (or zero-filled if sparse)
// until dst is exhausted, crossing run boundaries as needed.
func (s *Stream) fillFromRuns(dst []byte, startOffset uint64) error {
	for len(dst) > 0 {
		vcn := startOffset / s.clusterSize
		run, ok := findRun(s.runs, vcn)
		if !ok {
			return fmt.Errorf("%w: no run covers cluster %d", ErrOutOfBounds, vcn)
		}

		runByteStart := run.VCN * s.clusterSize
		runByteEnd := (run.VCN + run.Count) * s.clusterSize
		n := uint64(len(dst))
		if avail := runByteEnd - startOffset; n > avail {
			n = avail
		}

		if run.Sparse {
			for i := uint64(0); i < n; i++ {
				dst[i] = 0
			}
		} else {
			physicalOffset := run.LCN*s.clusterSize + (startOffset - runByteStart)
			if _, err := readFull(s.device, dst[:n], int64(physicalOffset)); err != nil {
				return fmt.Errorf("%w: %v", ErrIoFailure, err)
			}
		}

		dst = dst[n:]
		startOffset += n
	}
	return nil
}

// fillCompressed resolves dst against lazily-decoded compression units.
func (s *Stream) fillCompressed(dst []byte, startOffset uint64) error {
	unitSize := s.compressionUnitClusters * s.clusterSize
	for len(dst) > 0 {
		unitIndex := startOffset / unitSize
		unit, err := s.readUnit(unitIndex)
		if err != nil {
			return err
		}

		offsetInUnit := startOffset - unitIndex*unitSize
		n := uint64(len(dst))
		if avail := uint64(len(unit)) - offsetInUnit; n > avail {
			n = avail
		}
		copy(dst[:n], unit[offsetInUnit:offsetInUnit+n])

		dst = dst[n:]
		startOffset += n
	}
	return nil
}

// readUnit returns the decoded bytes of compression unit unitIndex, decoding and caching it on first access. A unit
// whose runs are all physical is stored verbatim; one whose trailing run is sparse holds an LZNT1-compressed
// prefix ending at the first sparse cluster, which is decompressed into a unit-sized buffer.
func (s *Stream) readUnit(unitIndex uint64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.unitCache.get(unitIndex); ok {
		return cached, nil
	}

	unitSize := s.compressionUnitClusters * s.clusterSize
	unitStartVCN := unitIndex * s.compressionUnitClusters
	unitEndVCN := unitStartVCN + s.compressionUnitClusters

	inRange := runsInRange(s.runs, unitStartVCN, unitEndVCN)
	if len(inRange) == 0 {
		return nil, fmt.Errorf("%w: no runs cover compression unit %d", ErrOutOfBounds, unitIndex)
	}

	allPhysical := true
	for _, r := range inRange {
		if r.Sparse {
			allPhysical = false
			break
		}
	}

	out := make([]byte, unitSize)
	if allPhysical {
		if err := s.fillFromRuns(out, unitStartVCN*s.clusterSize); err != nil {
			return nil, err
		}
	} else {
		last := inRange[len(inRange)-1]
		if !last.Sparse {
			return nil, fmt.Errorf("%w: compression unit %d's trailing run is not sparse", ErrUnsupportedCompression, unitIndex)
		}

		compressedClusters := last.VCN - unitStartVCN
		compressed := make([]byte, compressedClusters*s.clusterSize)
		if compressedClusters > 0 {
			if err := s.fillFromRuns(compressed, unitStartVCN*s.clusterSize); err != nil {
				return nil, err
			}
		}

		decoded, err := lznt1.Decompress(compressed)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedCompression, err)
		}
		copy(out, decoded)
	}

	s.unitCache.put(unitIndex, out)
	return out, nil
}

func findRun(runs []runlist.Run, vcn uint64) (runlist.Run, bool) {
	for _, r := range runs {
		if vcn >= r.VCN && vcn < r.VCN+r.Count {
			return r, true
		}
	}
	return runlist.Run{}, false
}

// runsInRange returns the runs that overlap the half-open VCN range [startVCN, endVCN), in VCN order.
func runsInRange(runs []runlist.Run, startVCN, endVCN uint64) []runlist.Run {
	var out []runlist.Run
	for _, r := range runs {
		if r.VCN+r.Count <= startVCN || r.VCN >= endVCN {
			continue
		}
		out = append(out, r)
	}
	return out
}

func readFull(device Device, p []byte, off int64) (int, error) {
	total := 0
	for total < len(p) {
		n, err := device.ReadAt(p[total:], off+int64(total))
		total += n
		if err != nil {
			if err == io.EOF && total == len(p) {
				return total, nil
			}
			return total, err
		}
		if n == 0 {
			return total, io.ErrNoProgress
		}
	}
	return total, nil
}

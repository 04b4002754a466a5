// Package device opens a read-only handle onto an NTFS volume, whether that's a raw block device path (e.g.
// /dev/sdb1) or a plain image file, and memory-maps it for random access. A Handle satisfies clusterstream.Device
// and, via Seek/Read, io.ReadSeeker.
package device

import (
	"errors"
	"fmt"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// ErrClosed is returned by any operation on a Handle after Close has been called.
var ErrClosed = errors.New("device handle is closed")

// Handle is a read-only, memory-mapped view of a volume or image file. The underlying mapping is never written to:
// this package exists to serve a forensic, read-only decoder.
type Handle struct {
	f      *os.File
	data   mmap.MMap
	size   int64
	offset int64
}

// Open maps path read-only. For a raw block device on Linux, the reported Size comes from the BLKGETSIZE64 ioctl
// rather than the (usually zero or wrong) stat size; everywhere else, and for plain image files, it falls back to
// the file's stat size.
func Open(path string) (*Handle, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}

	size, err := deviceSize(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to determine size of %s: %w", path, err)
	}
	if size <= 0 {
		f.Close()
		return nil, fmt.Errorf("device %s reports non-positive size %d", path, size)
	}

	data, err := mmap.MapRegion(f, int(size), mmap.RDONLY, 0, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to mmap %s: %w", path, err)
	}

	return &Handle{f: f, data: data, size: size}, nil
}

// Size returns the device's size in bytes, as determined at Open time.
func (h *Handle) Size() int64 {
	return h.size
}

// SectorSize reports the device's logical sector size in bytes, when determinable (Linux raw block devices only).
// ok is false for a plain image file or on a platform without a sector-size ioctl; callers should fall back to the
// boot sector's own BytesPerSector in that case.
func (h *Handle) SectorSize() (size int, ok bool) {
	n, err := sectorSize(h.f)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ReadAt implements io.ReaderAt over the memory-mapped region.
func (h *Handle) ReadAt(p []byte, off int64) (int, error) {
	if h.data == nil {
		return 0, ErrClosed
	}
	if off < 0 || off >= h.size {
		return 0, io.EOF
	}
	n := copy(p, h.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek implements io.Seeker so that, together with Read, a Handle satisfies io.ReadSeeker.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = h.offset + offset
	case io.SeekEnd:
		target = h.size + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if target < 0 {
		return 0, fmt.Errorf("negative seek position %d", target)
	}
	h.offset = target
	return target, nil
}

// Read implements io.Reader, advancing the handle's internal offset (maintained for Seek).
func (h *Handle) Read(p []byte) (int, error) {
	n, err := h.ReadAt(p, h.offset)
	h.offset += int64(n)
	return n, err
}

// Close unmaps the region and closes the underlying file. A Handle must not be used after Close.
func (h *Handle) Close() error {
	if h.data == nil {
		return nil
	}
	unmapErr := h.data.Unmap()
	h.data = nil
	closeErr := h.f.Close()
	if unmapErr != nil {
		return fmt.Errorf("unable to unmap: %w", unmapErr)
	}
	return closeErr
}

//go:build linux

package device

import (
	"os"

	"golang.org/x/sys/unix"
)

// deviceSize reports f's size in bytes. For a raw block device, stat's reported size is usually 0, so the
// BLKGETSIZE64 ioctl is used instead; any other file (including a plain NTFS image) falls back to stat.
func deviceSize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.Mode()&os.ModeDevice == 0 {
		return info.Size(), nil
	}

	sizeInBytes, err := unix.IoctlGetUint64(int(f.Fd()), unix.BLKGETSIZE64)
	if err != nil {
		return 0, err
	}
	return int64(sizeInBytes), nil
}

// sectorSize reports the logical sector size of a block device path, or 0 with an error for a non-device path.
func sectorSize(f *os.File) (int, error) {
	return unix.IoctlGetInt(int(f.Fd()), unix.BLKSSZGET)
}

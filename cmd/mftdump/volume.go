package main

import (
	"fmt"

	"github.com/t9t/ntfscore/bootsect"
	"github.com/t9t/ntfscore/device"
)

// deviceHandleAndBootSector bundles an opened device with its already-parsed boot sector, since every subcommand
// needs both before it can locate $MFT.
type deviceHandleAndBootSector struct {
	handle     *device.Handle
	bootSector bootsect.BootSector
}

func openDevice(path string) (*device.Handle, error) {
	printVerbose("Opening volume %s\n", path)
	h, err := device.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open volume using path %s: %w", path, err)
	}
	return h, nil
}

func parseBootSector(data []byte) (bootsect.BootSector, error) {
	printVerbose("Parsing boot sector\n")
	bootSector, err := bootsect.Parse(data)
	if err != nil {
		return bootsect.BootSector{}, fmt.Errorf("unable to parse boot sector data: %w", err)
	}
	if bootSector.OemId != supportedOemId {
		return bootsect.BootSector{}, fmt.Errorf("unknown OemId (file system type) %q (expected %q)", bootSector.OemId, supportedOemId)
	}
	return bootSector, nil
}

// readRecordAt reads the raw bytes of the file record at byte offset pos, whose size is the boot sector's declared
// file record segment size. It does not parse them.
func (v *deviceHandleAndBootSector) readRecordAt(pos int64) ([]byte, error) {
	size := v.bootSector.FileRecordSegmentSizeInBytes
	buf := make([]byte, size)
	if _, err := v.handle.ReadAt(buf, pos); err != nil {
		return nil, fmt.Errorf("unable to read file record at offset %d: %w", pos, err)
	}
	return buf, nil
}

// mftPosition returns the byte offset of the start of $MFT itself (record 0), derived from the boot sector's MFT
// cluster number.
func (v *deviceHandleAndBootSector) mftPosition() int64 {
	return int64(v.bootSector.MftClusterNumber) * int64(v.bootSector.BytesPerCluster())
}

//go:build !linux

package device

import (
	"errors"
	"os"
)

func deviceSize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func sectorSize(f *os.File) (int, error) {
	return 0, errors.New("block device sector size query is only supported on linux")
}

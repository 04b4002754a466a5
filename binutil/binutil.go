// Package binutil contains some helpful utilities for reading binary data from byte slices.
package binutil

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned by the Try-prefixed BinReader methods when the requested offset/length falls outside of
// the underlying data.
var ErrTruncated = errors.New("truncated data")

// Duplicate creates a full copy of the input byte slice.
func Duplicate(in []byte) []byte {
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

// IsOnlyZeroes return true when the input data is all bytes of zero value and false if any of the bytes has a nonzero
// value.
func IsOnlyZeroes(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// BinReader helps to read data from a byte slice using an offset and a data length (instead two offsets when using
// a slice expression). For example b[2:4] yields the same as Read(2, 2) using a BinReader over b. Also some convenient
// methods are provided to read integer values using a binary.ByteOrder from the slice directly.
//
// Note that methods that return a []byte may not necessarily copy the data, so modifying the returned slice may also
// affect the data in the BinReader.
//
// Methods will panic when any offset or length is outside of the bounds of the original data. The Try-prefixed
// methods are the bounds-checked equivalents, returning ErrTruncated instead of panicking; parsers fed from
// untrusted (on-disk) data should prefer those.
type BinReader struct {
	data []byte
	bo   binary.ByteOrder
}

// NewBinReader creates a BinReader over data using the specified binary.ByteOrder. The data slice is stored directly,
// no copy is made, so modifying the original slice will also affect the returned BinReader.
func NewBinReader(data []byte, bo binary.ByteOrder) *BinReader {
	return &BinReader{data: data, bo: bo}
}

// NewLittleEndianReader creates a BinReader over data using binary.LittleEndian. The data slice is stored directly,
// no copy is made, so modifying the original slice will also affect the returned BinReader.
func NewLittleEndianReader(data []byte) *BinReader {
	return NewBinReader(data, binary.LittleEndian)
}

// NewBigEndianReader creates a BinReader over data using binary.BigEndian. The data slice is stored directly,
// no copy is made, so modifying the original slice will also affect the returned BinReader.
func NewBigEndianReader(data []byte, bo binary.ByteOrder) *BinReader {
	return NewBinReader(data, binary.BigEndian)
}

// Data returns all data inside this BinReader.
func (r *BinReader) Data() []byte {
	return r.data
}

// ByteOrder returns the ByteOrder for this BinReader.
func (r *BinReader) ByteOrder() binary.ByteOrder {
	return r.bo
}

// Length returns the length of the contained data.
func (r *BinReader) Length() int {
	return len(r.data)
}

// Read reads an amount of bytes as specified by length from the provided offset. The returned slice's length is the
// same as the specified length.
func (r *BinReader) Read(offset int, length int) []byte {
	return r.data[offset : offset+length]
}

// TryRead is the bounds-checked equivalent of Read.
func (r *BinReader) TryRead(offset int, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length < offset || offset+length > len(r.data) {
		return nil, fmt.Errorf("%w: cannot read %d bytes at offset %d from %d bytes of data", ErrTruncated, length, offset, len(r.data))
	}
	return r.data[offset : offset+length], nil
}

// Reader returns a new BinReader over the data read by Read(offset, length) using the same ByteOrder as this reader.
// There is no guarantee a copy of the data is made, so modifying the new reader's data may affect the original.
func (r *BinReader) Reader(offset int, length int) *BinReader {
	return &BinReader{data: r.data[offset : offset+length], bo: r.bo}
}

// Byte returns the byte at the position indicated by the offset.
func (r *BinReader) Byte(offset int) byte {
	return r.Read(offset, 1)[0]
}

// TryByte is the bounds-checked equivalent of Byte.
func (r *BinReader) TryByte(offset int) (byte, error) {
	b, err := r.TryRead(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadFrom returns all data starting at the specified offset.
func (r *BinReader) ReadFrom(offset int) []byte {
	return r.data[offset:]
}

// TryReadFrom is the bounds-checked equivalent of ReadFrom.
func (r *BinReader) TryReadFrom(offset int) ([]byte, error) {
	if offset < 0 || offset > len(r.data) {
		return nil, fmt.Errorf("%w: offset %d outside of %d bytes of data", ErrTruncated, offset, len(r.data))
	}
	return r.data[offset:], nil
}

// ReaderFrom returns a BinReader over the data read by ReadFrom(offset) using the same ByteOrder as this reader.
// There is no guarantee a copy of the data is made, so modifying the new reader's data may affect the original.
func (r *BinReader) ReaderFrom(offset int) *BinReader {
	return &BinReader{data: r.data[offset:], bo: r.bo}
}

// Uint16 reads 2 bytes from the provided offset and parses them into a uint16 using the provided ByteOrder.
func (r *BinReader) Uint16(offset int) uint16 {
	return r.bo.Uint16(r.Read(offset, 2))
}

// TryUint16 is the bounds-checked equivalent of Uint16.
func (r *BinReader) TryUint16(offset int) (uint16, error) {
	b, err := r.TryRead(offset, 2)
	if err != nil {
		return 0, err
	}
	return r.bo.Uint16(b), nil
}

// Uint32 reads 4 bytes from the provided offset and parses them into a uint32 using the provided ByteOrder.
func (r *BinReader) Uint32(offset int) uint32 {
	return r.bo.Uint32(r.Read(offset, 4))
}

// TryUint32 is the bounds-checked equivalent of Uint32.
func (r *BinReader) TryUint32(offset int) (uint32, error) {
	b, err := r.TryRead(offset, 4)
	if err != nil {
		return 0, err
	}
	return r.bo.Uint32(b), nil
}

// Uint64 reads 8 bytes from the provided offset and parses them into a uint64 using the provided ByteOrder.
func (r *BinReader) Uint64(offset int) uint64 {
	return r.bo.Uint64(r.Read(offset, 8))
}

// TryUint64 is the bounds-checked equivalent of Uint64.
func (r *BinReader) TryUint64(offset int) (uint64, error) {
	b, err := r.TryRead(offset, 8)
	if err != nil {
		return 0, err
	}
	return r.bo.Uint64(b), nil
}

// PadTo pads data with zeroes (or, when sign is true and the most significant available byte has its top bit set,
// 0xFF) up to length, on the most-significant side. It is used to widen a variable-length little-endian integer to a
// fixed Go integer size before parsing it with encoding/binary.
func PadTo(data []byte, length int, sign bool) []byte {
	if len(data) >= length {
		return data
	}
	result := make([]byte, length)
	if len(data) == 0 {
		return result
	}
	copy(result, data)
	if sign && data[len(data)-1]&0b10000000 == 0b10000000 {
		for i := len(data); i < length; i++ {
			result[i] = 0xFF
		}
	}
	return result
}

// SignExtend interprets data as a little-endian two's complement signed integer of up to 8 bytes and sign-extends it
// to an int64. An empty slice yields 0.
func SignExtend(data []byte) int64 {
	return int64(binary.LittleEndian.Uint64(PadTo(data, 8, true)))
}

// ZeroExtend interprets data as a little-endian unsigned integer of up to 8 bytes and zero-extends it to a uint64. An
// empty slice yields 0.
func ZeroExtend(data []byte) uint64 {
	return binary.LittleEndian.Uint64(PadTo(data, 8, false))
}

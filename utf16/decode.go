// Package utf16 transcodes the UTF-16LE/UTF-16BE strings found throughout NTFS on-disk structures (names, labels,
// reparse data and the like) to and from Go's native UTF-8 strings. It is a thin wrapper around
// golang.org/x/text/encoding/unicode, which performs the actual transcoding (an unpaired surrogate decodes to
// U+FFFD rather than failing), so that callers never need to touch an encoding.Encoding directly.
package utf16

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ErrOddLength is returned when a byte slice meant to hold UTF-16 code units has an odd length.
var ErrOddLength = errors.New("input data must have even number of bytes")

// DecodeString decodes b, a UTF-16 byte slice in the given byte order, into a UTF-8 string.
func DecodeString(b []byte, bo binary.ByteOrder) (string, error) {
	if len(b)%2 != 0 {
		return "", ErrOddLength
	}
	out, err := decoderFor(bo).Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncodeString encodes s into UTF-16 bytes in the given byte order. It is the inverse of DecodeString and is used to
// verify the Name Invariance property: decoding a name then re-encoding it must reproduce the original bytes.
func EncodeString(s string, bo binary.ByteOrder) ([]byte, error) {
	return encoderFor(bo).Bytes([]byte(s))
}

// CodeUnitCount returns the number of UTF-16 code units s would encode to, without actually transcoding it. This
// matches the "name length" field NTFS stores (a UTF-16 code unit count, not a byte count or rune count).
func CodeUnitCount(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func decoderFor(bo binary.ByteOrder) *encoding.Decoder {
	if bo == binary.BigEndian {
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
}

func encoderFor(bo binary.ByteOrder) *encoding.Encoder {
	if bo == binary.BigEndian {
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
}

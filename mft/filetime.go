package mft

import "time"

var fileTimeEpoch = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)

// ConvertFileTime converts an NTFS timestamp, a count of 100-nanosecond intervals since 1601-01-01 UTC, into a
// time.Time.
func ConvertFileTime(timeValue uint64) time.Time {
	dur := time.Duration(int64(timeValue))
	r := fileTimeEpoch
	for i := 0; i < 100; i++ {
		r = r.Add(dur)
	}
	return r
}

// ToFileTime is the inverse of ConvertFileTime: it converts t into a count of 100-nanosecond intervals since
// 1601-01-01 UTC.
func ToFileTime(t time.Time) uint64 {
	return uint64((t.Unix()-fileTimeEpoch.Unix())*10000000 + int64(t.Nanosecond()/100))
}

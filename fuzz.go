// Package ntfscore is the root of the NTFS on-disk structure decoder. Fuzz is the go-fuzz-classic entry point over
// the MFT entry parser, satisfying the adversarial-input safety requirement: ParseRecord must never panic on
// untrusted bytes.
package ntfscore

import "github.com/t9t/ntfscore/mft"

// Fuzz parses data as an MFT entry. It returns 1 when parsing succeeds (prioritizing the input for further mutation)
// and 0 otherwise.
func Fuzz(data []byte) int {
	record, err := mft.ParseRecord(data)
	if err != nil {
		return 0
	}
	for _, attribute := range record.Attributes {
		_, _ = mft.NewAttributeFacade(&attribute, nil)
	}
	return 1
}

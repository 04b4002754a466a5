package mft

import "errors"

// Sentinel errors returned (possibly wrapped with fmt.Errorf's %w) by this package's parsers. Callers should use
// errors.Is against these rather than matching on message text.
var (
	// ErrInvalidArgument is returned for a nil/empty input or an out-of-range index passed by the caller.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyInitialized is returned when a caller-owned output slot was expected empty but was not.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrTruncated is returned when a declared length exceeds the bytes actually available.
	ErrTruncated = errors.New("truncated data")

	// ErrMisalignedSize is returned when a size field fails a required alignment or bound check.
	ErrMisalignedSize = errors.New("misaligned size")

	// ErrInvalidRunHeader is returned when a data run header declares a byte width wider than 8.
	ErrInvalidRunHeader = errors.New("invalid run header")

	// ErrNameOutOfBounds is returned when a name_offset/name_length pair falls outside its containing record.
	ErrNameOutOfBounds = errors.New("name out of bounds")

	// ErrRunListOutOfBounds is returned when a run list's declared fields extend past the data holding it.
	ErrRunListOutOfBounds = errors.New("run list out of bounds")

	// ErrUnexpectedRunCount is returned when a decoded run list's total cluster count does not match
	// data_last_vcn - data_first_vcn + 1.
	ErrUnexpectedRunCount = errors.New("unexpected run count")

	// ErrUnsupportedCompression is returned for a compressed non-resident attribute when the parser handling its
	// type cannot accept a compressed stream, or LZNT1 support is unavailable.
	ErrUnsupportedCompression = errors.New("unsupported compression")

	// ErrUnsupportedNonResident is returned for an attribute type that is only ever permitted resident but arrived
	// non-resident.
	ErrUnsupportedNonResident = errors.New("unsupported non-resident attribute")

	// ErrUnsupportedVersion is returned when a typed payload's revision byte falls outside the accepted set.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrIoFailure is returned when an underlying device read returned short or errored.
	ErrIoFailure = errors.New("i/o failure")

	// ErrInternal indicates an invariant violation in this package; it signals a bug rather than bad input.
	ErrInternal = errors.New("internal error")
)

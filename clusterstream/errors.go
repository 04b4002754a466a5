package clusterstream

import "errors"

// ErrInvalidArgument is returned for a negative offset or an out-of-range block index.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrOutOfBounds is returned when a byte offset or compression unit has no covering run.
var ErrOutOfBounds = errors.New("cluster stream out of bounds")

// ErrUnsupportedCompression is returned when a compression unit's runs cannot be interpreted (the trailing run
// isn't sparse, so there is no LZNT1-compressed prefix to decode) or LZNT1 decoding itself fails.
var ErrUnsupportedCompression = errors.New("unsupported compression")

// ErrIoFailure wraps an error returned by the backing Device.
var ErrIoFailure = errors.New("i/o failure")

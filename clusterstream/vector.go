package clusterstream

import (
	"fmt"
	"io"
)

// BlockVector is a lazy, bounded-cardinality cache of fixed-size blocks over a Stream (C7), indexed 0..N-1. Get
// returns a borrowed reference to the decoded block: the slice is only valid until the next Get call on the same
// vector, since the cache owns the backing array. Used by value materializers that prefer block-at-a-time
// iteration over a byte stream; in this module that is the $BITMAP path ($SECURITY_DESCRIPTOR reads a Stream).
type BlockVector struct {
	stream     *Stream
	blockSize  int
	blockCount int
	cache      *blockCache
}

// NewBlockVector builds a BlockVector over stream, slicing its logical length into blockSize-byte blocks (normally
// the volume's cluster size). capacity bounds how many decoded blocks are kept at once; a sequential scan only
// needs the default of 1.
func NewBlockVector(stream *Stream, blockSize int, capacity int) *BlockVector {
	blockCount := 0
	if blockSize > 0 {
		blockCount = int((stream.Len() + uint64(blockSize) - 1) / uint64(blockSize))
	}
	return &BlockVector{
		stream:     stream,
		blockSize:  blockSize,
		blockCount: blockCount,
		cache:      newBlockCache(capacity),
	}
}

// BlockCount returns the number of blocks in the vector.
func (v *BlockVector) BlockCount() int {
	return v.blockCount
}

// Get returns block i, decoding and caching it from the underlying stream on first access. A final partial block
// (when the stream's logical length isn't a multiple of blockSize) is zero-padded up to blockSize.
func (v *BlockVector) Get(i int) ([]byte, error) {
	if i < 0 || i >= v.blockCount {
		return nil, fmt.Errorf("%w: block index %d out of range [0,%d)", ErrInvalidArgument, i, v.blockCount)
	}

	if cached, ok := v.cache.get(uint64(i)); ok {
		return cached, nil
	}

	off := int64(i) * int64(v.blockSize)
	block := make([]byte, v.blockSize)
	n, err := v.stream.ReadAt(block, off)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if n < v.blockSize {
		padded := make([]byte, v.blockSize)
		copy(padded, block[:n])
		block = padded
	}

	v.cache.put(uint64(i), block)
	return block, nil
}

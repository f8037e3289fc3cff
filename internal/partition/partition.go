// Package partition splits the integer input space [1..N] into contiguous,
// disjoint chunks, one per worker.
package partition

import (
	"fmt"

	apperrors "github.com/agbru/hashprobe/internal/errors"
)

// Chunk is a contiguous, inclusive sub-range [Start, End] of the input space
// assigned to exactly one worker.
type Chunk struct {
	// Index is the position of the chunk in ascending start order.
	Index int
	// Start is the first input of the chunk.
	Start int64
	// End is the last input of the chunk, inclusive.
	End int64
}

// Len returns the number of inputs in the chunk.
func (c Chunk) Len() int64 { return c.End - c.Start + 1 }

// String renders the chunk as "[start,end]".
func (c Chunk) String() string { return fmt.Sprintf("[%d,%d]", c.Start, c.End) }

// Split divides [1..n] into p chunks of floor(n/p) inputs each; the last
// chunk absorbs the remainder.
//
// Parameters:
//   - n: The size of the input space. Must be positive.
//   - p: The number of chunks. Must be positive and not exceed n.
//
// Returns:
//   - []Chunk: The chunks in ascending start order.
//   - error: An apperrors.ConfigError when n or p is out of range.
func Split(n, p int64) ([]Chunk, error) {
	if n <= 0 {
		return nil, apperrors.NewConfigError("input space size N must be positive, got %d", n)
	}
	if p <= 0 {
		return nil, apperrors.NewConfigError("worker count P must be positive, got %d", p)
	}
	if p > n {
		return nil, apperrors.NewConfigError("worker count P (%d) exceeds input space size N (%d)", p, n)
	}

	size := n / p
	chunks := make([]Chunk, p)
	for i := int64(0); i < p; i++ {
		end := (i + 1) * size
		if i == p-1 {
			end = n
		}
		chunks[i] = Chunk{Index: int(i), Start: i*size + 1, End: end}
	}
	return chunks, nil
}

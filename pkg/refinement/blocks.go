package refinement

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrBlockCounts is returned when subfield block sizes do not fit the points.
var ErrBlockCounts = errors.New("subfield block counts do not match point count")

// Block is the spoke data of one subfield cut out of a concatenated array
type Block struct {
	Subfield string
	Tips     []r3.Vec
	Skeletal []r3.Vec
}

// SplitBlocks cuts a concatenated point array into per-subfield blocks. Each
// block holds counts[i] points: the first half are tips, the second half the
// paired skeletal points.
func SplitBlocks(points []r3.Vec, names []string, counts []int) ([]Block, error) {
	if len(names) != len(counts) {
		return nil, fmt.Errorf("%d names vs %d counts: %w", len(names), len(counts), ErrBlockCounts)
	}

	total := 0
	for i, c := range counts {
		if c < 0 || c%2 != 0 {
			return nil, fmt.Errorf("subfield %s has odd or negative count %d: %w", names[i], c, ErrBlockCounts)
		}
		total += c
	}
	if total != len(points) {
		return nil, fmt.Errorf("counts sum to %d, have %d points: %w", total, len(points), ErrBlockCounts)
	}

	blocks := make([]Block, len(names))
	start := 0
	for i, c := range counts {
		half := c / 2
		blocks[i] = Block{
			Subfield: names[i],
			Tips:     points[start : start+half],
			Skeletal: points[start+half : start+c],
		}
		start += c
	}
	return blocks, nil
}

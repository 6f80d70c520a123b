package refinement

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSplitBlocks(t *testing.T) {
	points := make([]r3.Vec, 10)
	for i := range points {
		points[i] = r3.Vec{X: float64(i)}
	}

	blocks, err := SplitBlocks(points, []string{"CA1", "CA2", "DG"}, []int{4, 0, 6})
	if err != nil {
		t.Fatalf("SplitBlocks failed: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(blocks))
	}

	tests := []struct {
		subfield       string
		tips, skeletal []float64
	}{
		{"CA1", []float64{0, 1}, []float64{2, 3}},
		{"CA2", nil, nil},
		{"DG", []float64{4, 5, 6}, []float64{7, 8, 9}},
	}
	for i, tt := range tests {
		b := blocks[i]
		if b.Subfield != tt.subfield {
			t.Errorf("Block %d is %s, want %s", i, b.Subfield, tt.subfield)
		}
		if len(b.Tips) != len(tt.tips) || len(b.Skeletal) != len(tt.skeletal) {
			t.Errorf("Block %s has %d tips and %d skeletal points", b.Subfield, len(b.Tips), len(b.Skeletal))
			continue
		}
		for j := range tt.tips {
			if b.Tips[j].X != tt.tips[j] || b.Skeletal[j].X != tt.skeletal[j] {
				t.Errorf("Block %s pair %d = (%v, %v)", b.Subfield, j, b.Tips[j], b.Skeletal[j])
			}
		}
	}

	spokes, err := Pair(blocks[2].Skeletal, blocks[2].Tips)
	if err != nil {
		t.Fatalf("Pair failed: %v", err)
	}
	if spokes[0].Skeletal.X != 7 || spokes[0].Tip.X != 4 {
		t.Errorf("Unexpected first DG spoke %+v", spokes[0])
	}
}

func TestSplitBlocksErrors(t *testing.T) {
	points := make([]r3.Vec, 6)
	tests := []struct {
		name   string
		names  []string
		counts []int
	}{
		{"sum too small", []string{"CA1"}, []int{4}},
		{"sum too large", []string{"CA1", "CA2"}, []int{4, 4}},
		{"odd block", []string{"CA1", "CA2"}, []int{3, 3}},
		{"negative block", []string{"CA1", "CA2"}, []int{8, -2}},
		{"names and counts differ", []string{"CA1"}, []int{2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SplitBlocks(points, tt.names, tt.counts); !errors.Is(err, ErrBlockCounts) {
				t.Errorf("Expected ErrBlockCounts, got %v", err)
			}
		})
	}
}

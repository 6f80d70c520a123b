package refinement

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"skelrefine/internal/models"
)

// EqualizeLengths pairs spoke i with spoke i+PairCount for i < PairCount,
// the two sides of a skeletal sheet. When their lengths differ by more than
// EqualTol the longer spoke is shortened along its own direction to the
// shorter length. Spokes outside the paired range are copied unchanged.
func (r *Refiner) EqualizeLengths(spokes []models.Spoke) []models.Spoke {
	out := make([]models.Spoke, len(spokes))
	copy(out, spokes)

	pairs := r.params.PairCount
	for i := 0; i < pairs && i+pairs < len(out); i++ {
		a, b := &out[i], &out[i+pairs]
		la, lb := a.Length(), b.Length()
		if math.Abs(la-lb) <= r.params.EqualTol {
			continue
		}
		if la > lb {
			*a = withLength(*a, lb)
		} else {
			*b = withLength(*b, la)
		}
	}
	return out
}

// withLength rescales s along its direction. A zero length snaps the tip
// onto the skeletal point.
func withLength(s models.Spoke, length float64) models.Spoke {
	if length < models.DegenerateLength {
		s.Tip = s.Skeletal
		return s
	}
	s.Tip = r3.Add(s.Skeletal, r3.Scale(length, s.Direction()))
	return s
}

package refinement

import (
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"skelrefine/internal/models"
)

// RepairSkeleton moves skeletal points lying outside the surface onto the
// closest surface point and collapses their tips there, since no valid spoke
// starts outside the shape. It returns the repaired spokes and how many moved.
func (r *Refiner) RepairSkeleton(spokes []models.Spoke) ([]models.Spoke, int) {
	out := make([]models.Spoke, len(spokes))
	var moved atomic.Int64

	r.forEach(len(spokes), func(i int) {
		s := spokes[i]
		if !r.surface.IsInside(s.Skeletal) {
			s = s.Collapse(r.surface.ClosestPoint(s.Skeletal))
			moved.Add(1)
		}
		out[i] = s
	})
	return out, int(moved.Load())
}

// RecoverOutside rebuilds spokes whose skeletal point is outside the surface.
// The spoke is stretched to ExtendLength and walked back toward the skeletal
// point; the last two boundary crossings become the new tip and skeletal
// point. Spokes with fewer than two crossings collapse onto their skeletal
// point and are counted as invalid.
func (r *Refiner) RecoverOutside(spokes []models.Spoke) ([]models.Spoke, int) {
	out := make([]models.Spoke, len(spokes))
	var invalid atomic.Int64

	r.forEach(len(spokes), func(i int) {
		s := spokes[i]
		if s.Tip == s.Skeletal {
			out[i] = s
			return
		}

		far := r3.Add(s.Skeletal, r3.Scale(r.params.ExtendLength, s.Direction()))
		crossings, n := r.TraceCrossings(far, s.Skeletal)
		if n >= 2 {
			s.Tip, s.Skeletal = crossings[0], crossings[1]
		} else {
			s = s.Collapse(s.Skeletal)
			invalid.Add(1)
		}
		out[i] = s
	})

	if n := invalid.Load(); n > 0 {
		r.infof("%d of %d outside spokes could not be recovered", n, len(spokes))
	}
	return out, int(invalid.Load())
}

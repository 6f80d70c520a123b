package refinement

import (
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"skelrefine/internal/models"
)

// RefineDirection turns every non-degenerate spoke toward the outward normal
// near its tip while keeping its length. Each iteration blends the current
// direction with the normal using Alpha; iteration stops once 1 - cos between
// spoke and normal drops to DirectionTol or after MaxDirectionIter rounds.
// It returns the new spokes and the number that did not converge.
func (r *Refiner) RefineDirection(spokes []models.Spoke) ([]models.Spoke, int) {
	out := make([]models.Spoke, len(spokes))
	var capped atomic.Int64

	r.forEach(len(spokes), func(i int) {
		s, ok := r.refineDirection(spokes[i])
		if !ok {
			capped.Add(1)
			r.warnf("max iterations reached refining direction of spoke %d", spokes[i].Index)
		}
		out[i] = s
	})
	return out, int(capped.Load())
}

func (r *Refiner) refineDirection(s models.Spoke) (models.Spoke, bool) {
	if s.IsDegenerate() {
		return s, true
	}

	alpha := r.params.Alpha
	length := s.Length()
	dir := s.Direction()
	tip := s.Tip
	cosAngle := 0.0

	for iter := 0; 1-cosAngle > r.params.DirectionTol && iter < r.params.MaxDirectionIter; iter++ {
		_, normal := r.surface.LocalNormal(tip)

		blend := r3.Add(r3.Scale(alpha, dir), r3.Scale(1-alpha, normal))
		n := r3.Norm(blend)
		if n == 0 {
			// Direction exactly opposes the normal; no blend to follow
			break
		}
		tip = r3.Add(s.Skeletal, r3.Scale(length/n, blend))

		dir = r3.Unit(r3.Sub(tip, s.Skeletal))
		cosAngle = r3.Dot(dir, normal)
	}

	s.Tip = tip
	return s, 1-cosAngle <= r.params.DirectionTol
}

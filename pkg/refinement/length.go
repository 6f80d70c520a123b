package refinement

import (
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"skelrefine/internal/models"
)

// lengthState is the boundary crossing count between tip and skeletal
// point, capped at 3. It selects how the tip is marched.
type lengthState int

const (
	// stateExtend: no crossing, move the tip outward until it leaves the shape
	stateExtend lengthState = 0
	// stateRetract: one crossing, move the tip inward until it enters the shape
	stateRetract lengthState = 1
	maxState     lengthState = 3
)

// march reduces a state to the marching rule it follows. Two or three
// crossings retract like one: the tip moves inward only while outside, so a
// tip already inside a farther component stays where it is.
func (s lengthState) march() lengthState {
	if s == stateExtend {
		return stateExtend
	}
	return stateRetract
}

// RefineLength moves every non-degenerate tip along its spoke onto the
// boundary: outward until it leaves the shape when no crossing separates tip
// and skeletal point, inward until it is inside otherwise. It returns new spokes in the same order and the number of spokes that hit
// MaxLengthIter. Skeletal points are not modified.
func (r *Refiner) RefineLength(spokes []models.Spoke) ([]models.Spoke, int) {
	out := make([]models.Spoke, len(spokes))
	var capped atomic.Int64

	r.forEach(len(spokes), func(i int) {
		s, ok := r.refineLength(spokes[i])
		if !ok {
			capped.Add(1)
			r.warnf("max iterations reached refining length of spoke %d", spokes[i].Index)
		}
		out[i] = s
	})
	return out, int(capped.Load())
}

func (r *Refiner) refineLength(s models.Spoke) (models.Spoke, bool) {
	if s.IsDegenerate() {
		return s, true
	}

	step := r3.Scale(r.params.Step, s.Direction())
	tip := s.Tip
	state := min(lengthState(r.CountCrossings(tip, s.Skeletal)), maxState)
	inside := r.surface.IsInside(tip)

	for iter := 0; ; {
		switch state.march() {
		case stateExtend:
			if !inside {
				s.Tip = tip
				return s, true
			}
			tip = r3.Add(tip, step)

		default:
			if inside {
				s.Tip = tip
				return s, true
			}
			tip = r3.Sub(tip, step)
		}

		iter++
		if iter >= r.params.MaxLengthIter {
			s.Tip = tip
			return s, false
		}
		inside = r.surface.IsInside(tip)
	}
}

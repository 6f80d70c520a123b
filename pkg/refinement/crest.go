package refinement

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"skelrefine/internal/models"
)

// AddCrestSpokes appends one spoke per crest correspondence. The new spoke
// starts at the crest skeletal point and extends CrestLambda times the
// offset from its neighbor. Existing spokes are kept as they are.
func (r *Refiner) AddCrestSpokes(spokes []models.Spoke) ([]models.Spoke, error) {
	order, neighbor := r.params.CrestOrder, r.params.CrestNeighbor
	if len(order) != len(neighbor) {
		return nil, fmt.Errorf("%d crest points vs %d neighbors: %w", len(order), len(neighbor), ErrCrestIndex)
	}

	n := len(spokes)
	out := make([]models.Spoke, n, n+len(order))
	copy(out, spokes)

	for k := range order {
		o, nb := order[k], neighbor[k]
		if o < 0 || o >= n || nb < 0 || nb >= n {
			return nil, fmt.Errorf("crest pair %d (%d, %d) with %d spokes: %w", k, o, nb, n, ErrCrestIndex)
		}
		skel := spokes[o].Skeletal
		spoke := r3.Scale(r.params.CrestLambda, r3.Sub(skel, spokes[nb].Skeletal))
		out = append(out, models.Spoke{
			Index:    n + k,
			Role:     models.RoleCrest,
			Skeletal: skel,
			Tip:      r3.Add(skel, spoke),
		})
	}
	return out, nil
}

package refinement

import (
	"sort"

	"skelrefine/internal/models"
)

// Classify splits spokes by containment of their skeletal point. Both
// groups keep the relative input order and each spoke keeps its index.
func (r *Refiner) Classify(spokes []models.Spoke) (inside, outside []models.Spoke) {
	flags := make([]bool, len(spokes))
	r.forEach(len(spokes), func(i int) {
		flags[i] = r.surface.IsInside(spokes[i].Skeletal)
	})

	for i, s := range spokes {
		if flags[i] {
			s.Role = models.RoleInside
			inside = append(inside, s)
		} else {
			s.Role = models.RoleOutside
			outside = append(outside, s)
		}
	}
	return inside, outside
}

// Merge concatenates the inside group followed by the outside group. With
// restore set the result is sorted back into original index order instead.
func Merge(inside, outside []models.Spoke, restore bool) []models.Spoke {
	out := make([]models.Spoke, 0, len(inside)+len(outside))
	out = append(out, inside...)
	out = append(out, outside...)
	if restore {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	}
	return out
}

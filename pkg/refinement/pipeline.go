package refinement

import (
	"fmt"
	"slices"

	"skelrefine/internal/models"
)

// Process refines one unit of work, choosing the combined path for the
// combined subfield and the ordinary path otherwise. Subfields listed in
// EqualizeSubfields also get symmetric spoke lengths.
func (r *Refiner) Process(spokes []models.Spoke) (*Result, error) {
	switch {
	case r.params.CombinedSubfield != "" && r.unit.Subfield == r.params.CombinedSubfield:
		return r.Combined(spokes)
	case r.shouldEqualize():
		return r.Equalized(spokes)
	default:
		return r.Ordinary(spokes)
	}
}

// Ordinary refines a subfield:
// 1. Classify spokes by skeletal containment
// 2. Refine direction, then length, of the inside spokes
// 3. Rebuild the outside spokes from their boundary crossings
// 4. Merge inside followed by outside
func (r *Refiner) Ordinary(spokes []models.Spoke) (*Result, error) {
	if len(spokes) == 0 {
		return nil, fmt.Errorf("%s: %w", r.unit.Label(), ErrEmptySpokes)
	}
	res := &Result{Unit: r.unit}

	// Step 1: partition
	inside, outside := r.Classify(spokes)
	r.infof("classified %d inside and %d outside spokes", len(inside), len(outside))

	// Step 2: refine the inside spokes
	inside, n := r.RefineDirection(inside)
	res.NonConverged += n
	inside, n = r.RefineLength(inside)
	res.NonConverged += n

	// Step 3: recover the outside spokes
	outside, res.Invalid = r.RecoverOutside(outside)

	// Step 4: merge
	res.Spokes = Merge(inside, outside, r.params.RestoreOrder)
	return res, nil
}

// Equalized runs the ordinary path and then equalizes paired spoke lengths.
func (r *Refiner) Equalized(spokes []models.Spoke) (*Result, error) {
	res, err := r.Ordinary(spokes)
	if err != nil {
		return nil, err
	}
	res.Spokes = r.EqualizeLengths(res.Spokes)
	return res, nil
}

// Combined refines the whole shape:
// 1. Repair skeletal points that lie outside the surface
// 2. Refine direction of every spoke
// 3. Append crest spokes (baseline only; follow-ups inherit them)
// 4. Refine length of every spoke
func (r *Refiner) Combined(spokes []models.Spoke) (*Result, error) {
	if len(spokes) == 0 {
		return nil, fmt.Errorf("%s: %w", r.unit.Label(), ErrEmptySpokes)
	}
	res := &Result{Unit: r.unit}

	// Step 1: repair
	repaired, moved := r.RepairSkeleton(spokes)
	if moved > 0 {
		r.infof("moved %d skeletal points onto the surface", moved)
	}

	// Step 2: direction
	refined, n := r.RefineDirection(repaired)
	res.NonConverged += n

	// Step 3: crest spokes
	if !r.unit.Followup {
		var err error
		refined, err = r.AddCrestSpokes(refined)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.unit.Label(), err)
		}
	}

	// Step 4: length
	res.Spokes, n = r.RefineLength(refined)
	res.NonConverged += n
	return res, nil
}

func (r *Refiner) shouldEqualize() bool {
	return slices.Contains(r.params.EqualizeSubfields, r.unit.Subfield)
}

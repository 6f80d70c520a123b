package refinement

import (
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"skelrefine/internal/models"
)

// Report summarizes how well refined spokes fit the surface
type Report struct {
	Count      int
	Degenerate int

	MeanLength float64
	StdLength  float64

	// MeanDeviation is the mean 1 - cos between spoke and local normal
	MeanDeviation float64

	// OnSurface is the fraction of non-degenerate tips within tolerance of the surface
	OnSurface float64
}

// Assess measures spokes against the refiner's surface. A tip counts as on
// the surface when it is within tolerance of its closest surface point.
func (r *Refiner) Assess(spokes []models.Spoke, tolerance float64) Report {
	rep := Report{Count: len(spokes)}

	lengths := make([]float64, 0, len(spokes))
	deviations := make([]float64, 0, len(spokes))
	onSurface := 0
	for _, s := range spokes {
		if s.IsDegenerate() {
			rep.Degenerate++
			continue
		}
		lengths = append(lengths, s.Length())

		x, normal := r.surface.LocalNormal(s.Tip)
		deviations = append(deviations, 1-r3.Dot(s.Direction(), normal))
		if r3.Norm(r3.Sub(x, s.Tip)) <= tolerance {
			onSurface++
		}
	}

	if len(lengths) == 0 {
		return rep
	}
	rep.MeanLength = stat.Mean(lengths, nil)
	if len(lengths) > 1 {
		rep.StdLength = stat.StdDev(lengths, nil)
	}
	rep.MeanDeviation = stat.Mean(deviations, nil)
	rep.OnSurface = float64(onSurface) / float64(len(lengths))
	return rep
}

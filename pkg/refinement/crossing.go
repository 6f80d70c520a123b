package refinement

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// minCountLength is the initial spoke length below which counting is skipped
	minCountLength = 1e-6
	// minMarchLength stops marching once the tip is this close to the skeletal point
	minMarchLength = 1e-3
)

// CountCrossings walks from tip toward skel in MarchStep increments and
// counts how often containment flips. It stops when the walk reverses
// direction or comes within minMarchLength of skel.
func (r *Refiner) CountCrossings(tip, skel r3.Vec) int {
	spoke := r3.Sub(tip, skel)
	length := r3.Norm(spoke)
	if length < minCountLength {
		return 0
	}

	dir := r3.Scale(1/length, spoke)
	next := dir
	crossings := 0
	last := r.surface.IsInside(tip)

	for r3.Dot(next, dir) > 0 {
		spoke = r3.Sub(tip, skel)
		length = r3.Norm(spoke)
		if length < minMarchLength {
			break
		}
		dir = r3.Scale(1/length, spoke)

		tip = r3.Sub(tip, r3.Scale(r.params.MarchStep, dir))

		spoke = r3.Sub(tip, skel)
		length = r3.Norm(spoke)
		if length < minMarchLength {
			break
		}
		next = r3.Scale(1/length, spoke)

		inside := r.surface.IsInside(tip)
		if inside != last {
			crossings++
		}
		last = inside
	}
	return crossings
}

// TraceCrossings walks from tip toward skel like CountCrossings and also
// records where containment flips. It gives up after the third crossing;
// when more than two were seen only the last two locations are returned.
func (r *Refiner) TraceCrossings(tip, skel r3.Vec) ([]r3.Vec, int) {
	spoke := r3.Sub(tip, skel)
	length := r3.Norm(spoke)
	if length < minMarchLength {
		return nil, 0
	}

	origin := r3.Scale(1/length, spoke)
	dir := origin
	crossings := 0
	var locations []r3.Vec
	last := r.surface.IsInside(tip)

	for length > minMarchLength {
		tip = r3.Sub(tip, r3.Scale(r.params.MarchStep, dir))

		spoke = r3.Sub(tip, skel)
		length = r3.Norm(spoke)
		if length < minMarchLength {
			break
		}
		dir = r3.Scale(1/length, spoke)
		// Stepped past skel; the remaining walk would oscillate around it
		if r3.Dot(dir, origin) <= 0 {
			break
		}

		inside := r.surface.IsInside(tip)
		if inside != last {
			crossings++
			locations = append(locations, tip)
		}
		last = inside

		if crossings > 2 {
			break
		}
	}

	if crossings > 2 {
		return locations[len(locations)-2:], crossings
	}
	return locations, crossings
}

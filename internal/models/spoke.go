package models

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// DegenerateLength is the spoke length below which a spoke is treated as
// collapsed onto its skeletal point.
const DegenerateLength = 1e-12

// Role records which branch of the pipeline produced a spoke.
type Role int

const (
	RoleUnclassified Role = iota
	RoleInside
	RoleOutside
	RoleCrest
)

func (r Role) String() string {
	switch r {
	case RoleInside:
		return "inside"
	case RoleOutside:
		return "outside"
	case RoleCrest:
		return "crest"
	default:
		return "unclassified"
	}
}

// Spoke is a skeletal point paired with its boundary tip point
type Spoke struct {
	// Index is the position of this spoke in the sequence it was read from.
	// It survives partitioning so callers can recover the input order.
	Index int

	// Role tells where the spoke was routed during refinement
	Role Role

	// Skeletal is the medial (ps) end of the spoke
	Skeletal r3.Vec

	// Tip is the boundary-approximating (pt) end of the spoke
	Tip r3.Vec
}

// Vector returns Tip - Skeletal.
func (s Spoke) Vector() r3.Vec {
	return r3.Sub(s.Tip, s.Skeletal)
}

// Length returns the spoke norm.
func (s Spoke) Length() float64 {
	return r3.Norm(s.Vector())
}

// Direction returns the unit spoke direction, or the zero vector for a
// degenerate spoke.
func (s Spoke) Direction() r3.Vec {
	v := s.Vector()
	l := r3.Norm(v)
	if l < DegenerateLength {
		return r3.Vec{}
	}
	return r3.Scale(1/l, v)
}

// IsDegenerate reports whether the tip sits on the skeletal point.
func (s Spoke) IsDegenerate() bool {
	return s.Length() < DegenerateLength
}

// Collapse returns a copy with both ends placed at p.
func (s Spoke) Collapse(p r3.Vec) Spoke {
	s.Skeletal = p
	s.Tip = p
	return s
}

// FromPoints pairs ps and pt index for index. The caller guarantees equal lengths.
func FromPoints(ps, pt []r3.Vec) []Spoke {
	spokes := make([]Spoke, len(ps))
	for i := range ps {
		spokes[i] = Spoke{Index: i, Skeletal: ps[i], Tip: pt[i]}
	}
	return spokes
}

// Points splits spokes back into the (ps, pt) sequences an external writer persists.
func Points(spokes []Spoke) (ps, pt []r3.Vec) {
	ps = make([]r3.Vec, len(spokes))
	pt = make([]r3.Vec, len(spokes))
	for i, s := range spokes {
		ps[i] = s.Skeletal
		pt[i] = s.Tip
	}
	return ps, pt
}

// Unit identifies one (subject, timepoint, subfield) piece of work
type Unit struct {
	Subject   string
	Timepoint string
	Subfield  string

	// Followup is set for timepoints after the baseline scan. Follow-up
	// combined shapes already carry their crest spokes.
	Followup bool
}

// Label renders the unit for diagnostics.
func (u Unit) Label() string {
	label := u.Subfield
	if u.Timepoint != "" {
		label = u.Timepoint + "/" + label
	}
	if u.Subject != "" {
		label = u.Subject + "/" + label
	}
	return label
}

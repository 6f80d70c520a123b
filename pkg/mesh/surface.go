// Package mesh holds the closed triangulated boundary surface and the
// geometric queries refinement runs against it: containment, closest point
// and locally averaged outward normals.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrNoPoints is returned for a surface without vertices.
	ErrNoPoints = errors.New("surface has no points")
	// ErrNoCells is returned for a surface without faces.
	ErrNoCells = errors.New("surface has no cells")
	// ErrFaceIndex is returned when a face references a missing vertex.
	ErrFaceIndex = errors.New("face references a vertex out of range")
)

// Surface is a triangulated, closed 2-manifold boundary mesh
type Surface struct {
	// Vertices are the point positions
	Vertices []r3.Vec

	// Faces are triangles given as vertex indices
	Faces [][3]int
}

// NewSurface builds a surface and validates it.
func NewSurface(vertices []r3.Vec, faces [][3]int) (*Surface, error) {
	s := &Surface{Vertices: vertices, Faces: faces}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects surfaces that cannot support geometric queries.
func (s *Surface) Validate() error {
	if s == nil || len(s.Vertices) == 0 {
		return ErrNoPoints
	}
	if len(s.Faces) == 0 {
		return ErrNoCells
	}
	for i, f := range s.Faces {
		for _, v := range f {
			if v < 0 || v >= len(s.Vertices) {
				return fmt.Errorf("face %d vertex %d: %w", i, v, ErrFaceIndex)
			}
		}
	}
	return nil
}

// Triangle returns the corner positions of face i.
func (s *Surface) Triangle(i int) (a, b, c r3.Vec) {
	f := s.Faces[i]
	return s.Vertices[f[0]], s.Vertices[f[1]], s.Vertices[f[2]]
}

// Bounds returns the axis-aligned box around all vertices.
func (s *Surface) Bounds() r3.Box {
	box := r3.Box{Min: s.Vertices[0], Max: s.Vertices[0]}
	for _, v := range s.Vertices[1:] {
		box = extend(box, v)
	}
	return box
}

// Transform returns a copy of the surface with every vertex mapped through
// the affine matrix m. Faces are shared with the receiver.
func (s *Surface) Transform(m mgl64.Mat4) *Surface {
	out := &Surface{Vertices: make([]r3.Vec, len(s.Vertices)), Faces: s.Faces}
	for i, v := range s.Vertices {
		p := mgl64.TransformCoordinate(mgl64.Vec3{v.X, v.Y, v.Z}, m)
		out.Vertices[i] = r3.Vec{X: p.X(), Y: p.Y(), Z: p.Z()}
	}
	return out
}

func extend(box r3.Box, p r3.Vec) r3.Box {
	box.Min = r3.Vec{X: min(box.Min.X, p.X), Y: min(box.Min.Y, p.Y), Z: min(box.Min.Z, p.Z)}
	box.Max = r3.Vec{X: max(box.Max.X, p.X), Y: max(box.Max.Y, p.Y), Z: max(box.Max.Z, p.Z)}
	return box
}

package mesh

import (
	"math"

	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultInsideTolerance is the distance within which a point counts as
// lying on, and therefore inside, the surface.
const DefaultInsideTolerance = 1e-4

// Parity rays used by IsInside. They avoid the coordinate axes and each other
// so that a ray grazing an edge or vertex is outvoted by the other two.
var parityRays = [3]model3d.Coord3D{
	model3d.Coord3D{X: 0.5773, Y: 0.5821, Z: 0.5727}.Normalize(),
	model3d.Coord3D{X: -0.40475415, Y: 0.86174632, Z: -0.30588783}.Normalize(),
	model3d.Coord3D{X: 0.7071, Y: -0.2209, Z: -0.6716}.Normalize(),
}

// Locator answers geometric queries against one surface. The collider and
// distance field are built once by NewLocator and only read afterwards, so a
// Locator may be shared by any number of goroutines.
type Locator struct {
	surface   *Surface
	oriented  *orientedMesh
	normals   []r3.Vec
	collider  model3d.MultiCollider
	sdf       model3d.FaceSDF
	tolerance float64
}

// NewLocator validates s, orients it outward and builds its vertex normals,
// ray collider and distance field. A negative tolerance selects
// DefaultInsideTolerance.
func NewLocator(s *Surface, tolerance float64) (*Locator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if tolerance < 0 {
		tolerance = DefaultInsideTolerance
	}

	o := orient(s)
	return &Locator{
		surface:   &Surface{Vertices: s.Vertices, Faces: o.faces},
		oriented:  o,
		normals:   o.vertexNormals(),
		collider:  model3d.MeshToCollider(o.mesh),
		sdf:       model3d.MeshToSDF(o.mesh),
		tolerance: tolerance,
	}, nil
}

// Surface returns the outward-oriented surface the locator was built from.
func (l *Locator) Surface() *Surface { return l.surface }

// IsInside reports whether p lies in the closed surface's interior. Points
// within the tolerance of the surface are inside, which keeps a point that
// was projected onto the surface inside on every later test.
func (l *Locator) IsInside(p r3.Vec) bool {
	c := toCoord(p)
	if _, _, d := l.sdf.FaceSDF(c); math.Abs(d) <= l.tolerance {
		return true
	}
	if !model3d.InBounds(l.collider, c) {
		return false
	}

	votes := 0
	for _, dir := range parityRays {
		hits := 0
		l.collider.RayCollisions(&model3d.Ray{Origin: c, Direction: dir}, func(model3d.RayCollision) {
			hits++
		})
		if hits%2 == 1 {
			votes++
		}
	}
	return votes >= 2
}

// ClosestPoint returns the point of the surface nearest to p.
func (l *Locator) ClosestPoint(p r3.Vec) r3.Vec {
	_, x, _ := l.sdf.FaceSDF(toCoord(p))
	return fromCoord(x)
}

// Distance returns the unsigned distance from p to the surface.
func (l *Locator) Distance(p r3.Vec) float64 {
	_, _, d := l.sdf.FaceSDF(toCoord(p))
	return math.Abs(d)
}

// LocalNormal returns the closest surface point to p and the outward unit
// normal there, the mean of the closest face's vertex normals.
func (l *Locator) LocalNormal(p r3.Vec) (r3.Vec, r3.Vec) {
	t, x, _ := l.sdf.FaceSDF(toCoord(p))
	f, ok := l.oriented.corners[t]
	if !ok {
		return fromCoord(x), fromCoord(t.Normal())
	}
	n := r3.Add(l.normals[f[0]], r3.Add(l.normals[f[1]], l.normals[f[2]]))
	if norm := r3.Norm(n); norm > 0 {
		n = r3.Scale(1/norm, n)
	}
	return fromCoord(x), n
}

// VertexNormal returns the outward unit normal at vertex i.
func (l *Locator) VertexNormal(i int) r3.Vec { return l.normals[i] }

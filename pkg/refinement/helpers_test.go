package refinement

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"

	"skelrefine/internal/diag"
	"skelrefine/internal/models"
	"skelrefine/pkg/mesh"
)

// sphere is an exact analytic surface used where faceting would blur expectations
type sphere struct {
	radius float64
	tol    float64
}

func (s sphere) IsInside(p r3.Vec) bool { return r3.Norm(p) <= s.radius+s.tol }

func (s sphere) ClosestPoint(p r3.Vec) r3.Vec {
	n := r3.Norm(p)
	if n == 0 {
		return r3.Vec{Z: s.radius}
	}
	return r3.Scale(s.radius/n, p)
}

func (s sphere) LocalNormal(p r3.Vec) (r3.Vec, r3.Vec) {
	x := s.ClosestPoint(p)
	return x, r3.Unit(x)
}

// union concatenates surfaces into one multi-component surface
func union(surfaces ...*mesh.Surface) *mesh.Surface {
	out := &mesh.Surface{}
	for _, s := range surfaces {
		offset := len(out.Vertices)
		out.Vertices = append(out.Vertices, s.Vertices...)
		for _, f := range s.Faces {
			out.Faces = append(out.Faces, [3]int{f[0] + offset, f[1] + offset, f[2] + offset})
		}
	}
	return out
}

// unitCube is the cube of half-width 0.5 around the origin
func unitCube(t *testing.T) *mesh.Locator {
	t.Helper()
	return locatorFor(t, mesh.NewBox(0.5, 0.5, 0.5))
}

// twoCubes stacks a second unit cube centered at z = 3 above the first
func twoCubes(t *testing.T) *mesh.Locator {
	t.Helper()
	upper := mesh.NewBox(0.5, 0.5, 0.5).Transform(mgl64.Translate3D(0, 0, 3))
	return locatorFor(t, union(mesh.NewBox(0.5, 0.5, 0.5), upper))
}

func locatorFor(t *testing.T, s *mesh.Surface) *mesh.Locator {
	t.Helper()
	l, err := mesh.NewLocator(s, mesh.DefaultInsideTolerance)
	if err != nil {
		t.Fatalf("Failed to build locator: %v", err)
	}
	return l
}

func testParams() *Params {
	p := DefaultParams()
	p.NumCores = 2
	return p
}

func newTestRefiner(surface Surface, params *Params) (*Refiner, *diag.Recorder) {
	rec := &diag.Recorder{}
	return NewRefiner(surface, params, rec, models.Unit{Subject: "S01", Timepoint: "bl", Subfield: "CA1"}), rec
}

func spoke(index int, skel, tip r3.Vec) models.Spoke {
	return models.Spoke{Index: index, Skeletal: skel, Tip: tip}
}

func near(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

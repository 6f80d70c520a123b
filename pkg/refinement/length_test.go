package refinement

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"skelrefine/internal/models"
)

// TestRefineLengthCubeScenario retracts a tip poking out of the unit cube onto its face
func TestRefineLengthCubeScenario(t *testing.T) {
	cube := unitCube(t)
	params := testParams()
	params.Step = 0.1
	r, rec := newTestRefiner(cube, params)

	out, capped := r.RefineLength([]models.Spoke{spoke(0, r3.Vec{}, r3.Vec{Z: 0.6})})
	if capped != 0 || len(rec.Warnings()) != 0 {
		t.Fatalf("Unexpected non-convergence: %d %v", capped, rec.Warnings())
	}

	tip := out[0].Tip
	if tip.X != 0 || tip.Y != 0 {
		t.Errorf("Tip left the z axis: %v", tip)
	}
	if !approx(tip.Z, 0.5, 1e-9) {
		t.Errorf("Expected tip at (0,0,0.5), got %v", tip)
	}
	if !cube.IsInside(tip) {
		t.Errorf("Final tip %v should be inside", tip)
	}
	if out[0].Skeletal != (r3.Vec{}) {
		t.Errorf("Skeletal point must not move, got %v", out[0].Skeletal)
	}
}

func TestRefineLengthPolicies(t *testing.T) {
	tests := []struct {
		name       string
		twoCubes   bool
		skel, tip  r3.Vec
		wantInside bool
		minZ, maxZ float64
	}{
		{"no crossing extends outward", false, r3.Vec{}, r3.Vec{Z: 0.2}, false, 0.5, 0.6 + 1e-9},
		{"one crossing retracts", false, r3.Vec{}, r3.Vec{Z: 1.3}, true, 0.4, 0.5 + 1e-4},
		{"two crossings keep an inside tip", true, r3.Vec{}, r3.Vec{Z: 3}, true, 3 - 1e-9, 3 + 1e-9},
		{"three crossings retract to the nearest face", true, r3.Vec{}, r3.Vec{Z: 4}, true, 3.4, 3.5 + 1e-4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := unitCube(t)
			if tt.twoCubes {
				surface = twoCubes(t)
			}
			r, _ := newTestRefiner(surface, testParams())

			out, capped := r.RefineLength([]models.Spoke{spoke(0, tt.skel, tt.tip)})
			if capped != 0 {
				t.Fatalf("Unexpected cap hit")
			}
			tip := out[0].Tip
			if got := surface.IsInside(tip); got != tt.wantInside {
				t.Errorf("IsInside(%v) = %v, want %v", tip, got, tt.wantInside)
			}
			if tip.Z < tt.minZ || tip.Z > tt.maxZ {
				t.Errorf("Tip z=%f outside [%f, %f]", tip.Z, tt.minZ, tt.maxZ)
			}
		})
	}
}

func TestRefineLengthDegenerate(t *testing.T) {
	r, _ := newTestRefiner(unitCube(t), testParams())
	in := spoke(3, r3.Vec{X: 0.1}, r3.Vec{X: 0.1})

	out, _ := r.RefineLength([]models.Spoke{in})
	if out[0] != in {
		t.Errorf("Degenerate spoke changed: %+v", out[0])
	}
}

// TestRefineLengthCap reports and warns when the iteration cap is reached
func TestRefineLengthCap(t *testing.T) {
	params := testParams()
	params.MaxLengthIter = 3
	r, rec := newTestRefiner(unitCube(t), params)

	out, capped := r.RefineLength([]models.Spoke{spoke(0, r3.Vec{}, r3.Vec{Z: 5})})
	if capped != 1 {
		t.Fatalf("Expected one capped spoke, got %d", capped)
	}
	if !approx(out[0].Tip.Z, 4.7, 1e-9) {
		t.Errorf("Expected the last computed tip to be kept, got %v", out[0].Tip)
	}
	warnings := rec.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("Expected one warning, got %v", warnings)
	}
	if warnings[0].Unit != "S01/bl/CA1" || !strings.Contains(warnings[0].Message, "spoke 0") {
		t.Errorf("Warning lacks context: %+v", warnings[0])
	}
}

// TestRefineLengthPreservesOrder checks a parallel run keeps every slot
func TestRefineLengthPreservesOrder(t *testing.T) {
	params := testParams()
	params.NumCores = 4
	r, _ := newTestRefiner(sphere{radius: 1, tol: 1e-4}, params)

	var in []models.Spoke
	for i := 0; i < 37; i++ {
		dir := r3.Unit(r3.Vec{X: float64(i%5) - 2, Y: float64(i%3) - 1, Z: 1})
		in = append(in, spoke(i, r3.Vec{}, r3.Scale(1.35, dir)))
	}

	out, capped := r.RefineLength(in)
	if capped != 0 || len(out) != len(in) {
		t.Fatalf("Unexpected result: %d spokes, %d capped", len(out), capped)
	}
	for i, s := range out {
		if s.Index != i {
			t.Fatalf("Slot %d holds spoke %d", i, s.Index)
		}
		if l := s.Length(); l > 1+1e-4 || l < 0.9 {
			t.Errorf("Spoke %d length %f not at the boundary", i, l)
		}
	}
}

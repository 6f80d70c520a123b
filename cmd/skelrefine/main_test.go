package main

import (
	"math/rand/v2"
	"testing"

	"skelrefine/pkg/mesh"
)

func TestFixture(t *testing.T) {
	for _, shape := range []string{"sphere", "box"} {
		s, err := fixture(shape, 2)
		if err != nil {
			t.Fatalf("fixture(%s) failed: %v", shape, err)
		}
		if err := s.Validate(); err != nil {
			t.Errorf("fixture(%s) is invalid: %v", shape, err)
		}
	}
	if _, err := fixture("torus", 0); err == nil {
		t.Error("Expected an error for an unknown shape")
	}
}

func TestRandomSpokes(t *testing.T) {
	s, err := fixture("sphere", 0)
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}
	locator, err := mesh.NewLocator(s, mesh.DefaultInsideTolerance)
	if err != nil {
		t.Fatalf("NewLocator failed: %v", err)
	}

	spokes := randomSpokes(rand.New(rand.NewPCG(1, 2)), s, 100)
	inside := 0
	for i, sp := range spokes {
		if sp.Index != i {
			t.Errorf("Spoke %d has index %d", i, sp.Index)
		}
		if l := sp.Length(); l < 0.2 || l > 0.5 {
			t.Errorf("Spoke %d length %f out of range", i, l)
		}
		if locator.IsInside(sp.Skeletal) {
			inside++
		}
	}
	if inside == 0 || inside == len(spokes) {
		t.Errorf("Expected a mix of inside and outside skeletal points, got %d inside", inside)
	}
}

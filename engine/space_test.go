package engine

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestSpaceInsertAndPosition(t *testing.T) {
	s := NewSpace(100, 100, 10, false)

	if err := s.Insert(1, Vec2{X: 12.5, Y: 40.25}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	p, ok := s.PositionOf(1)
	if !ok || p != (Vec2{X: 12.5, Y: 40.25}) {
		t.Errorf("PositionOf = %v,%v", p, ok)
	}
}

func TestSpaceClampsOutsideExtent(t *testing.T) {
	s := NewSpace(100, 100, 10, false)

	if err := s.Insert(1, Vec2{X: -5, Y: 250}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	p, _ := s.PositionOf(1)
	if p != (Vec2{X: 0, Y: 100}) {
		t.Errorf("clamped position = %v, want (0,100)", p)
	}
}

func TestSpaceTorusWrapsOutsideExtent(t *testing.T) {
	s := NewSpace(100, 100, 10, true)

	if err := s.Insert(1, Vec2{X: -5, Y: 250}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	p, _ := s.PositionOf(1)
	if p != (Vec2{X: 95, Y: 50}) {
		t.Errorf("wrapped position = %v, want (95,50)", p)
	}
}

func TestSpaceRemove(t *testing.T) {
	s := NewSpace(100, 100, 10, false)

	if err := s.Remove(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(unknown) = %v, want ErrNotFound", err)
	}

	if err := s.Insert(1, Vec2{X: 50, Y: 50}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Remove(1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := s.QueryRadius(Vec2{X: 50, Y: 50}, 5, 0); len(got) != 0 {
		t.Errorf("query after remove = %v, want empty", got)
	}
}

func TestSpaceRelocateMovesBuckets(t *testing.T) {
	s := NewSpace(100, 100, 10, false)

	if err := s.Insert(1, Vec2{X: 5, Y: 5}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Relocate(1, Vec2{X: 95, Y: 95}); err != nil {
		t.Fatalf("Relocate: %v", err)
	}

	if got := s.QueryRadius(Vec2{X: 5, Y: 5}, 3, 0); len(got) != 0 {
		t.Errorf("agent still found at old position: %v", got)
	}
	if got := s.QueryRadius(Vec2{X: 95, Y: 95}, 3, 0); len(got) != 1 || got[0] != 1 {
		t.Errorf("agent not found at new position: %v", got)
	}
}

func TestSpaceQueryRadiusExcludesSelf(t *testing.T) {
	s := NewSpace(100, 100, 10, false)

	if err := s.Insert(1, Vec2{X: 50, Y: 50}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(2, Vec2{X: 51, Y: 50}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got := s.QueryRadius(Vec2{X: 50, Y: 50}, 5, 1)
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("query excluding self = %v, want [2]", got)
	}
}

func TestSpaceQueryRadiusZero(t *testing.T) {
	s := NewSpace(100, 100, 10, false)

	if err := s.Insert(1, Vec2{X: 50, Y: 50}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(2, Vec2{X: 50.001, Y: 50}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got := s.QueryRadius(Vec2{X: 50, Y: 50}, 0, 0)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("radius-0 query = %v, want exact match [1]", got)
	}
}

func TestSpaceQueryRadiusAcrossSeam(t *testing.T) {
	s := NewSpace(100, 100, 10, true)

	if err := s.Insert(1, Vec2{X: 1, Y: 50}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(2, Vec2{X: 99, Y: 50}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got := s.QueryRadius(Vec2{X: 1, Y: 50}, 3, 1)
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("seam query = %v, want [2]", got)
	}
}

// TestSpaceQueryRadiusAgainstBruteForce is the property check: bucketed
// queries must return exactly the set a full scan returns.
func TestSpaceQueryRadiusAgainstBruteForce(t *testing.T) {
	for _, torus := range []bool{false, true} {
		rng := rand.New(rand.NewPCG(42, 1337))
		s := NewSpace(200, 150, 12, torus)

		positions := make(map[ID]Vec2)
		for id := ID(1); id <= 300; id++ {
			p := Vec2{X: rng.Float64() * 200, Y: rng.Float64() * 150}
			if err := s.Insert(id, p); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			stored, _ := s.PositionOf(id)
			positions[id] = stored
		}

		for trial := 0; trial < 100; trial++ {
			center := Vec2{X: rng.Float64() * 200, Y: rng.Float64() * 150}
			radius := rng.Float64() * 40

			var want []ID
			for id, p := range positions {
				if s.Distance(center, p) <= radius {
					want = append(want, id)
				}
			}

			got := s.QueryRadius(center, radius, 0)
			slices.Sort(got)
			slices.Sort(want)
			if !slices.Equal(got, want) {
				t.Fatalf("torus=%v trial %d: QueryRadius(%v, %.2f) = %v, brute force = %v",
					torus, trial, center, radius, got, want)
			}
		}
	}
}

func TestSpaceDisplacementTorus(t *testing.T) {
	s := NewSpace(100, 100, 10, true)

	d := s.Displacement(Vec2{X: 95, Y: 50}, Vec2{X: 5, Y: 50})
	if d != (Vec2{X: 10, Y: 0}) {
		t.Errorf("Displacement across seam = %v, want (10,0)", d)
	}
}

func TestSpaceEmptyQuery(t *testing.T) {
	s := NewSpace(100, 100, 10, false)
	if got := s.QueryRadius(Vec2{X: 50, Y: 50}, 1000, 0); len(got) != 0 {
		t.Errorf("query on empty index = %v, want empty", got)
	}
}

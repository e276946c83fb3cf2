package behavior

import (
	"testing"

	"github.com/fieldlab/swarm/engine"
)

// TestOutbreakPursuitTerminates: one hunter, one immobile target within
// initial vision range, closed space. Under greedy pursuit the distance
// to the target is non-increasing and reaches capture range within a
// bounded number of ticks.
func TestOutbreakPursuitTerminates(t *testing.T) {
	m := engine.NewSpaceModel[Walker](100, 100, 10, false, 1)
	o := &Outbreak{
		Vision:       50,
		CaptureRange: 0.5,
		RestTicks:    3,
		Router:       NewGreedyRouter(100, 100),
	}

	hunter, err := m.Create(Walker{Infected: true, Speed: 2, Capacity: 1e9}, engine.Vec2{X: 10, Y: 50})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Speed 0: the victim tries to flee but never gets anywhere.
	victim, err := m.Create(Walker{Speed: 0, Capacity: 1e9}, engine.Vec2{X: 40, Y: 50})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sched := engine.NewScheduler(m)
	rule := o.Rule(m)

	prev := 1e18
	captured := false
	// 30 distance units at speed 2: capture must land well within 20
	// ticks.
	for tick := 0; tick < 20; tick++ {
		if err := sched.Step(rule, nil); err != nil {
			t.Fatalf("Step %d: %v", tick, err)
		}

		hp, _ := m.PositionOf(hunter)
		vp, _ := m.PositionOf(victim)
		d := m.Space().Distance(hp, vp)
		if d > prev+1e-9 {
			t.Fatalf("tick %d: distance increased %.3f -> %.3f", tick, prev, d)
		}
		prev = d

		if vf, _ := m.Fields(victim); vf.Infected {
			captured = true
			break
		}
	}
	if !captured {
		t.Fatal("hunter never captured an immobile target in range")
	}

	// Capture imposes rest and clears the hunter's target.
	hf, _ := m.Fields(hunter)
	vf, _ := m.Fields(victim)
	if hf.Target != 0 {
		t.Errorf("hunter target = %d after capture, want 0", hf.Target)
	}
	if hf.Rest == 0 || vf.Rest == 0 {
		t.Errorf("rest after capture = hunter %d, victim %d, want both > 0", hf.Rest, vf.Rest)
	}
}

func TestOutbreakHunterHoldsWithNothingInSight(t *testing.T) {
	m := engine.NewSpaceModel[Walker](100, 100, 10, false, 1)
	o := &Outbreak{Vision: 5, CaptureRange: 0.5, RestTicks: 2, Router: NewGreedyRouter(100, 100)}

	hunter, err := m.Create(Walker{Infected: true, Speed: 2, Capacity: 100}, engine.Vec2{X: 10, Y: 10})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create(Walker{Speed: 0, Capacity: 100}, engine.Vec2{X: 90, Y: 90}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sched := engine.NewScheduler(m)
	if err := sched.Step(o.Rule(m), nil); err != nil {
		t.Fatalf("Step: %v", err)
	}

	pos, _ := m.PositionOf(hunter)
	if pos != (engine.Vec2{X: 10, Y: 10}) {
		t.Errorf("hunter moved to %v with no target in vision", pos)
	}
}

// TestOutbreakFleeingWalkerPicksDestination: without a route a healthy
// walker picks one and starts moving.
func TestOutbreakFleeingWalkerPicksDestination(t *testing.T) {
	m := engine.NewSpaceModel[Walker](100, 100, 10, false, 42)
	router := NewGreedyRouter(100, 100)
	o := &Outbreak{Vision: 10, CaptureRange: 0.5, RestTicks: 2, Router: router}

	id, err := m.Create(Walker{Speed: 3, Capacity: 1e9}, engine.Vec2{X: 50, Y: 50})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sched := engine.NewScheduler(m)
	if err := sched.Step(o.Rule(m), nil); err != nil {
		t.Fatalf("Step: %v", err)
	}

	pos, _ := m.PositionOf(id)
	moved := pos.DistanceTo(engine.Vec2{X: 50, Y: 50})
	if moved == 0 {
		t.Fatal("fleeing walker did not move")
	}
	if moved > 3+1e-9 {
		t.Errorf("walker moved %.3f, budget was 3", moved)
	}

	f, _ := m.Fields(id)
	if f.Traveled == 0 {
		t.Error("traveled distance not accumulated")
	}
}

// TestOutbreakCapacityForcesRest: accumulated travel past capacity puts
// the walker to rest, and rest ticks count down before moving resumes.
func TestOutbreakCapacityForcesRest(t *testing.T) {
	m := engine.NewSpaceModel[Walker](100, 100, 10, false, 9)
	o := &Outbreak{Vision: 10, CaptureRange: 0.5, RestTicks: 2, Router: NewGreedyRouter(100, 100)}

	id, err := m.Create(Walker{Speed: 5, Capacity: 4}, engine.Vec2{X: 50, Y: 50})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Pin the destination so the first tick consumes the full budget.
	o.Router.PlanRoute(id, engine.Vec2{X: 50, Y: 50}, engine.Vec2{X: 90, Y: 50})

	sched := engine.NewScheduler(m)
	rule := o.Rule(m)

	// First tick: moves 5 > capacity 4, so rest begins.
	if err := sched.Step(rule, nil); err != nil {
		t.Fatalf("Step: %v", err)
	}
	f, _ := m.Fields(id)
	if f.Rest != o.RestTicks {
		t.Fatalf("rest = %d after exhaustion, want %d", f.Rest, o.RestTicks)
	}
	if f.Traveled != 0 {
		t.Errorf("traveled = %v after exhaustion, want reset to 0", f.Traveled)
	}

	// Resting ticks: position frozen, counter decrements.
	pos, _ := m.PositionOf(id)
	for i := o.RestTicks; i > 0; i-- {
		if err := sched.Step(rule, nil); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if got, _ := m.PositionOf(id); got != pos {
			t.Fatalf("walker moved while resting")
		}
	}
	f, _ = m.Fields(id)
	if f.Rest != 0 {
		t.Errorf("rest = %d after countdown, want 0", f.Rest)
	}
}

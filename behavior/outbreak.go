package behavior

import (
	"fmt"
	"math/rand/v2"

	"github.com/fieldlab/swarm/engine"
)

// Walker is the agent schema for the outbreak scenario. A single flag
// selects between the two sub-modes: infected walkers hunt, healthy
// walkers flee.
type Walker struct {
	Infected bool
	Speed    float64   // movement budget per tick
	Capacity float64   // distance walkable before a forced rest
	Traveled float64   // distance accumulated since the last rest
	Rest     int       // ticks left resting; 0 means free to move
	Target   engine.ID // persistent hunt target, 0 when none
}

// Router is the route-following capability set the outbreak rule needs
// from a road network (or any other movement substrate). The rule owns
// no graph data; per-agent route state lives behind this interface.
type Router interface {
	// PlanRoute computes and stores a route for the agent from its
	// current position to dest, replacing any existing route. Returns
	// false when no route exists; the agent's previous route is
	// discarded either way.
	PlanRoute(agent engine.ID, from, to engine.Vec2) bool
	// HasRoute reports whether the agent is currently moving toward a
	// destination.
	HasRoute(agent engine.ID) bool
	// ClearRoute drops the agent's route, if any.
	ClearRoute(agent engine.ID)
	// MoveAlong advances the agent along its route by at most budget,
	// returning the new position and the unspent budget. An agent with
	// no route stays put with the full budget returned.
	MoveAlong(agent engine.ID, from engine.Vec2, budget float64) (engine.Vec2, float64)
	// Distance returns the router's distance measure between points.
	Distance(a, b engine.Vec2) float64
	// RandomDestination picks a reachable destination for fleeing.
	RandomDestination(rng *rand.Rand) engine.Vec2
}

// Outbreak holds the hunt/flee rule parameters.
type Outbreak struct {
	Vision       float64 // hunt target acquisition radius
	CaptureRange float64 // distance at which a victim is converted
	RestTicks    int     // rest imposed after a capture or exhaustion
	Router       Router

	conversions int
}

// Conversions returns the total number of walkers converted so far.
func (o *Outbreak) Conversions() int { return o.conversions }

// Rule returns the outbreak behavior for m. Resting walkers count down
// and do nothing else. Hunters acquire the nearest healthy walker
// within Vision as a persistent target and pursue it by route
// following; within CaptureRange the victim is converted and both
// parties rest. Fleeing walkers keep a random destination and walk
// toward it. Movement distance accumulates; past Capacity a walker must
// rest before moving again.
func (o *Outbreak) Rule(m *engine.SpaceModel[Walker]) engine.Rule {
	return func(id engine.ID) error {
		self, ok := m.Fields(id)
		if !ok {
			return fmt.Errorf("walker %d: %w", id, engine.ErrNotFound)
		}

		if self.Rest > 0 {
			self.Rest--
			return m.SetFields(id, self)
		}

		pos, ok := m.PositionOf(id)
		if !ok {
			return fmt.Errorf("walker %d: %w", id, engine.ErrNotFound)
		}

		var err error
		if self.Infected {
			err = o.hunt(m, id, pos, &self)
		} else {
			err = o.flee(m, id, pos, &self)
		}
		if err != nil {
			return err
		}

		if self.Traveled >= self.Capacity {
			self.Rest = o.RestTicks
			self.Traveled = 0
		}
		return m.SetFields(id, self)
	}
}

// hunt pursues the nearest healthy walker. The target is persistent
// across ticks but revalidated every tick: a consumed or converted
// target is dropped and a new one acquired.
func (o *Outbreak) hunt(m *engine.SpaceModel[Walker], id engine.ID, pos engine.Vec2, self *Walker) error {
	if self.Target != 0 {
		tf, alive := m.Fields(self.Target)
		if !alive || tf.Infected {
			self.Target = 0
			o.Router.ClearRoute(id)
		}
	}

	if self.Target == 0 {
		self.Target = o.acquire(m, id, pos)
		if self.Target == 0 {
			return nil // nothing in sight, hold position
		}
	}

	// Replan every tick: the victim moves.
	tpos, ok := m.PositionOf(self.Target)
	if !ok {
		self.Target = 0
		return nil
	}
	if !o.Router.PlanRoute(id, pos, tpos) {
		self.Target = 0
		return nil
	}

	newPos, remaining := o.Router.MoveAlong(id, pos, self.Speed)
	if err := m.Relocate(id, newPos); err != nil {
		return err
	}
	self.Traveled += self.Speed - remaining

	if m.Space().Distance(newPos, tpos) <= o.CaptureRange {
		return o.capture(m, id, self)
	}
	return nil
}

// acquire returns the nearest healthy walker within Vision, 0 if none.
func (o *Outbreak) acquire(m *engine.SpaceModel[Walker], id engine.ID, pos engine.Vec2) engine.ID {
	var best engine.ID
	bestDist := o.Vision + 1
	for _, nb := range m.Neighbors(pos, o.Vision, id) {
		nf, ok := m.Fields(nb)
		if !ok || nf.Infected {
			continue
		}
		np, ok := m.PositionOf(nb)
		if !ok {
			continue
		}
		if d := o.Router.Distance(pos, np); d < bestDist {
			best = nb
			bestDist = d
		}
	}
	return best
}

// capture converts the target and imposes the post-capture rest on
// both parties.
func (o *Outbreak) capture(m *engine.SpaceModel[Walker], id engine.ID, self *Walker) error {
	victim := self.Target
	vf, ok := m.Fields(victim)
	if ok {
		vf.Infected = true
		vf.Rest = o.RestTicks
		vf.Target = 0
		if err := m.SetFields(victim, vf); err != nil {
			return err
		}
		o.Router.ClearRoute(victim)
		o.conversions++
	}

	self.Target = 0
	self.Rest = o.RestTicks
	o.Router.ClearRoute(id)
	return nil
}

// flee walks toward a random destination, picking a new one whenever
// the walker is not currently moving anywhere.
func (o *Outbreak) flee(m *engine.SpaceModel[Walker], id engine.ID, pos engine.Vec2, self *Walker) error {
	if !o.Router.HasRoute(id) {
		dest := o.Router.RandomDestination(m.RNG())
		if !o.Router.PlanRoute(id, pos, dest) {
			return nil // unreachable pick, try again next tick
		}
	}

	newPos, remaining := o.Router.MoveAlong(id, pos, self.Speed)
	if err := m.Relocate(id, newPos); err != nil {
		return err
	}
	self.Traveled += self.Speed - remaining
	return nil
}

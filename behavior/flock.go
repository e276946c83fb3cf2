// Package behavior contains the per-agent rule functions built on the
// engine's model handles: flocking, segregation, and the outbreak
// hunt/flee rules. Each rule is a closure over a model, satisfying the
// engine.Rule contract; rules mutate agents only through the handle and
// retain nothing across ticks.
package behavior

import (
	"fmt"

	"github.com/fieldlab/swarm/engine"
)

// Boid is the agent schema for the flocking scenario.
type Boid struct {
	Heading engine.Vec2
}

// Flock holds the flocking rule constants.
type Flock struct {
	VisualRange     float64 // neighbor query radius
	SeparationRange float64 // neighbors closer than this repel
	CohereFactor    float64
	AvoidFactor     float64
	MatchFactor     float64
	Speed           float64 // distance advanced per tick
}

// Rule returns the flocking behavior for m. For each boid it queries
// neighbors within VisualRange and blends three aggregates into the
// heading: cohesion (mean relative position), separation (negative mean
// relative position over too-close neighbors) and alignment (mean
// neighbor heading), each scaled by its factor. With zero neighbors all
// aggregates are zero vectors — the divisor is floored at 1, never a
// NaN — so an isolated boid keeps its normalized heading.
func (f Flock) Rule(m *engine.SpaceModel[Boid]) engine.Rule {
	return func(id engine.ID) error {
		pos, ok := m.PositionOf(id)
		if !ok {
			return fmt.Errorf("boid %d: %w", id, engine.ErrNotFound)
		}
		self, _ := m.Fields(id)
		space := m.Space()

		neighbors := m.Neighbors(pos, f.VisualRange, id)

		var cohere, avoid, match engine.Vec2
		closeCount := 0
		for _, nb := range neighbors {
			np, ok := m.PositionOf(nb)
			if !ok {
				continue
			}
			rel := space.Displacement(pos, np)
			cohere = cohere.Add(rel)

			if rel.Norm() < f.SeparationRange {
				avoid = avoid.Sub(rel)
				closeCount++
			}

			nf, _ := m.Fields(nb)
			match = match.Add(nf.Heading)
		}

		// Divisors floored at 1 so the zero-neighbor case yields zero
		// aggregates instead of dividing by zero.
		n := float64(max(len(neighbors), 1))
		c := float64(max(closeCount, 1))
		cohere = cohere.Scale(f.CohereFactor / n)
		avoid = avoid.Scale(f.AvoidFactor / c)
		match = match.Scale(f.MatchFactor / n)

		heading := self.Heading.Add(cohere).Add(avoid).Add(match).Scale(0.5).Normalize()
		if heading == (engine.Vec2{}) {
			// Degenerate sum (or a boid created with no heading):
			// keep moving the way it was going.
			heading = self.Heading.Normalize()
		}

		self.Heading = heading
		if err := m.SetFields(id, self); err != nil {
			return err
		}
		return m.Relocate(id, pos.Add(heading.Scale(f.Speed)))
	}
}

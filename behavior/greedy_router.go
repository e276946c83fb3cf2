package behavior

import (
	"math/rand/v2"

	"github.com/fieldlab/swarm/engine"
)

// GreedyRouter is a Router over open ground: straight-line movement
// toward the destination with Euclidean distances. Used by tests and by
// scenarios without a road network.
type GreedyRouter struct {
	// Extent bounds RandomDestination picks.
	Width, Height float64

	dests map[engine.ID]engine.Vec2
}

// NewGreedyRouter creates a straight-line router over the given extent.
func NewGreedyRouter(width, height float64) *GreedyRouter {
	return &GreedyRouter{
		Width:  width,
		Height: height,
		dests:  make(map[engine.ID]engine.Vec2),
	}
}

// PlanRoute stores dest as the agent's destination. Always reachable.
func (g *GreedyRouter) PlanRoute(agent engine.ID, _, to engine.Vec2) bool {
	g.dests[agent] = to
	return true
}

// HasRoute reports whether the agent has a pending destination.
func (g *GreedyRouter) HasRoute(agent engine.ID) bool {
	_, ok := g.dests[agent]
	return ok
}

// ClearRoute drops the agent's destination.
func (g *GreedyRouter) ClearRoute(agent engine.ID) {
	delete(g.dests, agent)
}

// MoveAlong advances straight toward the destination by at most budget.
// Arrival clears the route and returns the leftover budget.
func (g *GreedyRouter) MoveAlong(agent engine.ID, from engine.Vec2, budget float64) (engine.Vec2, float64) {
	dest, ok := g.dests[agent]
	if !ok {
		return from, budget
	}

	d := dest.Sub(from)
	dist := d.Norm()
	if dist <= budget {
		delete(g.dests, agent)
		return dest, budget - dist
	}
	return from.Add(d.Scale(budget / dist)), 0
}

// Distance is plain Euclidean distance.
func (g *GreedyRouter) Distance(a, b engine.Vec2) float64 {
	return a.DistanceTo(b)
}

// RandomDestination picks a uniform point in the extent.
func (g *GreedyRouter) RandomDestination(rng *rand.Rand) engine.Vec2 {
	return engine.Vec2{
		X: rng.Float64() * g.Width,
		Y: rng.Float64() * g.Height,
	}
}

var _ Router = (*GreedyRouter)(nil)

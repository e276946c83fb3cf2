// Package roadnet implements the road-network movement substrate for
// the outbreak scenario: an undirected weighted graph of road nodes
// with shortest-path route planning, nearest-node lookup, and
// budget-limited route following. It satisfies behavior.Router; the
// rule layer owns no graph data.
package roadnet

import (
	"fmt"
	"math/rand/v2"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/fieldlab/swarm/behavior"
	"github.com/fieldlab/swarm/engine"
)

// vertex pairs a graph node ID with its coordinate for quadtree lookup.
type vertex struct {
	id int64
	pt orb.Point
}

func (v vertex) Point() orb.Point { return v.pt }

// route is a polyline from an agent's off-road position through road
// nodes, consumed leg by leg.
type route struct {
	pts    []orb.Point
	leg    int
	offset float64 // distance already walked into the current leg
}

// Network is a road network built from an already-constructed node and
// edge set (map loading and parsing are out of scope). Edge weights are
// planar distances between node coordinates.
type Network struct {
	graph  *simple.WeightedUndirectedGraph
	coords map[int64]orb.Point
	tree   *quadtree.Quadtree
	nodes  []int64
	routes map[engine.ID]*route
}

// New creates an empty network whose nodes all lie within bound.
func New(bound orb.Bound) *Network {
	return &Network{
		graph:  simple.NewWeightedUndirectedGraph(0, 0),
		coords: make(map[int64]orb.Point),
		tree:   quadtree.New(bound),
		routes: make(map[engine.ID]*route),
	}
}

// AddNode registers a road node at the given coordinate.
func (n *Network) AddNode(id int64, at orb.Point) error {
	if _, exists := n.coords[id]; exists {
		return fmt.Errorf("node %d already present", id)
	}
	if err := n.tree.Add(vertex{id: id, pt: at}); err != nil {
		return fmt.Errorf("node %d at %v: %w", id, at, err)
	}
	n.graph.AddNode(simple.Node(id))
	n.coords[id] = at
	n.nodes = append(n.nodes, id)
	return nil
}

// AddEdge connects two nodes with a road segment weighted by the
// planar distance between them.
func (n *Network) AddEdge(a, b int64) error {
	pa, ok := n.coords[a]
	if !ok {
		return fmt.Errorf("unknown node %d", a)
	}
	pb, ok := n.coords[b]
	if !ok {
		return fmt.Errorf("unknown node %d", b)
	}
	n.graph.SetWeightedEdge(simple.WeightedEdge{
		F: simple.Node(a),
		T: simple.Node(b),
		W: planar.Distance(pa, pb),
	})
	return nil
}

// NodeCount returns the number of road nodes.
func (n *Network) NodeCount() int { return len(n.nodes) }

// NodePosition returns a node's coordinate.
func (n *Network) NodePosition(id int64) (engine.Vec2, bool) {
	p, ok := n.coords[id]
	return vecFromPoint(p), ok
}

// NearestNode returns the road node closest to p.
func (n *Network) NearestNode(p engine.Vec2) (int64, bool) {
	found := n.tree.Find(pointFromVec(p))
	if found == nil {
		return 0, false
	}
	return found.(vertex).id, true
}

// PlanRoute computes a shortest path over the road network from the
// node nearest from to the node nearest to, and stores it as the
// agent's route prefixed with the agent's own position. Returns false,
// dropping any previous route, when the endpoints are disconnected.
func (n *Network) PlanRoute(agent engine.ID, from, to engine.Vec2) bool {
	delete(n.routes, agent)

	src, ok := n.NearestNode(from)
	if !ok {
		return false
	}
	dst, ok := n.NearestNode(to)
	if !ok {
		return false
	}

	pts := []orb.Point{pointFromVec(from)}
	if src == dst {
		pts = append(pts, n.coords[src])
	} else {
		shortest := path.DijkstraFrom(n.graph.Node(src), n.graph)
		hops, _ := shortest.To(dst)
		if hops == nil {
			return false
		}
		for _, hop := range hops {
			pts = append(pts, n.coords[hop.ID()])
		}
	}

	n.routes[agent] = &route{pts: pts}
	return true
}

// HasRoute reports whether the agent has an active route.
func (n *Network) HasRoute(agent engine.ID) bool {
	_, ok := n.routes[agent]
	return ok
}

// ClearRoute drops the agent's route, if any.
func (n *Network) ClearRoute(agent engine.ID) {
	delete(n.routes, agent)
}

// MoveAlong advances the agent along its route by at most budget and
// returns the new position and the unspent budget. Reaching the end of
// the route consumes it; an agent without a route stays at from.
func (n *Network) MoveAlong(agent engine.ID, from engine.Vec2, budget float64) (engine.Vec2, float64) {
	r, ok := n.routes[agent]
	if !ok {
		return from, budget
	}

	for budget > 0 && r.leg < len(r.pts)-1 {
		legLen := planar.Distance(r.pts[r.leg], r.pts[r.leg+1])
		remain := legLen - r.offset
		if remain > budget {
			r.offset += budget
			budget = 0
		} else {
			budget -= remain
			r.offset = 0
			r.leg++
		}
	}

	if r.leg >= len(r.pts)-1 {
		end := r.pts[len(r.pts)-1]
		delete(n.routes, agent)
		return vecFromPoint(end), budget
	}

	a, b := r.pts[r.leg], r.pts[r.leg+1]
	legLen := planar.Distance(a, b)
	t := r.offset / legLen
	return engine.Vec2{
		X: a[0] + (b[0]-a[0])*t,
		Y: a[1] + (b[1]-a[1])*t,
	}, budget
}

// Distance returns the straight-line planar distance between points.
// Used for target acquisition and capture checks, not for routing.
func (n *Network) Distance(a, b engine.Vec2) float64 {
	return planar.Distance(pointFromVec(a), pointFromVec(b))
}

// RandomDestination returns the coordinate of a uniformly random road
// node; every pick is reachable from any connected position.
func (n *Network) RandomDestination(rng *rand.Rand) engine.Vec2 {
	if len(n.nodes) == 0 {
		return engine.Vec2{}
	}
	id := n.nodes[rng.IntN(len(n.nodes))]
	return vecFromPoint(n.coords[id])
}

func pointFromVec(v engine.Vec2) orb.Point { return orb.Point{v.X, v.Y} }
func vecFromPoint(p orb.Point) engine.Vec2 { return engine.Vec2{X: p[0], Y: p[1]} }

var _ behavior.Router = (*Network)(nil)

package scenario

import (
	"fmt"
	"math"

	"github.com/fieldlab/swarm/behavior"
	"github.com/fieldlab/swarm/engine"
	"github.com/fieldlab/swarm/roadnet"
)

// --- Schelling ---

type schellingSim struct {
	model *engine.GridModel[behavior.Resident]
	sched *engine.Scheduler
	rules *behavior.Segregation
	rule  engine.Rule
	tick  engine.TickRule
}

// NewSchelling seeds residents uniformly over a periodic grid with
// groups assigned round-robin, so group sizes differ by at most one.
func NewSchelling(seed uint64, cfg *SchellingConfig) (Simulation, error) {
	m := engine.NewGridModel[behavior.Resident](cfg.Width, cfg.Height, true, seed)

	for i := 0; i < cfg.Residents; i++ {
		fields := behavior.Resident{Group: i % cfg.Groups}
		if _, err := m.CreateRandom(fields, cfg.MoveAttempts); err != nil {
			return nil, fmt.Errorf("seed resident %d: %w", i, err)
		}
	}

	rules := &behavior.Segregation{
		Threshold:    cfg.Threshold,
		MoveAttempts: cfg.MoveAttempts,
	}
	sched := engine.NewScheduler(m)
	sched.Order = engine.OrderRandom

	return &schellingSim{
		model: m,
		sched: sched,
		rules: rules,
		rule:  rules.Rule(m),
		tick:  rules.TickRule(),
	}, nil
}

func (s *schellingSim) Step() error     { return s.sched.Step(s.rule, s.tick) }
func (s *schellingSim) Tick() uint64    { return s.model.Tick() }
func (s *schellingSim) Population() int { return s.model.Len() }

func (s *schellingSim) Bounds() (float64, float64) {
	g := s.model.Grid()
	return float64(g.Width()), float64(g.Height())
}

func (s *schellingSim) Census() []AgentView {
	out := make([]AgentView, 0, s.model.Len())
	s.model.EachAgent(func(id engine.ID, at engine.Cell, f behavior.Resident) {
		out = append(out, AgentView{
			ID: id, X: float64(at.X), Y: float64(at.Y),
			State: f.Group, Flag: f.Happy,
		})
	})
	return out
}

// Done reports convergence: a completed tick in which nobody moved.
func (s *schellingSim) Done() bool {
	return s.model.Tick() > 0 && s.rules.Converged()
}

func (s *schellingSim) SetObserver(o engine.Observer) { s.sched.Observe = o }

// --- Flock ---

type flockSim struct {
	model *engine.SpaceModel[behavior.Boid]
	sched *engine.Scheduler
	rule  engine.Rule

	width, height float64
}

// NewFlock seeds boids uniformly over a torus with unit headings drawn
// from uniform random angles.
func NewFlock(seed uint64, cfg *FlockConfig) (Simulation, error) {
	m := engine.NewSpaceModel[behavior.Boid](
		cfg.Width, cfg.Height, cfg.VisualRange, true, seed)

	rng := m.RNG()
	for i := 0; i < cfg.Boids; i++ {
		angle := rng.Float64() * 2 * math.Pi
		fields := behavior.Boid{
			Heading: engine.Vec2{X: math.Cos(angle), Y: math.Sin(angle)},
		}
		if _, err := m.CreateRandom(fields); err != nil {
			return nil, fmt.Errorf("seed boid %d: %w", i, err)
		}
	}

	flock := behavior.Flock{
		VisualRange:     cfg.VisualRange,
		SeparationRange: cfg.SeparationRange,
		CohereFactor:    cfg.CohereFactor,
		AvoidFactor:     cfg.AvoidFactor,
		MatchFactor:     cfg.MatchFactor,
		Speed:           cfg.Speed,
	}

	return &flockSim{
		model:  m,
		sched:  engine.NewScheduler(m),
		rule:   flock.Rule(m),
		width:  cfg.Width,
		height: cfg.Height,
	}, nil
}

func (s *flockSim) Step() error                   { return s.sched.Step(s.rule, nil) }
func (s *flockSim) Tick() uint64                  { return s.model.Tick() }
func (s *flockSim) Population() int               { return s.model.Len() }
func (s *flockSim) Bounds() (float64, float64)    { return s.width, s.height }
func (s *flockSim) Done() bool                    { return false }
func (s *flockSim) SetObserver(o engine.Observer) { s.sched.Observe = o }

func (s *flockSim) Census() []AgentView {
	out := make([]AgentView, 0, s.model.Len())
	s.model.EachAgent(func(id engine.ID, at engine.Vec2, f behavior.Boid) {
		// State encodes the heading octant for directional glyphs.
		oct := int(math.Mod(math.Atan2(f.Heading.Y, f.Heading.X)/(math.Pi/4)+8, 8))
		out = append(out, AgentView{ID: id, X: at.X, Y: at.Y, State: oct})
	})
	return out
}

// --- Outbreak ---

type outbreakSim struct {
	model *engine.SpaceModel[behavior.Walker]
	sched *engine.Scheduler
	rules *behavior.Outbreak
	rule  engine.Rule

	width, height float64
}

// NewOutbreak builds a street lattice, scatters walkers over it and
// infects the first few. The space is bounded: the city has edges.
func NewOutbreak(seed uint64, cfg *OutbreakConfig) (Simulation, error) {
	net, err := roadnet.Lattice(cfg.LatticeCols, cfg.LatticeRows, cfg.LatticeSpacing)
	if err != nil {
		return nil, fmt.Errorf("build lattice: %w", err)
	}

	width := float64(cfg.LatticeCols-1) * cfg.LatticeSpacing
	height := float64(cfg.LatticeRows-1) * cfg.LatticeSpacing
	m := engine.NewSpaceModel[behavior.Walker](width, height, cfg.Vision, false, seed)

	rng := m.RNG()
	for i := 0; i < cfg.Walkers; i++ {
		fields := behavior.Walker{
			Infected: i < cfg.Infected,
			Speed:    cfg.MinSpeed + rng.Float64()*(cfg.MaxSpeed-cfg.MinSpeed),
			Capacity: cfg.Capacity,
		}
		if _, err := m.CreateRandom(fields); err != nil {
			return nil, fmt.Errorf("seed walker %d: %w", i, err)
		}
	}

	rules := &behavior.Outbreak{
		Vision:       cfg.Vision,
		CaptureRange: cfg.CaptureRange,
		RestTicks:    cfg.RestTicks,
		Router:       net,
	}
	sched := engine.NewScheduler(m)
	sched.Order = engine.OrderRandom

	return &outbreakSim{
		model:  m,
		sched:  sched,
		rules:  rules,
		rule:   rules.Rule(m),
		width:  width,
		height: height,
	}, nil
}

func (s *outbreakSim) Step() error                   { return s.sched.Step(s.rule, nil) }
func (s *outbreakSim) Tick() uint64                  { return s.model.Tick() }
func (s *outbreakSim) Population() int               { return s.model.Len() }
func (s *outbreakSim) Bounds() (float64, float64)    { return s.width, s.height }
func (s *outbreakSim) SetObserver(o engine.Observer) { s.sched.Observe = o }

func (s *outbreakSim) Census() []AgentView {
	out := make([]AgentView, 0, s.model.Len())
	s.model.EachAgent(func(id engine.ID, at engine.Vec2, f behavior.Walker) {
		state := 0
		if f.Infected {
			state = 1
		}
		out = append(out, AgentView{
			ID: id, X: at.X, Y: at.Y, State: state, Flag: f.Rest > 0,
		})
	})
	return out
}

// Done reports whether the infection swept the whole population.
func (s *outbreakSim) Done() bool {
	healthy := 0
	s.model.EachAgent(func(_ engine.ID, _ engine.Vec2, f behavior.Walker) {
		if !f.Infected {
			healthy++
		}
	})
	return healthy == 0
}

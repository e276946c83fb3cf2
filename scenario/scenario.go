// Package scenario turns JSON configuration files into runnable
// simulations. Each config names exactly one model family; the builders
// seed the model, wire the behavior rules, and hand back a Simulation
// that drivers step without knowing which family they run.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fieldlab/swarm/engine"
)

// Config is a complete scenario description. Exactly one of the
// per-family blocks must be present.
type Config struct {
	Name  string `json:"name"`
	Seed  uint64 `json:"seed"`
	Ticks int    `json:"ticks"`

	Schelling *SchellingConfig `json:"schelling,omitempty"`
	Flock     *FlockConfig     `json:"flock,omitempty"`
	Outbreak  *OutbreakConfig  `json:"outbreak,omitempty"`
}

// SchellingConfig parameterizes the segregation model on a periodic
// grid.
type SchellingConfig struct {
	Width        int `json:"width"`
	Height       int `json:"height"`
	Residents    int `json:"residents"`
	Groups       int `json:"groups"`
	Threshold    int `json:"threshold"`
	MoveAttempts int `json:"move_attempts"`
}

// FlockConfig parameterizes the boid model on a torus.
type FlockConfig struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	Boids           int     `json:"boids"`
	VisualRange     float64 `json:"visual_range"`
	SeparationRange float64 `json:"separation_range"`
	CohereFactor    float64 `json:"cohere_factor"`
	AvoidFactor     float64 `json:"avoid_factor"`
	MatchFactor     float64 `json:"match_factor"`
	Speed           float64 `json:"speed"`
}

// OutbreakConfig parameterizes the pursuit model on a street lattice.
type OutbreakConfig struct {
	LatticeCols    int     `json:"lattice_cols"`
	LatticeRows    int     `json:"lattice_rows"`
	LatticeSpacing float64 `json:"lattice_spacing"`
	Walkers        int     `json:"walkers"`
	Infected       int     `json:"infected"`
	Vision         float64 `json:"vision"`
	CaptureRange   float64 `json:"capture_range"`
	RestTicks      int     `json:"rest_ticks"`
	MinSpeed       float64 `json:"min_speed"`
	MaxSpeed       float64 `json:"max_speed"`
	Capacity       float64 `json:"capacity"`
}

// Load reads and validates a scenario config. Unknown fields are
// rejected so typos fail loudly instead of silently defaulting.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks structural and numeric constraints.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Ticks < 0 {
		return fmt.Errorf("ticks must be non-negative, got %d", c.Ticks)
	}

	blocks := 0
	if c.Schelling != nil {
		blocks++
		if err := c.Schelling.validate(); err != nil {
			return fmt.Errorf("schelling: %w", err)
		}
	}
	if c.Flock != nil {
		blocks++
		if err := c.Flock.validate(); err != nil {
			return fmt.Errorf("flock: %w", err)
		}
	}
	if c.Outbreak != nil {
		blocks++
		if err := c.Outbreak.validate(); err != nil {
			return fmt.Errorf("outbreak: %w", err)
		}
	}
	if blocks != 1 {
		return fmt.Errorf("exactly one scenario block required, got %d", blocks)
	}
	return nil
}

func (c *SchellingConfig) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("grid must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Residents <= 0 {
		return fmt.Errorf("residents must be positive, got %d", c.Residents)
	}
	if c.Residents >= c.Width*c.Height {
		return fmt.Errorf("residents %d must leave free cells on a %dx%d grid",
			c.Residents, c.Width, c.Height)
	}
	if c.Groups < 2 {
		return fmt.Errorf("need at least 2 groups, got %d", c.Groups)
	}
	if c.Threshold < 0 || c.Threshold > 8 {
		return fmt.Errorf("threshold must be in [0,8], got %d", c.Threshold)
	}
	if c.MoveAttempts <= 0 {
		return fmt.Errorf("move_attempts must be positive, got %d", c.MoveAttempts)
	}
	return nil
}

func (c *FlockConfig) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("space must be positive, got %gx%g", c.Width, c.Height)
	}
	if c.Boids <= 0 {
		return fmt.Errorf("boids must be positive, got %d", c.Boids)
	}
	if c.VisualRange <= 0 {
		return fmt.Errorf("visual_range must be positive, got %g", c.VisualRange)
	}
	if c.SeparationRange < 0 || c.SeparationRange > c.VisualRange {
		return fmt.Errorf("separation_range %g must be in [0, visual_range %g]",
			c.SeparationRange, c.VisualRange)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %g", c.Speed)
	}
	return nil
}

func (c *OutbreakConfig) validate() error {
	if c.LatticeCols < 2 || c.LatticeRows < 2 {
		return fmt.Errorf("lattice must be at least 2x2, got %dx%d",
			c.LatticeCols, c.LatticeRows)
	}
	if c.LatticeSpacing <= 0 {
		return fmt.Errorf("lattice_spacing must be positive, got %g", c.LatticeSpacing)
	}
	if c.Walkers <= 0 {
		return fmt.Errorf("walkers must be positive, got %d", c.Walkers)
	}
	if c.Infected <= 0 || c.Infected > c.Walkers {
		return fmt.Errorf("infected must be in [1, walkers], got %d", c.Infected)
	}
	if c.Vision <= 0 || c.CaptureRange <= 0 {
		return fmt.Errorf("vision and capture_range must be positive")
	}
	if c.MinSpeed <= 0 || c.MaxSpeed < c.MinSpeed {
		return fmt.Errorf("speeds must satisfy 0 < min_speed <= max_speed")
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %g", c.Capacity)
	}
	return nil
}

// AgentView is one agent's entry in a census: position plus a discrete
// state and a boolean flag whose meanings depend on the scenario.
type AgentView struct {
	ID    engine.ID
	X, Y  float64
	State int
	Flag  bool
}

// Simulation is the driver-facing surface shared by all scenario
// families. A census is valid only between ticks.
type Simulation interface {
	// Step runs one tick.
	Step() error
	// Tick reports completed ticks.
	Tick() uint64
	// Population reports live agents.
	Population() int
	// Bounds reports the world extent for rendering.
	Bounds() (width, height float64)
	// Census snapshots every agent's position and state.
	Census() []AgentView
	// Done reports whether the scenario reached its terminal condition.
	Done() bool
	// SetObserver installs a per-tick timing callback.
	SetObserver(engine.Observer)
}

// New builds the simulation the config describes.
func New(cfg *Config) (Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case cfg.Schelling != nil:
		return NewSchelling(cfg.Seed, cfg.Schelling)
	case cfg.Flock != nil:
		return NewFlock(cfg.Seed, cfg.Flock)
	default:
		return NewOutbreak(cfg.Seed, cfg.Outbreak)
	}
}

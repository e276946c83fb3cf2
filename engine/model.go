package engine

import (
	"math/rand/v2"
)

// Model is the surface a Scheduler drives, independent of topology and
// agent schema. Only GridModel and SpaceModel implement it.
type Model interface {
	// Snapshot returns the live IDs in insertion order, captured at
	// call time.
	Snapshot() []ID
	// Alive reports whether id still exists.
	Alive(id ID) bool
	// Tick returns the number of completed ticks.
	Tick() uint64
	// Len returns the live population.
	Len() int

	rng() *rand.Rand
	advanceTick()
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// --- Grid-topology model ---

// GridModel aggregates a Store, a single-occupancy Grid, a seeded RNG
// and a tick counter behind one handle. All position writes go through
// Relocate so the index exactly reflects the store at every quiescent
// point; there is no other mutation path.
type GridModel[F any] struct {
	store *Store[F]
	grid  *Grid
	rand  *rand.Rand
	tick  uint64
}

// NewGridModel creates an empty grid model with the given extent and
// seed.
func NewGridModel[F any](width, height int, periodic bool, seed uint64) *GridModel[F] {
	return &GridModel[F]{
		store: NewStore[F](),
		grid:  NewGrid(width, height, periodic),
		rand:  newRNG(seed),
	}
}

// Grid exposes the spatial index for neighbor queries.
func (m *GridModel[F]) Grid() *Grid { return m.grid }

// RNG returns the model's random source. All stochastic behavior draws
// from this one stream so a seed fixes the whole run.
func (m *GridModel[F]) RNG() *rand.Rand { return m.rand }

// Create places a new agent at c. On a collision the store allocation
// is rolled back and ErrOccupied propagates; the caller retries with a
// different cell.
func (m *GridModel[F]) Create(fields F, at Cell) (ID, error) {
	id := m.store.Create(fields)
	if err := m.grid.Insert(id, at); err != nil {
		_ = m.store.Remove(id)
		return 0, err
	}
	return id, nil
}

// CreateRandom places a new agent at a uniformly random free cell,
// with the bounded-attempt guarantee of Grid.RandomFree.
func (m *GridModel[F]) CreateRandom(fields F, maxAttempts int) (ID, error) {
	c, err := m.grid.RandomFree(m.rand, maxAttempts)
	if err != nil {
		return 0, err
	}
	return m.Create(fields, c)
}

// Remove deletes the agent from both store and index.
func (m *GridModel[F]) Remove(id ID) error {
	if err := m.grid.Remove(id); err != nil {
		return err
	}
	return m.store.Remove(id)
}

// Relocate moves the agent to c, keeping store and index consistent.
func (m *GridModel[F]) Relocate(id ID, to Cell) error {
	return m.grid.Relocate(id, to)
}

// RelocateRandom moves the agent to a uniformly random free cell.
func (m *GridModel[F]) RelocateRandom(id ID, maxAttempts int) error {
	c, err := m.grid.RandomFree(m.rand, maxAttempts)
	if err != nil {
		return err
	}
	return m.grid.Relocate(id, c)
}

// CellOf returns the agent's current cell.
func (m *GridModel[F]) CellOf(id ID) (Cell, bool) {
	return m.grid.CellOf(id)
}

// Fields retrieves a copy of the agent's domain fields.
func (m *GridModel[F]) Fields(id ID) (F, bool) {
	return m.store.Get(id)
}

// SetFields overwrites the agent's domain fields.
func (m *GridModel[F]) SetFields(id ID, fields F) error {
	return m.store.Set(id, fields)
}

// Snapshot returns the live IDs in insertion order at call time.
func (m *GridModel[F]) Snapshot() []ID { return m.store.IDs() }

// Alive reports whether id still exists.
func (m *GridModel[F]) Alive(id ID) bool { return m.store.Has(id) }

// Tick returns the number of completed ticks.
func (m *GridModel[F]) Tick() uint64 { return m.tick }

// Len returns the live population.
func (m *GridModel[F]) Len() int { return m.store.Len() }

// EachAgent visits every live agent with its cell and fields. Intended
// for introspection at quiescent points; must not be called mid-tick.
func (m *GridModel[F]) EachAgent(fn func(id ID, at Cell, fields F)) {
	for _, id := range m.store.IDs() {
		c, ok := m.grid.CellOf(id)
		if !ok {
			continue
		}
		f, _ := m.store.Get(id)
		fn(id, c, f)
	}
}

func (m *GridModel[F]) rng() *rand.Rand { return m.rand }
func (m *GridModel[F]) advanceTick()    { m.tick++ }

// --- Continuous-topology model ---

// SpaceModel is the continuous-space counterpart of GridModel: Store +
// bucketed Space + RNG + tick counter, with the same single-relocate
// discipline for position writes.
type SpaceModel[F any] struct {
	store *Store[F]
	space *Space
	rand  *rand.Rand
	tick  uint64
}

// NewSpaceModel creates an empty continuous model with the given
// extent, bucket size and seed.
func NewSpaceModel[F any](width, height, cellSize float64, torus bool, seed uint64) *SpaceModel[F] {
	return &SpaceModel[F]{
		store: NewStore[F](),
		space: NewSpace(width, height, cellSize, torus),
		rand:  newRNG(seed),
	}
}

// Space exposes the spatial index for radius queries and torus-aware
// geometry.
func (m *SpaceModel[F]) Space() *Space { return m.space }

// RNG returns the model's random source.
func (m *SpaceModel[F]) RNG() *rand.Rand { return m.rand }

// Create places a new agent at p (normalized into the extent).
func (m *SpaceModel[F]) Create(fields F, at Vec2) (ID, error) {
	id := m.store.Create(fields)
	if err := m.space.Insert(id, at); err != nil {
		_ = m.store.Remove(id)
		return 0, err
	}
	return id, nil
}

// CreateRandom places a new agent uniformly at random in the extent.
func (m *SpaceModel[F]) CreateRandom(fields F) (ID, error) {
	p := Vec2{
		X: m.rand.Float64() * m.space.Width(),
		Y: m.rand.Float64() * m.space.Height(),
	}
	return m.Create(fields, p)
}

// Remove deletes the agent from both store and index.
func (m *SpaceModel[F]) Remove(id ID) error {
	if err := m.space.Remove(id); err != nil {
		return err
	}
	return m.store.Remove(id)
}

// Relocate moves the agent to p, keeping store and index consistent.
func (m *SpaceModel[F]) Relocate(id ID, to Vec2) error {
	return m.space.Relocate(id, to)
}

// PositionOf returns the agent's current position.
func (m *SpaceModel[F]) PositionOf(id ID) (Vec2, bool) {
	return m.space.PositionOf(id)
}

// Neighbors returns the agents within radius of p, excluding exclude.
func (m *SpaceModel[F]) Neighbors(p Vec2, radius float64, exclude ID) []ID {
	return m.space.QueryRadius(p, radius, exclude)
}

// Fields retrieves a copy of the agent's domain fields.
func (m *SpaceModel[F]) Fields(id ID) (F, bool) {
	return m.store.Get(id)
}

// SetFields overwrites the agent's domain fields.
func (m *SpaceModel[F]) SetFields(id ID, fields F) error {
	return m.store.Set(id, fields)
}

// Snapshot returns the live IDs in insertion order at call time.
func (m *SpaceModel[F]) Snapshot() []ID { return m.store.IDs() }

// Alive reports whether id still exists.
func (m *SpaceModel[F]) Alive(id ID) bool { return m.store.Has(id) }

// Tick returns the number of completed ticks.
func (m *SpaceModel[F]) Tick() uint64 { return m.tick }

// Len returns the live population.
func (m *SpaceModel[F]) Len() int { return m.store.Len() }

// EachAgent visits every live agent with its position and fields.
// Intended for introspection at quiescent points; must not be called
// mid-tick.
func (m *SpaceModel[F]) EachAgent(fn func(id ID, at Vec2, fields F)) {
	for _, id := range m.store.IDs() {
		p, ok := m.space.PositionOf(id)
		if !ok {
			continue
		}
		f, _ := m.store.Get(id)
		fn(id, p, f)
	}
}

func (m *SpaceModel[F]) rng() *rand.Rand { return m.rand }
func (m *SpaceModel[F]) advanceTick()    { m.tick++ }

// ensure both models satisfy the scheduler contract
var (
	_ Model = (*GridModel[struct{}])(nil)
	_ Model = (*SpaceModel[struct{}])(nil)
)

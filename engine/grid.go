package engine

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Cell is a discrete grid coordinate.
type Cell struct {
	X, Y int
}

// Grid is a single-occupancy discrete 2D spatial index: every cell
// holds at most one agent at any quiescent point. Backed by a dense 1D
// array for O(1) occupancy checks plus a reverse map for O(1) lookups
// by agent.
type Grid struct {
	mu       sync.RWMutex
	width    int
	height   int
	periodic bool
	cells    []ID // 1D array: index = y*width + x, 0 = empty
	at       map[ID]Cell
	free     int
}

// NewGrid creates an empty grid with the given extent. When periodic is
// set, coordinates wrap modulo the extent instead of being rejected.
func NewGrid(width, height int, periodic bool) *Grid {
	return &Grid{
		width:    width,
		height:   height,
		periodic: periodic,
		cells:    make([]ID, width*height),
		at:       make(map[ID]Cell),
		free:     width * height,
	}
}

// Width returns the horizontal extent in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the vertical extent in cells.
func (g *Grid) Height() int { return g.height }

// Periodic reports whether coordinates wrap at the boundary.
func (g *Grid) Periodic() bool { return g.periodic }

// normalize wraps c into the extent for periodic grids and bounds-checks
// it otherwise. Callers must hold no lock; normalize reads no state that
// can change after construction.
func (g *Grid) normalize(c Cell) (Cell, error) {
	if g.periodic {
		c.X = ((c.X % g.width) + g.width) % g.width
		c.Y = ((c.Y % g.height) + g.height) % g.height
		return c, nil
	}
	if c.X < 0 || c.X >= g.width || c.Y < 0 || c.Y >= g.height {
		return Cell{}, fmt.Errorf("cell (%d,%d) outside %dx%d grid: %w", c.X, c.Y, g.width, g.height, ErrOutOfBounds)
	}
	return c, nil
}

func (g *Grid) idx(c Cell) int { return c.Y*g.width + c.X }

// Insert places id at c. Fails with ErrOccupied if the cell already
// holds another agent; the caller is expected to retry elsewhere.
func (g *Grid) Insert(id ID, c Cell) error {
	c, err := g.normalize(c)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.at[id]; exists {
		return fmt.Errorf("agent %d already placed", id)
	}
	if occupant := g.cells[g.idx(c)]; occupant != 0 {
		return fmt.Errorf("cell (%d,%d) held by agent %d: %w", c.X, c.Y, occupant, ErrOccupied)
	}

	g.cells[g.idx(c)] = id
	g.at[id] = c
	g.free--
	return nil
}

// Remove deletes the agent's entry. Fails with ErrNotFound if absent.
func (g *Grid) Remove(id ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, exists := g.at[id]
	if !exists {
		return fmt.Errorf("agent %d: %w", id, ErrNotFound)
	}

	g.cells[g.idx(c)] = 0
	delete(g.at, id)
	g.free++
	return nil
}

// Relocate moves id to c as a single operation: on any failure the
// agent remains exactly where it was, and no observer ever sees it
// absent from both cells or present in both.
func (g *Grid) Relocate(id ID, c Cell) error {
	c, err := g.normalize(c)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	old, exists := g.at[id]
	if !exists {
		return fmt.Errorf("agent %d: %w", id, ErrNotFound)
	}
	if old == c {
		return nil
	}
	if occupant := g.cells[g.idx(c)]; occupant != 0 {
		return fmt.Errorf("cell (%d,%d) held by agent %d: %w", c.X, c.Y, occupant, ErrOccupied)
	}

	g.cells[g.idx(old)] = 0
	g.cells[g.idx(c)] = id
	g.at[id] = c
	return nil
}

// At returns the agent occupying c, if any.
func (g *Grid) At(c Cell) (ID, bool) {
	c, err := g.normalize(c)
	if err != nil {
		return 0, false
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	id := g.cells[g.idx(c)]
	return id, id != 0
}

// CellOf returns the cell currently holding id.
func (g *Grid) CellOf(id ID) (Cell, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.at[id]
	return c, ok
}

// MooreNeighbors returns the agents in the up-to-8 cells adjacent to c,
// in row-major scan order. Non-periodic grids truncate at boundaries;
// periodic grids wrap modulo the extent.
func (g *Grid) MooreNeighbors(c Cell) []ID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var result []ID
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := Cell{X: c.X + dx, Y: c.Y + dy}
			if g.periodic {
				n.X = ((n.X % g.width) + g.width) % g.width
				n.Y = ((n.Y % g.height) + g.height) % g.height
			} else if n.X < 0 || n.X >= g.width || n.Y < 0 || n.Y >= g.height {
				continue
			}
			if id := g.cells[g.idx(n)]; id != 0 {
				result = append(result, id)
			}
		}
	}
	return result
}

// RandomFree returns a uniformly random unoccupied cell. Up to
// maxAttempts random probes are made; past that budget the grid is
// scanned exactly, so placement always succeeds while a free cell
// exists and fails with ErrCapacity only when the grid is full.
func (g *Grid) RandomFree(rng *rand.Rand, maxAttempts int) (Cell, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.free == 0 {
		return Cell{}, fmt.Errorf("%dx%d grid full: %w", g.width, g.height, ErrCapacity)
	}

	for i := 0; i < maxAttempts; i++ {
		c := Cell{X: rng.IntN(g.width), Y: rng.IntN(g.height)}
		if g.cells[g.idx(c)] == 0 {
			return c, nil
		}
	}

	// Attempt budget exhausted at high occupancy: pick the nth free
	// cell by exact scan instead of spinning.
	n := rng.IntN(g.free)
	for i, id := range g.cells {
		if id != 0 {
			continue
		}
		if n == 0 {
			return Cell{X: i % g.width, Y: i / g.width}, nil
		}
		n--
	}
	return Cell{}, fmt.Errorf("%dx%d grid full: %w", g.width, g.height, ErrCapacity)
}

// Len returns the number of agents on the grid.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.at)
}

// Occupancy returns the fraction of cells holding an agent.
func (g *Grid) Occupancy() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return float64(len(g.at)) / float64(g.width*g.height)
}

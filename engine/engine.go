// Package engine implements the spatial neighbor-query and synchronous
// stepping core shared by all simulations in this repo: a population of
// positioned agents, an eagerly maintained spatial index over them, and
// a tick scheduler that applies per-agent rules against a stable
// snapshot of the live population.
package engine

import "errors"

// ID is a unique identifier for an agent. IDs start at 1 and are never
// reused within a model; 0 is the zero value and is never assigned.
type ID uint64

// Recoverable and programming-error conditions surfaced by the index
// and store. Callers discriminate with errors.Is.
var (
	// ErrOccupied is returned when a grid insert or relocate targets a
	// cell that already holds an agent. Recoverable: retry elsewhere.
	ErrOccupied = errors.New("cell occupied")

	// ErrNotFound is returned for operations on an unknown agent ID.
	ErrNotFound = errors.New("agent not found")

	// ErrOutOfBounds is returned when a grid position lies outside the
	// declared extent of a non-periodic grid.
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrCapacity is returned when random placement cannot find a free
	// cell: the grid is full. Deterministic, never a spin loop.
	ErrCapacity = errors.New("no free cell available")
)

package behavior

import (
	"fmt"

	"github.com/fieldlab/swarm/engine"
)

// Resident is the agent schema for the segregation scenario.
type Resident struct {
	Group int
	Happy bool
}

// Segregation holds the segregation rule parameters and per-tick
// bookkeeping. Happiness is terminal: once a resident is happy it stays
// happy (and stays put) until ResetHappiness.
type Segregation struct {
	Threshold    int // minimum same-group Moore neighbors to be happy
	MoveAttempts int // random-probe budget when relocating

	moves     int // relocations in the current tick
	lastMoves int // relocations in the last completed tick
}

// Rule returns the segregation behavior for m: an unhappy resident
// counts same-group agents in its Moore neighborhood, becomes happy at
// Threshold or above, and otherwise moves to a uniformly random free
// cell.
func (s *Segregation) Rule(m *engine.GridModel[Resident]) engine.Rule {
	return func(id engine.ID) error {
		self, ok := m.Fields(id)
		if !ok {
			return fmt.Errorf("resident %d: %w", id, engine.ErrNotFound)
		}
		if self.Happy {
			return nil
		}

		cell, ok := m.CellOf(id)
		if !ok {
			return fmt.Errorf("resident %d: %w", id, engine.ErrNotFound)
		}

		same := 0
		for _, nb := range m.Grid().MooreNeighbors(cell) {
			if nf, ok := m.Fields(nb); ok && nf.Group == self.Group {
				same++
			}
		}

		if same >= s.Threshold {
			self.Happy = true
			return m.SetFields(id, self)
		}

		s.moves++
		return m.RelocateRandom(id, s.MoveAttempts)
	}
}

// TickRule returns the per-tick bookkeeping: it latches the tick's
// relocation count so Converged can observe a full tick with zero
// moves.
func (s *Segregation) TickRule() engine.TickRule {
	return func() error {
		s.lastMoves = s.moves
		s.moves = 0
		return nil
	}
}

// MovesLastTick returns the number of relocations in the last
// completed tick.
func (s *Segregation) MovesLastTick() int { return s.lastMoves }

// Converged reports whether the last completed tick changed nothing.
// Meaningful only after at least one tick has run.
func (s *Segregation) Converged() bool { return s.lastMoves == 0 }

// HappyCount returns the number of happy residents.
func HappyCount(m *engine.GridModel[Resident]) int {
	count := 0
	m.EachAgent(func(_ engine.ID, _ engine.Cell, f Resident) {
		if f.Happy {
			count++
		}
	})
	return count
}

// ResetHappiness clears every resident's happy flag, restarting the
// dynamics from the current placement.
func ResetHappiness(m *engine.GridModel[Resident]) error {
	for _, id := range m.Snapshot() {
		f, ok := m.Fields(id)
		if !ok || !f.Happy {
			continue
		}
		f.Happy = false
		if err := m.SetFields(id, f); err != nil {
			return err
		}
	}
	return nil
}

package engine

import (
	"fmt"
	"time"
)

// Rule is a per-agent behavior callback. It may read any current field
// or position, including of agents already updated this tick (updates
// are visible immediately: the scheme is synchronous but sequential),
// and may relocate, mutate, remove or create agents through the model
// handle it closes over. It must not retain references across ticks.
type Rule func(id ID) error

// TickRule runs once per tick after all agents, for model-level
// bookkeeping such as global countdowns or convergence checks.
type TickRule func() error

// Order selects the iteration order of a tick's snapshot.
type Order int

const (
	// OrderInsertion processes agents in creation order.
	OrderInsertion Order = iota
	// OrderRandom processes agents in a fresh permutation drawn from
	// the model's RNG each tick.
	OrderRandom
)

// Observer receives timing data after each completed tick. Used by
// drivers to export metrics without the engine knowing about them.
type Observer func(tick uint64, elapsed time.Duration, processed int)

// Scheduler drives discrete time steps over a model: snapshot the live
// population, apply the rule to each agent, run the tick rule, advance
// the tick counter. Exactly one tick runs at a time; Step must not be
// called concurrently.
type Scheduler struct {
	model Model

	// Order selects snapshot iteration order; OrderInsertion unless set.
	Order Order

	// Observe, when non-nil, is called after every completed tick.
	Observe Observer
}

// NewScheduler creates a scheduler for the given model.
func NewScheduler(m Model) *Scheduler {
	return &Scheduler{model: m}
}

// Step runs one tick. The snapshot taken at entry fixes exactly which
// agents step: agents created during the tick wait for the next one,
// and agents removed mid-tick (an eaten victim, not an error) are
// skipped silently. The first rule error aborts the tick and
// propagates; effects already applied this tick remain (no rollback),
// leaving the model consistent but mid-batch.
func (s *Scheduler) Step(rule Rule, tickRule TickRule) error {
	start := time.Now()
	tick := s.model.Tick()

	ids := s.model.Snapshot()
	if s.Order == OrderRandom {
		rng := s.model.rng()
		rng.Shuffle(len(ids), func(i, j int) {
			ids[i], ids[j] = ids[j], ids[i]
		})
	}

	processed := 0
	for _, id := range ids {
		if !s.model.Alive(id) {
			continue
		}
		if err := rule(id); err != nil {
			return fmt.Errorf("tick %d: agent %d: %w", tick, id, err)
		}
		processed++
	}

	if tickRule != nil {
		if err := tickRule(); err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
	}

	s.model.advanceTick()

	if s.Observe != nil {
		s.Observe(tick, time.Since(start), processed)
	}
	return nil
}

// Run executes up to ticks consecutive steps, stopping at the first
// error.
func (s *Scheduler) Run(ticks int, rule Rule, tickRule TickRule) error {
	for i := 0; i < ticks; i++ {
		if err := s.Step(rule, tickRule); err != nil {
			return err
		}
	}
	return nil
}

package engine

import (
	"fmt"
	"math"
	"sync"
)

// Space is a continuous bounded 2D spatial index with radius queries.
// Agents are hashed into square buckets sized near the expected query
// radius, so a query touches a constant number of buckets instead of
// scanning the whole population. A toroidal space wraps positions and
// distances at the extent; a bounded space clamps positions into it.
type Space struct {
	mu       sync.RWMutex
	width    float64
	height   float64
	cellSize float64
	cols     int
	rows     int
	torus    bool
	buckets  [][]ID // flat grid of agent lists: index = row*cols + col
	at       map[ID]Vec2
}

// NewSpace creates an empty continuous space covering [0,width) x
// [0,height). cellSize should be close to the dominant query radius.
func NewSpace(width, height, cellSize float64, torus bool) *Space {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	buckets := make([][]ID, cols*rows)
	for i := range buckets {
		buckets[i] = make([]ID, 0, 8)
	}

	return &Space{
		width:    width,
		height:   height,
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		torus:    torus,
		buckets:  buckets,
		at:       make(map[ID]Vec2),
	}
}

// Width returns the horizontal extent.
func (s *Space) Width() float64 { return s.width }

// Height returns the vertical extent.
func (s *Space) Height() float64 { return s.height }

// Torus reports whether the extent wraps.
func (s *Space) Torus() bool { return s.torus }

// Normalize maps p into the extent: toroidal spaces wrap, bounded
// spaces clamp. Continuous positions are never rejected.
func (s *Space) Normalize(p Vec2) Vec2 {
	if s.torus {
		p.X = math.Mod(p.X, s.width)
		if p.X < 0 {
			p.X += s.width
		}
		p.Y = math.Mod(p.Y, s.height)
		if p.Y < 0 {
			p.Y += s.height
		}
		return p
	}
	p.X = math.Min(math.Max(p.X, 0), s.width)
	p.Y = math.Min(math.Max(p.Y, 0), s.height)
	return p
}

// bucketIndex returns the flat bucket index for a normalized position.
func (s *Space) bucketIndex(p Vec2) int {
	col := int(p.X / s.cellSize)
	row := int(p.Y / s.cellSize)
	if col < 0 {
		col = 0
	} else if col >= s.cols {
		col = s.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= s.rows {
		row = s.rows - 1
	}
	return row*s.cols + col
}

// Insert places id at p (normalized into the extent).
func (s *Space) Insert(id ID, p Vec2) error {
	p = s.Normalize(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.at[id]; exists {
		return fmt.Errorf("agent %d already placed", id)
	}

	idx := s.bucketIndex(p)
	s.buckets[idx] = append(s.buckets[idx], id)
	s.at[id] = p
	return nil
}

// Remove deletes the agent's entry. Fails with ErrNotFound if absent.
func (s *Space) Remove(id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.at[id]
	if !exists {
		return fmt.Errorf("agent %d: %w", id, ErrNotFound)
	}

	s.removeFromBucket(id, s.bucketIndex(p))
	delete(s.at, id)
	return nil
}

// Relocate moves id to p in one step: the agent is never observable
// missing from both positions nor present in both.
func (s *Space) Relocate(id ID, p Vec2) error {
	p = s.Normalize(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.at[id]
	if !exists {
		return fmt.Errorf("agent %d: %w", id, ErrNotFound)
	}

	oldIdx := s.bucketIndex(old)
	newIdx := s.bucketIndex(p)
	if oldIdx != newIdx {
		s.removeFromBucket(id, oldIdx)
		s.buckets[newIdx] = append(s.buckets[newIdx], id)
	}
	s.at[id] = p
	return nil
}

// removeFromBucket swap-removes id from the bucket at idx. Caller must
// hold the write lock.
func (s *Space) removeFromBucket(id ID, idx int) {
	b := s.buckets[idx]
	for i, e := range b {
		if e == id {
			b[i] = b[len(b)-1]
			s.buckets[idx] = b[:len(b)-1]
			return
		}
	}
}

// PositionOf returns the stored position of id.
func (s *Space) PositionOf(id ID) (Vec2, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.at[id]
	return p, ok
}

// QueryRadius returns the agents whose stored position lies within
// radius of p (Euclidean, torus-aware). exclude, usually the querying
// agent itself, is omitted from the result; pass 0 to exclude nothing.
// Radius 0 matches exact positions only. Order is bucket scan order,
// stable within a single call.
func (s *Space) QueryRadius(p Vec2, radius float64, exclude ID) []ID {
	p = s.Normalize(p)

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ID, 0, 16)
	cellRadius := int(radius/s.cellSize) + 1
	centerCol := int(p.X / s.cellSize)
	centerRow := int(p.Y / s.cellSize)
	radiusSq := radius * radius

	// Clamp the scan span so a radius wider than the torus never visits
	// the same bucket twice (which would duplicate results).
	colLo, colHi := -cellRadius, cellRadius
	rowLo, rowHi := -cellRadius, cellRadius
	if s.torus {
		if colHi-colLo+1 > s.cols {
			colLo, colHi = 0, s.cols-1
		}
		if rowHi-rowLo+1 > s.rows {
			rowLo, rowHi = 0, s.rows-1
		}
	}

	for dr := rowLo; dr <= rowHi; dr++ {
		for dc := colLo; dc <= colHi; dc++ {
			col := centerCol + dc
			row := centerRow + dr
			if s.torus {
				col = ((col % s.cols) + s.cols) % s.cols
				row = ((row % s.rows) + s.rows) % s.rows
			} else if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
				continue
			}

			for _, id := range s.buckets[row*s.cols+col] {
				if id == exclude {
					continue
				}
				if s.distanceSq(p, s.at[id]) <= radiusSq {
					result = append(result, id)
				}
			}
		}
	}
	return result
}

// Distance returns the distance between two points, taking the shortest
// path across the boundary on a torus.
func (s *Space) Distance(a, b Vec2) float64 {
	return math.Sqrt(s.distanceSq(a, b))
}

// Displacement returns the vector from a to b, across the boundary if
// that is shorter on a torus. Rules use this for relative positions.
func (s *Space) Displacement(a, b Vec2) Vec2 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if s.torus {
		if dx > s.width/2 {
			dx -= s.width
		} else if dx < -s.width/2 {
			dx += s.width
		}
		if dy > s.height/2 {
			dy -= s.height
		} else if dy < -s.height/2 {
			dy += s.height
		}
	}
	return Vec2{X: dx, Y: dy}
}

func (s *Space) distanceSq(a, b Vec2) float64 {
	d := s.Displacement(a, b)
	return d.X*d.X + d.Y*d.Y
}

// Len returns the number of agents in the space.
func (s *Space) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.at)
}

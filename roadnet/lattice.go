package roadnet

import (
	"github.com/paulmach/orb"
)

// Lattice builds a cols x rows rectangular street grid with the given
// spacing, nodes at every intersection and edges along both axes. A
// convenient stand-in when no real map data is loaded.
func Lattice(cols, rows int, spacing float64) (*Network, error) {
	bound := orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{float64(cols-1) * spacing, float64(rows-1) * spacing},
	}
	n := New(bound)

	id := func(c, r int) int64 { return int64(r*cols + c) }

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			at := orb.Point{float64(c) * spacing, float64(r) * spacing}
			if err := n.AddNode(id(c, r), at); err != nil {
				return nil, err
			}
		}
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				if err := n.AddEdge(id(c, r), id(c+1, r)); err != nil {
					return nil, err
				}
			}
			if r+1 < rows {
				if err := n.AddEdge(id(c, r), id(c, r+1)); err != nil {
					return nil, err
				}
			}
		}
	}
	return n, nil
}

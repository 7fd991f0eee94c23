// Package grid models the bounded plane rovers drive on. Moving past an edge
// re-enters from the opposite edge.
package grid

import (
	"errors"
	"fmt"

	"github.com/vinser/marsrover/internal/nav"
)

var ErrInvalidDimensions = errors.New("grid dimensions must be positive")

// Grid is immutable once built and safe to share between goroutines.
type Grid struct {
	width  int
	height int
}

// New returns a width x height grid.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid{width: width, height: height}, nil
}

func (g *Grid) Width() int {
	return g.width
}

func (g *Grid) Height() int {
	return g.height
}

// Contains reports whether p lies inside the grid without wrapping.
func (g *Grid) Contains(p nav.Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// NextPosition returns the cell one step from cur in direction d.
// Only the axis d points along changes, and it is wrapped into [0, dim).
func (g *Grid) NextPosition(cur nav.Position, d nav.Direction) nav.Position {
	next := cur
	switch d {
	case nav.North:
		next.Y = wrap(cur.Y+1, g.height)
	case nav.South:
		next.Y = wrap(cur.Y-1, g.height)
	case nav.East:
		next.X = wrap(cur.X+1, g.width)
	case nav.West:
		next.X = wrap(cur.X-1, g.width)
	}
	return next
}

// Wrap maps any position onto the grid, wrapping both axes.
func (g *Grid) Wrap(p nav.Position) nav.Position {
	return nav.Position{X: wrap(p.X, g.width), Y: wrap(p.Y, g.height)}
}

// wrap normalises v into [0, n). Go's % keeps the sign of v.
func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func (g *Grid) String() string {
	return fmt.Sprintf("%dx%d", g.width, g.height)
}

package nav

import (
	"errors"
	"fmt"
	"strings"
)

// Position represents coordinates on the grid.
type Position struct {
	X, Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Direction represents the way a rover faces.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

var ErrUnknownDirection = errors.New("unknown direction")

// Clockwise order. Turning right walks it forward, turning left walks it back.
var (
	rightOf = [...]Direction{North: East, East: South, South: West, West: North}
	leftOf  = [...]Direction{North: West, West: South, South: East, East: North}
)

// Right returns the direction one quarter turn clockwise.
func (d Direction) Right() Direction {
	return rightOf[d]
}

// Left returns the direction one quarter turn counter-clockwise.
func (d Direction) Left() Direction {
	return leftOf[d]
}

// Opposite returns the direction facing the other way.
func (d Direction) Opposite() Direction {
	return rightOf[rightOf[d]]
}

// Valid reports whether d is one of the four compass directions.
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Name returns the full compass name of d.
func (d Direction) Name() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	}
	return d.String()
}

// ParseDirection accepts a compass letter or name in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north":
		return North, nil
	case "e", "east":
		return East, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	}
	return North, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// MarshalText encodes d as its compass letter.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDirection, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a compass letter or name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

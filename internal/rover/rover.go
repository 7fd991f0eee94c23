// Package rover drives a single rover across a grid from a string of
// one-letter commands.
package rover

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vinser/marsrover/internal/grid"
	"github.com/vinser/marsrover/internal/nav"
)

var (
	ErrUnboundGrid = errors.New("rover must be placed on a valid grid")
	ErrOutOfBounds = errors.New("start position outside grid")
)

// Step describes the rover right after one command was applied.
type Step struct {
	Command   Command
	Position  nav.Position
	Direction nav.Direction
}

// Rover is a single navigating agent. It is not safe for concurrent use.
type Rover struct {
	grid        *grid.Grid
	position    nav.Position
	direction   nav.Direction
	strict      bool
	boundsCheck bool
	observer    func(Step)
	logger      *zap.Logger
}

// Option configures a Rover at construction.
type Option func(*Rover)

// WithPosition sets the start position. Default (0, 0).
func WithPosition(p nav.Position) Option {
	return func(r *Rover) { r.position = p }
}

// WithDirection sets the start direction. Default North.
func WithDirection(d nav.Direction) Option {
	return func(r *Rover) { r.direction = d }
}

// WithStrict makes Execute report unknown command characters.
func WithStrict(strict bool) Option {
	return func(r *Rover) { r.strict = strict }
}

// WithBoundsCheck rejects start positions outside the grid.
func WithBoundsCheck(check bool) Option {
	return func(r *Rover) { r.boundsCheck = check }
}

// WithObserver registers fn to be called after every applied command.
func WithObserver(fn func(Step)) Option {
	return func(r *Rover) { r.observer = fn }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Rover) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New places a rover on g.
func New(g *grid.Grid, opts ...Option) (*Rover, error) {
	if g == nil {
		return nil, ErrUnboundGrid
	}
	r := &Rover{
		grid:      g,
		direction: nav.North,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.direction.Valid() {
		return nil, fmt.Errorf("%w: %d", nav.ErrUnknownDirection, int(r.direction))
	}
	if r.boundsCheck && !g.Contains(r.position) {
		return nil, fmt.Errorf("%w: %v on %v grid", ErrOutOfBounds, r.position, g)
	}
	return r, nil
}

// Position returns the rover's current position.
func (r *Rover) Position() nav.Position {
	return r.position
}

// Direction returns the rover's current direction.
func (r *Rover) Direction() nav.Direction {
	return r.direction
}

// Grid returns the grid the rover is bound to.
func (r *Rover) Grid() *grid.Grid {
	return r.grid
}

func (r *Rover) Strict() bool {
	return r.strict
}

var dispatch = map[Command]func(*Rover){
	CommandLeft:  (*Rover).turnLeft,
	CommandRight: (*Rover).turnRight,
	CommandMove:  (*Rover).move,
}

// Execute applies commands in order. Unknown characters are skipped; a strict
// rover returns an *UnknownCommandsError listing them once the whole string
// has been processed. Applied commands are never rolled back.
func (r *Rover) Execute(commands string) error {
	var rejected []Rejected
	i := 0
	for _, ch := range commands {
		if c, ok := ParseCommand(ch); ok {
			dispatch[c](r)
			if r.observer != nil {
				r.observer(Step{Command: c, Position: r.position, Direction: r.direction})
			}
		} else {
			r.logger.Debug("command ignored", zap.String("char", string(ch)), zap.Int("index", i))
			if r.strict {
				rejected = append(rejected, Rejected{Index: i, Char: ch})
			}
		}
		i++
	}
	if len(rejected) > 0 {
		return &UnknownCommandsError{Rejected: rejected}
	}
	return nil
}

func (r *Rover) turnLeft() {
	r.direction = r.direction.Left()
}

func (r *Rover) turnRight() {
	r.direction = r.direction.Right()
}

// move asks the grid for the next cell; the rover knows nothing about edges.
func (r *Rover) move() {
	r.position = r.grid.NextPosition(r.position, r.direction)
}

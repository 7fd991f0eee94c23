// Package fleet keeps many rovers on shared grids and serialises access to
// each rover so concurrent callers never interleave command strings.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vinser/marsrover/internal/grid"
	"github.com/vinser/marsrover/internal/nav"
	"github.com/vinser/marsrover/internal/observability"
	"github.com/vinser/marsrover/internal/rover"
)

var (
	ErrGridNotFound  = errors.New("grid not found")
	ErrRoverNotFound = errors.New("rover not found")
)

// GridInfo is the public view of a registered grid.
type GridInfo struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// RoverInfo is a snapshot of a rover's state.
type RoverInfo struct {
	ID        string        `json:"id"`
	GridID    string        `json:"gridId"`
	X         int           `json:"x"`
	Y         int           `json:"y"`
	Direction nav.Direction `json:"direction"`
}

// Position returns the snapshot position.
func (ri RoverInfo) Position() nav.Position {
	return nav.Position{X: ri.X, Y: ri.Y}
}

type unit struct {
	mu     sync.Mutex
	id     string
	gridID string
	rover  *rover.Rover
}

func (u *unit) info() RoverInfo {
	p := u.rover.Position()
	return RoverInfo{ID: u.id, GridID: u.gridID, X: p.X, Y: p.Y, Direction: u.rover.Direction()}
}

// Fleet is safe for concurrent use.
type Fleet struct {
	mu          sync.RWMutex
	grids       map[string]*grid.Grid
	rovers      map[string]*unit
	strict      bool
	boundsCheck bool
	logger      *zap.Logger
}

// Option configures a Fleet.
type Option func(*Fleet)

// WithStrict makes every launched rover report unknown commands.
func WithStrict(strict bool) Option {
	return func(f *Fleet) { f.strict = strict }
}

// WithBoundsCheck rejects launches outside the grid.
func WithBoundsCheck(check bool) Option {
	return func(f *Fleet) { f.boundsCheck = check }
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Fleet) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New returns an empty fleet.
func New(opts ...Option) *Fleet {
	f := &Fleet{
		grids:  make(map[string]*grid.Grid),
		rovers: make(map[string]*unit),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateGrid registers a new width x height grid.
func (f *Fleet) CreateGrid(width, height int) (GridInfo, error) {
	g, err := grid.New(width, height)
	if err != nil {
		return GridInfo{}, err
	}
	id := uuid.New().String()

	f.mu.Lock()
	f.grids[id] = g
	f.mu.Unlock()

	observability.GridsActive.Inc()
	f.logger.Info("grid created", zap.String("grid_id", id), zap.Int("width", width), zap.Int("height", height))
	return GridInfo{ID: id, Width: width, Height: height}, nil
}

// Grid returns the grid registered under id.
func (f *Fleet) Grid(id string) (GridInfo, error) {
	f.mu.RLock()
	g, ok := f.grids[id]
	f.mu.RUnlock()
	if !ok {
		return GridInfo{}, fmt.Errorf("%w: %s", ErrGridNotFound, id)
	}
	return GridInfo{ID: id, Width: g.Width(), Height: g.Height()}, nil
}

// Launch places a new rover on the grid gridID.
func (f *Fleet) Launch(gridID string, pos nav.Position, dir nav.Direction) (RoverInfo, error) {
	f.mu.RLock()
	g, ok := f.grids[gridID]
	f.mu.RUnlock()
	if !ok {
		return RoverInfo{}, fmt.Errorf("%w: %s", ErrGridNotFound, gridID)
	}

	id := uuid.New().String()
	r, err := rover.New(g,
		rover.WithPosition(pos),
		rover.WithDirection(dir),
		rover.WithStrict(f.strict),
		rover.WithBoundsCheck(f.boundsCheck),
		rover.WithLogger(f.logger.With(zap.String("rover_id", id))),
		rover.WithObserver(func(s rover.Step) { observability.RecordCommand(s.Command.String()) }),
	)
	if err != nil {
		return RoverInfo{}, err
	}
	u := &unit{id: id, gridID: gridID, rover: r}

	f.mu.Lock()
	f.rovers[id] = u
	f.mu.Unlock()

	observability.RoversActive.Inc()
	f.logger.Info("rover launched", zap.String("rover_id", id), zap.String("grid_id", gridID),
		zap.Stringer("position", pos), zap.Stringer("direction", dir))
	return u.info(), nil
}

func (f *Fleet) unit(id string) (*unit, error) {
	f.mu.RLock()
	u, ok := f.rovers[id]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoverNotFound, id)
	}
	return u, nil
}

// Rover returns a snapshot of the rover registered under id.
func (f *Fleet) Rover(id string) (RoverInfo, error) {
	u, err := f.unit(id)
	if err != nil {
		return RoverInfo{}, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.info(), nil
}

// Rovers returns snapshots of every rover ordered by id.
func (f *Fleet) Rovers() []RoverInfo {
	f.mu.RLock()
	units := make([]*unit, 0, len(f.rovers))
	for _, u := range f.rovers {
		units = append(units, u)
	}
	f.mu.RUnlock()

	infos := make([]RoverInfo, 0, len(units))
	for _, u := range units {
		u.mu.Lock()
		infos = append(infos, u.info())
		u.mu.Unlock()
	}
	slices.SortFunc(infos, func(a, b RoverInfo) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return infos
}

// Execute runs commands on rover id and returns its state afterwards. For a
// strict fleet the returned error may be a *rover.UnknownCommandsError, in
// which case the returned state is still valid.
func (f *Fleet) Execute(ctx context.Context, id, commands string) (RoverInfo, error) {
	u, err := f.unit(id)
	if err != nil {
		return RoverInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return RoverInfo{}, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	execErr := u.rover.Execute(commands)
	observability.RecordIgnored(countUnknown(commands))

	info := u.info()
	f.logger.Debug("commands executed", zap.String("rover_id", id), zap.String("commands", commands),
		zap.Stringer("position", info.Position()), zap.Stringer("direction", info.Direction))
	return info, execErr
}

// Remove drops rover id from the fleet.
func (f *Fleet) Remove(id string) error {
	f.mu.Lock()
	_, ok := f.rovers[id]
	delete(f.rovers, id)
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoverNotFound, id)
	}
	observability.RoversActive.Dec()
	f.logger.Info("rover removed", zap.String("rover_id", id))
	return nil
}

func countUnknown(commands string) int {
	known := 0
	for _, ch := range commands {
		if _, ok := rover.ParseCommand(ch); ok {
			known++
		}
	}
	return utf8.RuneCountInString(commands) - known
}

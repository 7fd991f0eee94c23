package flags

import (
	"fmt"
	"io"
	"strings"

	"github.com/vinser/marsrover/internal/nav"
)

const (
	DefaultWidth    = 100
	DefaultHeight   = 100
	DefaultCommands = "RMMMLM"
)

// Flags stores the parsed command-line options
type Flags struct {
	Width       int
	Height      int
	X           int
	Y           int
	Direction   nav.Direction
	Commands    string
	Strict      bool
	CheckBounds bool
	Interactive bool
	Mute        bool
	Reset       bool

	fsv *FlagSetWithVisit
}

// Parse parses command-line arguments (without the program name). Usage and
// parse errors are written to output.
func Parse(name string, args []string, output io.Writer) (*Flags, error) {
	var fl Flags
	var dir string

	fsv := NewFlagSetWithVisit(name, output)
	fsv.IntVar(&fl.Width, "width", "W", DefaultWidth, "Grid width")
	fsv.IntVar(&fl.Height, "height", "H", DefaultHeight, "Grid height")
	fsv.IntVar(&fl.X, "x", "", 0, "Start X coordinate")
	fsv.IntVar(&fl.Y, "y", "", 0, "Start Y coordinate")
	fsv.StringVar(&dir, "dir", "d", "N", "Start direction: N, E, S or W")
	fsv.StringVar(&fl.Commands, "commands", "c", DefaultCommands, "Commands to run: L, R, M")
	fsv.BoolVar(&fl.Strict, "strict", "s", false, "Report unknown command characters")
	fsv.BoolVar(&fl.CheckBounds, "check-bounds", "", false, "Reject a start position outside the grid")
	fsv.BoolVar(&fl.Interactive, "interactive", "i", false, "Drive the rover in the terminal")
	fsv.BoolVar(&fl.Mute, "mute", "m", false, "Mute all sounds")
	fsv.BoolVar(&fl.Reset, "reset", "r", false, "Forget the saved session")

	if err := fsv.Parse(args); err != nil {
		return nil, err
	}
	if rest := fsv.Args(); len(rest) > 0 {
		fmt.Fprintf(output, "Unexpected arguments: %s\n", strings.Join(rest, " "))
		fsv.Usage()
		return nil, fmt.Errorf("unexpected arguments: %q", rest)
	}

	d, err := nav.ParseDirection(dir)
	if err != nil {
		fmt.Fprintf(output, "Invalid direction: %s. Use 'N', 'E', 'S' or 'W'.\n", dir)
		fsv.Usage()
		return nil, err
	}
	fl.Direction = d
	fl.fsv = fsv
	return &fl, nil
}

// IsSet reports whether the named flag was given on the command line.
func (f *Flags) IsSet(name string) bool {
	return f.fsv != nil && f.fsv.IsCustom(name)
}

// Start returns the start position given by -x and -y.
func (f *Flags) Start() nav.Position {
	return nav.Position{X: f.X, Y: f.Y}
}

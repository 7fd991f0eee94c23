package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/vinser/marsrover/internal/app"
	"github.com/vinser/marsrover/internal/flags"
	"github.com/vinser/marsrover/internal/grid"
	"github.com/vinser/marsrover/internal/observability"
	"github.com/vinser/marsrover/internal/rover"
	"github.com/vinser/marsrover/internal/sound"
	"github.com/vinser/marsrover/internal/state"
)

// Exit codes
const (
	exitOK       = 0
	exitInvalid  = 1 // bad flags, grid or start position
	exitRejected = 2 // strict mode skipped unknown commands
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fl, err := flags.Parse("marsrover", args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitInvalid
	}
	if fl.Interactive {
		return interactive(fl, stderr)
	}

	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return exitInvalid
	}
	defer func() { _ = logger.Sync() }()
	return drive(fl, logger, stdout, stderr)
}

// drive runs the command string once and prints where the rover ended up.
func drive(fl *flags.Flags, logger *zap.Logger, stdout, stderr io.Writer) int {
	g, err := grid.New(fl.Width, fl.Height)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitInvalid
	}
	r, err := rover.New(g,
		rover.WithPosition(fl.Start()),
		rover.WithDirection(fl.Direction),
		rover.WithStrict(fl.Strict),
		rover.WithBoundsCheck(fl.CheckBounds),
		rover.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitInvalid
	}

	err = r.Execute(fl.Commands)
	fmt.Fprintf(stdout, "Rover Position: %s\n", r.Position())

	var uce *rover.UnknownCommandsError
	if errors.As(err, &uce) {
		fmt.Fprintf(stderr, "Error: %v\n", uce)
		return exitRejected
	}
	return exitOK
}

// interactive drives the rover in the terminal until the user quits.
func interactive(fl *flags.Flags, stderr io.Writer) int {
	dir, err := state.Dir()
	if err != nil {
		fmt.Fprintf(stderr, "config dir: %v\n", err)
		return exitInvalid
	}
	logger, err := observability.NewFileLogger(filepath.Join(dir, "marsrover.log"))
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return exitInvalid
	}
	defer func() { _ = logger.Sync() }()

	var saved *state.Session
	if fl.Reset {
		if err := state.Reset(); err != nil {
			logger.Warn("reset session", zap.Error(err))
		}
	} else {
		saved = state.Load()
	}

	sm := initializeSound(fl.Mute, logger)
	defer sm.Close()

	m, err := app.New(app.Options{
		Flags:  fl,
		Saved:  saved,
		Sound:  sm,
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitInvalid
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("program", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitInvalid
	}
	return exitOK
}

// initializeSound creates and loads a sound manager. It returns nil when
// sound is muted from the start or the audio backend is unavailable; a nil
// manager plays nothing.
func initializeSound(mute bool, logger *zap.Logger) *sound.Manager {
	if mute {
		return nil
	}
	sm, err := sound.NewManager(sound.CommonSampleRate)
	if err != nil {
		logger.Warn("sound disabled", zap.Error(err))
		return nil
	}
	if err := sm.LoadSamples(); err != nil {
		logger.Warn("sound disabled", zap.Error(err))
		sm.Close()
		return nil
	}
	return sm
}

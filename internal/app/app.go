// Package app is the top-level bubbletea model of the interactive rover.
package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/vinser/marsrover/internal/flags"
	"github.com/vinser/marsrover/internal/grid"
	"github.com/vinser/marsrover/internal/model/help"
	"github.com/vinser/marsrover/internal/model/play"
	"github.com/vinser/marsrover/internal/model/quit"
	"github.com/vinser/marsrover/internal/sound"
	"github.com/vinser/marsrover/internal/state"
)

type status uint

const (
	statusDriving status = iota
	statusHelp
	statusQuitting
)

const (
	helpWidth  = 72
	helpHeight = 30
)

type Model struct {
	status  status
	session *state.Session
	saver   func(*state.Session) error
	sound   *sound.Manager
	logger  *zap.Logger
	// models
	play play.Model
	help help.Model
	quit quit.Model
	// terminal size cache
	termWidth  int
	termHeight int
}

// Options configure New.
type Options struct {
	Flags  *flags.Flags
	Saved  *state.Session             // restored session, nil if none
	Sound  *sound.Manager             // nil runs silently
	Logger *zap.Logger
	SaveFn func(*state.Session) error // defaults to (*state.Session).Save
}

// New resolves the session from flags and the saved state and places the rover.
func New(opts Options) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := Resolve(opts.Flags, opts.Saved)
	if s.Mute {
		opts.Sound.Mute()
	} else {
		opts.Sound.Unmute()
	}

	g, err := grid.New(s.GridWidth, s.GridHeight)
	if err != nil {
		return Model{}, err
	}
	p, err := play.New(play.Config{
		Grid:        g,
		Start:       s.Position(),
		Direction:   s.Direction,
		Strict:      s.Strict,
		CheckBounds: opts.Flags.CheckBounds,
		History:     s.History,
	}, opts.Sound, logger)
	if err != nil {
		return Model{}, err
	}

	saver := opts.SaveFn
	if saver == nil {
		saver = (*state.Session).Save
	}
	logger.Info("session started",
		zap.Stringer("grid", g),
		zap.Stringer("position", s.Position()),
		zap.Stringer("direction", s.Direction),
		zap.Bool("restored", opts.Saved != nil),
	)
	return Model{
		status:  statusDriving,
		session: s,
		saver:   saver,
		sound:   opts.Sound,
		logger:  logger,
		play:    p,
	}, nil
}

// Resolve merges the command line with a saved session: flags given
// explicitly win, everything else comes from the saved session when there is
// one, and from the flag defaults otherwise.
func Resolve(fl *flags.Flags, saved *state.Session) *state.Session {
	s := &state.Session{
		GridWidth:  fl.Width,
		GridHeight: fl.Height,
		X:          fl.X,
		Y:          fl.Y,
		Direction:  fl.Direction,
		Strict:     fl.Strict,
		Mute:       fl.Mute,
	}
	if saved == nil || fl.Reset {
		return s
	}
	pick := func(name string, dst *int, v int) {
		if !fl.IsSet(name) {
			*dst = v
		}
	}
	pick("width", &s.GridWidth, saved.GridWidth)
	pick("height", &s.GridHeight, saved.GridHeight)
	pick("x", &s.X, saved.X)
	pick("y", &s.Y, saved.Y)
	if !fl.IsSet("dir") {
		s.Direction = saved.Direction
	}
	if !fl.IsSet("strict") {
		s.Strict = saved.Strict
	}
	if !fl.IsSet("mute") {
		s.Mute = saved.Mute
	}
	s.History = append([]string(nil), saved.History...)
	s.Moves = saved.Moves
	return s
}

func (m Model) Init() tea.Cmd {
	return m.play.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.status != statusQuitting {
			switch msg.String() {
			case "ctrl+c":
				return m.startQuit()
			case "q":
				if !m.play.Typing() {
					return m.startQuit()
				}
			case "s":
				if !m.play.Typing() {
					m.session.Mute = !m.session.Mute
					if m.session.Mute {
						m.sound.Mute()
					} else {
						m.sound.Unmute()
					}
					return m, nil
				}
			}
		}
	case tea.WindowSizeMsg:
		// Always remember the latest terminal size
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		switch m.status {
		case statusDriving:
			m.play, cmd = m.play.Update(play.WindowSizeMsg{Width: msg.Width, Height: msg.Height})
			cmds = append(cmds, cmd)
		case statusHelp:
			m.help.SetSize(msg.Width, msg.Height)
		case statusQuitting:
			m.quit.SetSize(msg.Width, msg.Height)
		}
		cmds = append(cmds, tea.ClearScreen)
		return m, tea.Batch(cmds...)
	}

	switch m.status {
	case statusDriving:
		switch msg.(type) {
		case play.ShowHelpMsg:
			h, err := help.New(helpWidth, helpHeight)
			if err != nil {
				m.logger.Error("help page", zap.Error(err))
				return m, nil
			}
			m.help = h
			m.help.SetSize(m.termWidth, m.termHeight)
			m.status = statusHelp
		default:
			m.play, cmd = m.play.Update(msg)
		}
		cmds = append(cmds, cmd)
	case statusHelp:
		switch msg.(type) {
		case help.CloseHelpMsg:
			m.status = statusDriving
		default:
			m.help, cmd = m.help.Update(msg)
		}
		cmds = append(cmds, cmd)
	case statusQuitting:
		switch msg.(type) {
		case quit.TimedoutMsg:
			return m, tea.Quit
		default:
			m.quit, cmd = m.quit.Update(msg)
		}
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// startQuit saves the session and shows the quit screen.
func (m Model) startQuit() (tea.Model, tea.Cmd) {
	r := m.play.Rover()
	m.session.SetPosition(r.Position(), r.Direction())
	m.session.History = nil
	for _, line := range m.play.History() {
		m.session.Remember(line)
	}
	m.session.Moves += m.play.Moves()

	err := m.saver(m.session)
	if err != nil {
		m.logger.Error("save session", zap.Error(err))
	} else {
		m.logger.Info("session saved",
			zap.Stringer("position", r.Position()),
			zap.Stringer("direction", r.Direction()),
			zap.Int("moves", m.session.Moves),
		)
	}

	m.status = statusQuitting
	m.quit = quit.New(r.Position(), r.Direction(), err)
	m.quit.SetSize(m.termWidth, m.termHeight)
	return m, m.quit.Init()
}

// Session returns the session as it stands now.
func (m Model) Session() *state.Session {
	return m.session
}

func (m Model) View() string {
	switch m.status {
	case statusDriving:
		return m.play.View()
	case statusHelp:
		return m.help.View()
	case statusQuitting:
		return m.quit.View()
	}
	return ""
}

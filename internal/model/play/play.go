package play

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vinser/marsrover/internal/grid"
	"github.com/vinser/marsrover/internal/nav"
	"github.com/vinser/marsrover/internal/render"
	"github.com/vinser/marsrover/internal/rover"
	"github.com/vinser/marsrover/internal/sound"
	"github.com/vinser/marsrover/internal/style"
)

const (
	headerRows  = 2
	footerRows  = 4 // prompt, status, blank, key hints
	promptLimit = 256
)

// TerminalDimensions holds the terminal size information
type TerminalDimensions struct {
	Width  int
	Height int
}

// WindowSizeMsg is a message sent when the terminal is resized.
type WindowSizeMsg struct {
	Width  int
	Height int
}

// ShowHelpMsg asks the application to open the help page.
type ShowHelpMsg struct{}

func showHelpCmd() tea.Cmd {
	return func() tea.Msg {
		return ShowHelpMsg{}
	}
}

// Config describes the rover the play model drives.
type Config struct {
	Grid        *grid.Grid
	Start       nav.Position
	Direction   nav.Direction
	Strict      bool
	CheckBounds bool
	History     []string
}

type Model struct {
	rover    *rover.Rover
	tracker  *tracker
	prompt   textinput.Model
	typing   bool
	history  []string
	histIdx  int
	status   string
	warn     bool
	terminal TerminalDimensions
	logger   *zap.Logger
}

// New places the rover and returns a play model driving it. sm may be nil.
func New(cfg Config, sm *sound.Manager, logger *zap.Logger) (Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &tracker{
		grid:  cfg.Grid,
		sound: sm,
		trail: make(map[nav.Position]int),
	}
	if cfg.Grid != nil {
		t.last = cfg.Grid.Wrap(cfg.Start)
	}
	r, err := rover.New(cfg.Grid,
		rover.WithPosition(cfg.Start),
		rover.WithDirection(cfg.Direction),
		rover.WithStrict(cfg.Strict),
		rover.WithBoundsCheck(cfg.CheckBounds),
		rover.WithObserver(t.observe),
		rover.WithLogger(logger),
	)
	if err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "LMR..."
	ti.CharLimit = promptLimit
	ti.Width = 40
	ti.PromptStyle = style.Prompt

	history := append([]string(nil), cfg.History...)
	return Model{
		rover:    r,
		tracker:  t,
		prompt:   ti,
		history:  history,
		histIdx:  len(history),
		terminal: TerminalDimensions{Width: 80, Height: 24},
		logger:   logger,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

var keyCommands = map[string]string{
	"l":     "L",
	"left":  "L",
	"r":     "R",
	"right": "R",
	"m":     "M",
	"up":    "M",
	" ":     "M",
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case WindowSizeMsg:
		m.terminal = TerminalDimensions(msg)
		m.prompt.Width = max(m.terminal.Width-lipgloss.Width(m.prompt.Prompt)-2, 10)
		return m, nil
	case tea.KeyMsg:
		if m.typing {
			return m.updatePrompt(msg)
		}
		if line, ok := keyCommands[msg.String()]; ok {
			m.run(line)
			return m, nil
		}
		switch msg.String() {
		case ":", "enter":
			m.typing = true
			m.histIdx = len(m.history)
			m.prompt.SetValue("")
			return m, m.prompt.Focus()
		case "?":
			return m, showHelpCmd()
		}
		return m, nil
	}
	if m.typing {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		line := m.prompt.Value()
		m.typing = false
		m.prompt.Blur()
		m.prompt.SetValue("")
		if line == "" {
			return m, nil
		}
		m.remember(line)
		m.run(line)
		return m, nil
	case tea.KeyEsc:
		m.typing = false
		m.prompt.Blur()
		m.prompt.SetValue("")
		return m, nil
	case tea.KeyUp:
		if m.histIdx > 0 {
			m.histIdx--
			m.prompt.SetValue(m.history[m.histIdx])
			m.prompt.CursorEnd()
		}
		return m, nil
	case tea.KeyDown:
		if m.histIdx < len(m.history) {
			m.histIdx++
		}
		if m.histIdx == len(m.history) {
			m.prompt.SetValue("")
		} else {
			m.prompt.SetValue(m.history[m.histIdx])
		}
		m.prompt.CursorEnd()
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) remember(line string) {
	if n := len(m.history); n > 0 && m.history[n-1] == line {
		return
	}
	m.history = append(m.history, line)
}

// run executes a command line and records the outcome in the status line.
func (m *Model) run(line string) {
	err := m.rover.Execute(line)
	m.warn = false
	m.status = fmt.Sprintf("ran %q, now at %s", line, m.rover.Position())

	var uce *rover.UnknownCommandsError
	switch {
	case errors.As(err, &uce):
		m.warn = true
		m.status = "skipped " + describeRejected(uce.Rejected)
		m.tracker.play(sound.REJECT)
		m.logger.Info("unknown commands rejected", zap.String("commands", line), zap.Int("count", len(uce.Rejected)))
	case err != nil:
		m.warn = true
		m.status = err.Error()
		m.logger.Error("execute", zap.Error(err))
	}
	m.logger.Debug("commands executed",
		zap.String("commands", line),
		zap.Stringer("position", m.rover.Position()),
		zap.Stringer("direction", m.rover.Direction()),
	)
}

func describeRejected(rejected []rover.Rejected) string {
	parts := make([]string, 0, len(rejected))
	for _, r := range rejected {
		parts = append(parts, fmt.Sprintf("%q at %d", r.Char, r.Index))
	}
	return strings.Join(parts, ", ")
}

// Rover returns the rover being driven.
func (m Model) Rover() *rover.Rover {
	return m.rover
}

// History returns the command lines entered at the prompt, oldest first.
func (m Model) History() []string {
	return m.history
}

// Moves returns the number of moves made since the model was created.
func (m Model) Moves() int {
	return m.tracker.moves
}

// Typing reports whether the command prompt has focus.
func (m Model) Typing() bool {
	return m.typing
}

// Status returns the last status line and whether it is a warning.
func (m Model) Status() (string, bool) {
	return m.status, m.warn
}

func (m Model) View() string {
	g := m.rover.Grid()
	sb := &strings.Builder{}

	header := fmt.Sprintf("Rover %s facing %s   Grid %s   Moves %d",
		m.rover.Position(), m.rover.Direction().Name(), g, m.tracker.moves)
	if m.rover.Strict() {
		header += "   strict"
	}
	sb.WriteString(style.PlayHeader.Render(header))
	sb.WriteString("\n\n")

	cols := max((m.terminal.Width+1)/2, 1)
	rows := max(m.terminal.Height-headerRows-footerRows, 1)
	sb.WriteString(render.Window(render.Scene{
		Grid:    g,
		Rover:   m.rover.Position(),
		Heading: m.rover.Direction(),
		Trail:   m.tracker.trail,
		Step:    m.tracker.step,
	}, cols, rows))
	sb.WriteString("\n")

	if m.typing {
		sb.WriteString(m.prompt.View())
	} else {
		sb.WriteString(style.Footer.Render("press : to type commands"))
	}
	sb.WriteString("\n")
	if m.warn {
		sb.WriteString(style.Warning.Render(m.status))
	} else {
		sb.WriteString(style.Notice.Render(m.status))
	}
	sb.WriteString("\n\n")
	sb.WriteString(style.Footer.Render("l ← left, r → right, m ↑ move, : command, s sound, ? help, q quit"))
	return sb.String()
}

// tracker follows the rover step by step: it keeps the trail and plays cues.
// It lives behind a pointer so the rover's observer and the model share it.
type tracker struct {
	grid  *grid.Grid
	sound *sound.Manager
	trail map[nav.Position]int // cell → step when the rover left it
	step  int
	moves int
	last  nav.Position
}

func (t *tracker) observe(s rover.Step) {
	t.step++
	if s.Command != rover.CommandMove {
		t.play(sound.TURN)
		return
	}
	t.moves++
	pos := t.grid.Wrap(s.Position)
	t.trail[t.last] = t.step
	if adjacent(t.last, pos) {
		t.play(sound.MOVE)
	} else {
		t.play(sound.WRAP)
	}
	t.last = pos
	delete(t.trail, pos)
}

func (t *tracker) play(name string) {
	_ = t.sound.Play(name)
}

func adjacent(a, b nav.Position) bool {
	return abs(a.X-b.X)+abs(a.Y-b.Y) == 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

package quit

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vinser/marsrover/internal/nav"
	"github.com/vinser/marsrover/internal/style"
)

const quitPeriod = 2 * time.Second

type Model struct {
	position   nav.Position
	direction  nav.Direction
	saveErr    error
	quitUntil  time.Time
	termWidth  int
	termHeight int
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type TimedoutMsg struct{}

func timedoutCmd() tea.Cmd {
	return func() tea.Msg {
		return TimedoutMsg{}
	}
}

// New shows where the rover stopped and whether the session was saved.
func New(p nav.Position, d nav.Direction, saveErr error) Model {
	return Model{
		position:  p,
		direction: d,
		saveErr:   saveErr,
		quitUntil: time.Now().Add(quitPeriod),
	}
}

func (m *Model) SetSize(width, height int) {
	m.termWidth = width
	m.termHeight = height
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		return m, timedoutCmd()
	}
	if time.Now().After(m.quitUntil) {
		return m, timedoutCmd()
	}
	return m, tick()
}

func (m Model) View() string {
	saved := style.Notice.Render("Session saved.")
	if m.saveErr != nil {
		saved = style.Warning.Render(fmt.Sprintf("Session not saved: %v", m.saveErr))
	}
	view := lipgloss.JoinVertical(lipgloss.Center,
		style.Title.Render(fmt.Sprintf("Rover Position: %s", m.position)),
		style.Footer.Render(fmt.Sprintf("facing %s", m.direction.Name())),
		"",
		saved,
		"Bye!",
	)
	if m.termWidth > 0 && m.termHeight > 0 {
		return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, view)
	}
	return view
}

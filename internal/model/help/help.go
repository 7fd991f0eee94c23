package help

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vinser/marsrover/internal/embeddata"
	"github.com/vinser/marsrover/internal/render"
)

const (
	pageChrome    = 5 // top pattern, title, footer and spacing
	glamourGutter = 2
)

type Model struct {
	width       int
	height      int
	startHeight int
	termWidth   int
	termHeight  int

	viewport viewport.Model
}

type CloseHelpMsg struct{}

func closeHelpCmd() tea.Cmd {
	return func() tea.Msg {
		return CloseHelpMsg{}
	}
}

// New renders the embedded help page into a scrollable viewport.
func New(width, height int) (Model, error) {
	if width < lipgloss.Width(footer) {
		width = lipgloss.Width(footer)
	}
	bytes, err := embeddata.ReadHelpMD()
	if err != nil {
		return Model{}, err
	}

	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()
	vp.SetContent(glamContent(string(bytes), width, vp.Style.GetHorizontalFrameSize(), glamourGutter))

	return Model{
		width:       width,
		height:      height,
		startHeight: height,
		viewport:    vp,
	}, nil
}

func (m *Model) SetSize(width, height int) {
	m.termWidth = width
	m.termHeight = height
	if m.startHeight > m.termHeight-pageChrome {
		m.height = m.termHeight
		m.viewport.Height = max(m.termHeight-pageChrome, 1)
	} else {
		m.height = m.startHeight
		m.viewport.Height = m.startHeight
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "?":
			return m, closeHelpCmd()
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

const footer = "↑ ↓ scroll, esc back, q quit"

func (m Model) View() string {
	return render.Page("Help", m.viewport.View(), footer, m.width, m.height, m.termWidth, m.termHeight)
}

func glamContent(content string, width, frame, gutter int) string {
	renderWidth := width - frame - gutter
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return content
	}
	str, err := r.Render(content)
	if err != nil {
		return content
	}
	return str
}

package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vinser/marsrover/internal/grid"
	"github.com/vinser/marsrover/internal/nav"
	"github.com/vinser/marsrover/internal/style"
)

// Page renders page with title at the top, content block and footer at the bottom
// Style of content leave intact
func Page(title, renderedContent, footer string, width, height, termWidth, termHeight int) string {
	renderedTopPattern := style.TopPattern.Render(strings.Repeat("/", width))
	renderedTitle := style.Title.Render(title)
	renderedFooter := style.Footer.Render(footer)

	// Calculate available height for content after accounting for title and footer
	availableHeight := height - lipgloss.Height(renderedTopPattern) - lipgloss.Height(renderedTitle) - lipgloss.Height(renderedFooter)
	centeredContent := lipgloss.PlaceVertical(availableHeight, lipgloss.Center, renderedContent)

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		renderedTopPattern,
		renderedTitle,
		centeredContent,
		renderedFooter,
	)
	if termWidth > 0 && termHeight > 0 {
		return lipgloss.Place(termWidth, termHeight, lipgloss.Center, lipgloss.Center, view)
	}
	return view
}

const (
	groundGlyph = "."
	trailGlyph  = "•"
)

var roverGlyphs = [...]string{
	nav.North: "▲",
	nav.East:  "▶",
	nav.South: "▼",
	nav.West:  "◀",
}

// RoverGlyph returns the rover sprite facing d.
func RoverGlyph(d nav.Direction) string {
	if !d.Valid() {
		return "?"
	}
	return roverGlyphs[d]
}

// Scene is what a grid window shows.
type Scene struct {
	Grid    *grid.Grid
	Rover   nav.Position
	Heading nav.Direction
	Trail   map[nav.Position]int // cell → step of the last visit
	Step    int                  // current step
}

// Window renders up to cols×rows cells of the grid centred on the rover.
// North is up. The view wraps around the grid edges the same way the rover
// does, so a window on a small grid never shows a cell twice.
func Window(sc Scene, cols, rows int) string {
	cols = min(cols, sc.Grid.Width())
	rows = min(rows, sc.Grid.Height())
	if cols <= 0 || rows <= 0 {
		return ""
	}
	left := sc.Rover.X - cols/2
	bottom := sc.Rover.Y - rows/2

	lines := make([]string, 0, rows)
	for r := rows - 1; r >= 0; r-- {
		cells := make([]string, 0, cols)
		for c := 0; c < cols; c++ {
			p := sc.Grid.Wrap(nav.Position{X: left + c, Y: bottom + r})
			cells = append(cells, cell(sc, p))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func cell(sc Scene, p nav.Position) string {
	if p == sc.Grid.Wrap(sc.Rover) {
		return style.Rover.Render(RoverGlyph(sc.Heading))
	}
	if step, ok := sc.Trail[p]; ok {
		return style.Trail(sc.Step - step).Render(trailGlyph)
	}
	return style.Ground.Render(groundGlyph)
}

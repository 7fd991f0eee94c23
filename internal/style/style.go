package style

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Play screen
	PlayHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))  // Green
	Rover      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226")) // Bright yellow
	Ground     = lipgloss.NewStyle().Foreground(lipgloss.Color("94"))             // Rusty brown
	Prompt     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))            // Orange
	Warning    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))              // Bright red
	Notice     = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))            // Light grey

	// Page styles
	TopPattern = lipgloss.NewStyle().Foreground(lipgloss.Color("166"))            // Mars orange
	Title      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("228")) // Bright yellow
	Content    = lipgloss.NewStyle()
	Footer     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type RGB struct {
	R int
	G int
	B int
}

// TrailFresh is the color of the cell the rover has just left.
var TrailFresh = RGB{255, 140, 60}

// GenerateHexColor generates hexadecimal string for given RGB values. r, g, b should be in the range 0-255
// Format: #RRGGBB
func GenerateHexColor(r, g, b int) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

const (
	brightMin = 64
	fadeStep  = 12
)

// FadeShift dims a color channel by age steps, never going below brightMin
// for channels that started above it. A zero channel stays zero.
func FadeShift(colorNum, age int) int {
	if colorNum == 0 {
		return 0
	}
	faded := colorNum - age*fadeStep
	if faded < brightMin {
		faded = min(colorNum, brightMin)
	}
	return faded
}

// Trail returns the style for a trail cell visited age steps ago.
func Trail(age int) lipgloss.Style {
	if age < 0 {
		age = 0
	}
	c := GenerateHexColor(FadeShift(TrailFresh.R, age), FadeShift(TrailFresh.G, age), FadeShift(TrailFresh.B, age))
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

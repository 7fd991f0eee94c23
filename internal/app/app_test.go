package app

import (
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vinser/marsrover/internal/flags"
	"github.com/vinser/marsrover/internal/model/help"
	"github.com/vinser/marsrover/internal/model/play"
	"github.com/vinser/marsrover/internal/nav"
	"github.com/vinser/marsrover/internal/state"
)

func mustFlags(t *testing.T, args ...string) *flags.Flags {
	t.Helper()
	fl, err := flags.Parse("marsrover", args, io.Discard)
	if err != nil {
		t.Fatalf("flags.Parse(%v) error = %v", args, err)
	}
	return fl
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestResolve_NoSession(t *testing.T) {
	s := Resolve(mustFlags(t, "-W", "10", "-H", "5", "-x", "2", "-d", "E"), nil)
	if s.GridWidth != 10 || s.GridHeight != 5 {
		t.Errorf("grid = %dx%d, want 10x5", s.GridWidth, s.GridHeight)
	}
	if s.Position() != (nav.Position{X: 2}) || s.Direction != nav.East {
		t.Errorf("rover = %v %v", s.Position(), s.Direction)
	}
}

func TestResolve_SessionFillsUnsetFlags(t *testing.T) {
	saved := &state.Session{GridWidth: 20, GridHeight: 30, X: 7, Y: 9, Direction: nav.South, Strict: true, History: []string{"M"}, Moves: 12}
	s := Resolve(mustFlags(t, "-x", "1"), saved)

	if s.GridWidth != 20 || s.GridHeight != 30 {
		t.Errorf("grid = %dx%d, want saved 20x30", s.GridWidth, s.GridHeight)
	}
	if s.X != 1 || s.Y != 9 {
		t.Errorf("position = (%d, %d), want explicit x=1 and saved y=9", s.X, s.Y)
	}
	if s.Direction != nav.South || !s.Strict {
		t.Errorf("direction/strict = %v/%v, want saved S/true", s.Direction, s.Strict)
	}
	if len(s.History) != 1 || s.Moves != 12 {
		t.Errorf("history/moves = %v/%d", s.History, s.Moves)
	}
}

func TestResolve_Reset(t *testing.T) {
	saved := &state.Session{GridWidth: 20, GridHeight: 30, X: 7, Direction: nav.South}
	s := Resolve(mustFlags(t, "-r"), saved)
	if s.GridWidth != flags.DefaultWidth || s.X != 0 || s.Direction != nav.North {
		t.Errorf("reset session = %+v, want flag defaults", s)
	}
}

func newApp(t *testing.T, saved **state.Session, args ...string) Model {
	t.Helper()
	m, err := New(Options{
		Flags: mustFlags(t, args...),
		SaveFn: func(s *state.Session) error {
			if saved != nil {
				*saved = s
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestQuit_SavesSession(t *testing.T) {
	var saved *state.Session
	m := newApp(t, &saved, "-x", "5", "-y", "5")

	for _, k := range "RMMMLM" {
		m, _ = update(m, runes(string(k+'a'-'A')))
	}
	m, cmd := update(m, runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if m.status != statusQuitting {
		t.Fatalf("status = %v, want quitting", m.status)
	}
	if saved == nil {
		t.Fatal("session was not saved")
	}
	if saved.Position() != (nav.Position{X: 8, Y: 6}) || saved.Direction != nav.North {
		t.Errorf("saved rover = %v %v, want (8, 6) N", saved.Position(), saved.Direction)
	}
	if saved.Moves != 4 {
		t.Errorf("saved moves = %d, want 4", saved.Moves)
	}
}

func TestQuit_SaveErrorStillQuits(t *testing.T) {
	m, err := New(Options{
		Flags:  mustFlags(t),
		SaveFn: func(*state.Session) error { return errors.New("read-only") },
	})
	if err != nil {
		t.Fatal(err)
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if m.status != statusQuitting {
		t.Errorf("status = %v, want quitting", m.status)
	}
}

func TestQuitKey_IgnoredWhileTyping(t *testing.T) {
	m := newApp(t, nil)
	m, _ = update(m, runes(":"))
	m, _ = update(m, runes("q"))
	if m.status != statusDriving {
		t.Error("q typed at the prompt should not quit")
	}
}

func TestHelp_OpenAndClose(t *testing.T) {
	m := newApp(t, nil)
	m, _ = update(m, play.ShowHelpMsg{})
	if m.status != statusHelp {
		t.Fatalf("status = %v, want help", m.status)
	}
	m, _ = update(m, help.CloseHelpMsg{})
	if m.status != statusDriving {
		t.Errorf("status = %v, want driving", m.status)
	}
}

func TestMuteToggle(t *testing.T) {
	m := newApp(t, nil)
	m, _ = update(m, runes("s"))
	if !m.Session().Mute {
		t.Error("s should mute")
	}
	m, _ = update(m, runes("s"))
	if m.Session().Mute {
		t.Error("second s should unmute")
	}
}

func TestNew_InvalidGrid(t *testing.T) {
	if _, err := New(Options{Flags: mustFlags(t, "-W", "0")}); err == nil {
		t.Error("New() should fail for a zero-width grid")
	}
}

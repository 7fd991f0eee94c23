package rover

import (
	"errors"
	"fmt"
	"strings"
)

// Command is a single instruction understood by a rover.
type Command byte

const (
	CommandLeft  Command = 'L'
	CommandRight Command = 'R'
	CommandMove  Command = 'M'
)

var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand reports whether r is a recognised command.
func ParseCommand(r rune) (Command, bool) {
	switch c := Command(r); {
	case r > 0x7f:
		return 0, false
	case c == CommandLeft, c == CommandRight, c == CommandMove:
		return c, true
	}
	return 0, false
}

func (c Command) String() string {
	switch c {
	case CommandLeft:
		return "left"
	case CommandRight:
		return "right"
	case CommandMove:
		return "move"
	}
	return "unknown"
}

// Rejected is a skipped command character and its rune index in the input.
type Rejected struct {
	Index int
	Char  rune
}

// UnknownCommandsError lists the characters a strict rover skipped.
type UnknownCommandsError struct {
	Rejected []Rejected
}

func (e *UnknownCommandsError) Error() string {
	var sb strings.Builder
	for i, r := range e.Rejected {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q at %d", r.Char, r.Index)
	}
	return fmt.Sprintf("%s: %s", ErrUnknownCommand, sb.String())
}

func (e *UnknownCommandsError) Is(target error) bool {
	return target == ErrUnknownCommand
}

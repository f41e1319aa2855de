package session

import (
	"context"
	"fmt"

	"github.com/roach88/sortviz/internal/ir"
)

// CommandType names a control surface command.
type CommandType string

const (
	CommandGenerate          CommandType = "generate"
	CommandStart             CommandType = "start"
	CommandTogglePause       CommandType = "toggle-pause"
	CommandStop              CommandType = "stop"
	CommandSetSpeed          CommandType = "set-speed"
	CommandSetSize           CommandType = "set-size"
	CommandToggleShowNumbers CommandType = "toggle-numbers"
)

// Command is one control message. Algorithm is used by start, Value by
// set-speed and set-size.
type Command struct {
	Type      CommandType
	Algorithm ir.Algorithm
	Value     int
}

// Dispatch executes a command.
func (s *Session) Dispatch(ctx context.Context, cmd Command) error {
	switch cmd.Type {
	case CommandGenerate:
		return s.GenerateNewArray()
	case CommandStart:
		_, err := s.Start(ctx, cmd.Algorithm)
		return err
	case CommandTogglePause:
		_, err := s.TogglePause()
		return err
	case CommandStop:
		return s.Stop()
	case CommandSetSpeed:
		return s.SetSpeed(cmd.Value)
	case CommandSetSize:
		return s.SetSize(cmd.Value)
	case CommandToggleShowNumbers:
		s.ToggleShowNumbers()
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
}

package power

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"codeberg.org/mutker/sysmond/internal/errors"
)

// Shutdowner powers the host off.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ShutdownFunc adapts a function to Shutdowner.
type ShutdownFunc func(ctx context.Context) error

func (f ShutdownFunc) Shutdown(ctx context.Context) error {
	return f(ctx)
}

// CommandShutdowner runs an external command, e.g. "poweroff".
type CommandShutdowner struct {
	Command []string
}

func NewCommandShutdowner(command []string) *CommandShutdowner {
	return &CommandShutdowner{Command: append([]string(nil), command...)}
}

func (s *CommandShutdowner) Shutdown(ctx context.Context) error {
	errFactory := errors.New()

	if len(s.Command) == 0 {
		return errFactory.New(ErrNoCommand)
	}

	cmd := exec.CommandContext(ctx, s.Command[0], s.Command[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errFactory.Wrap(ErrShutdownCommand, fmt.Errorf("%s: %w: %s",
			strings.Join(s.Command, " "), err, strings.TrimSpace(string(out))))
	}

	return nil
}

package gpio

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// ExecActuator drives the line by invoking the gpio utility once per
// operation. A zero exit status is success.
type ExecActuator struct {
	command string
	pin     string
	timeout time.Duration
	run     Runner
}

// NewExecActuator creates an actuator for the given utility and pin.
// Empty command and non-positive timeout select the defaults.
func NewExecActuator(command string, pin int, timeout time.Duration) *ExecActuator {
	if command == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecActuator{
		command: command,
		pin:     strconv.Itoa(pin),
		timeout: timeout,
		run:     runCommand,
	}
}

// WithRunner replaces the command runner. Used by tests.
func (a *ExecActuator) WithRunner(r Runner) *ExecActuator {
	a.run = r
	return a
}

// Init runs "gpio mode <pin> output".
func (a *ExecActuator) Init(ctx context.Context) error {
	if err := a.exec(ctx, "mode", a.pin, "output"); err != nil {
		return fmt.Errorf("%w: %w", ErrInit, err)
	}
	return nil
}

// Set runs "gpio write <pin> 0|1".
func (a *ExecActuator) Set(ctx context.Context, on bool) error {
	if err := a.exec(ctx, "write", a.pin, strconv.Itoa(level(on))); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Release runs "gpio mode <pin> input".
func (a *ExecActuator) Release(ctx context.Context) error {
	if err := a.exec(ctx, "mode", a.pin, "input"); err != nil {
		return fmt.Errorf("%w: %w", ErrRelease, err)
	}
	return nil
}

func (a *ExecActuator) exec(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out, err := a.run(ctx, a.command, args...)
	if err != nil {
		cmdline := a.command + " " + strings.Join(args, " ")
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w (%s)", cmdline, err, msg)
		}
		return fmt.Errorf("%s: %w", cmdline, err)
	}
	return nil
}

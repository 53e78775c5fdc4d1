// Package gpio drives the fan output line with hardware abstraction.
// Backends shell out to the gpio utility, use the Linux GPIO character
// device, or map the BCM2835 registers directly. The fake implementation
// allows testing without hardware.
package gpio

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Errors wrapped by every backend, one per lifecycle operation.
var (
	ErrInit    = errors.New("actuator init failed")
	ErrWrite   = errors.New("actuator write failed")
	ErrRelease = errors.New("actuator release failed")
)

// Actuator drives a binary output line.
type Actuator interface {
	// Init configures the line as an output. Called once before any Set.
	Init(ctx context.Context) error

	// Set writes the level for on. Safe to call every cycle with an
	// unchanged value.
	Set(ctx context.Context, on bool) error

	// Release returns the line to input mode. Called once during shutdown.
	Release(ctx context.Context) error
}

// Backend names accepted by New.
const (
	BackendExec = "exec"     // gpio command-line utility
	BackendChip = "gpiocdev" // Linux GPIO character device
	BackendRpio = "rpio"     // memory-mapped BCM2835 registers
)

// Defaults
const (
	DefaultPin     = 1
	DefaultCommand = "/usr/bin/gpio"
	DefaultChip    = "gpiochip0"
	DefaultTimeout = 5 * time.Second
)

// Options selects and configures a backend.
// Pin numbering is backend specific: WiringPi numbers for the gpio utility,
// line offsets on Chip for gpiocdev, BCM numbers for rpio.
type Options struct {
	Backend string
	Pin     int
	Command string        // exec only
	Timeout time.Duration // exec only, per command
	Chip    string        // gpiocdev only
}

// New returns the actuator for opts.Backend. Hardware is not touched until
// Init is called.
func New(opts Options) (Actuator, error) {
	switch opts.Backend {
	case BackendExec, "":
		return NewExecActuator(opts.Command, opts.Pin, opts.Timeout), nil
	case BackendChip:
		a, err := NewChipActuator(opts.Chip, opts.Pin)
		if err != nil {
			return nil, err
		}
		return a, nil
	case BackendRpio:
		a, err := NewRpioActuator(opts.Pin)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown gpio backend %q", opts.Backend)
	}
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}

//go:build linux

package gpio

import (
	"context"
	"fmt"

	"github.com/stianeikeland/go-rpio"
)

// RpioActuator drives a BCM-numbered pin through /dev/gpiomem.
type RpioActuator struct {
	pin    rpio.Pin
	opened bool
}

// NewRpioActuator creates an actuator for the BCM pin.
func NewRpioActuator(pin int) (*RpioActuator, error) {
	if pin < 0 || pin > 53 {
		return nil, fmt.Errorf("rpio: pin %d out of range", pin)
	}
	return &RpioActuator{pin: rpio.Pin(pin)}, nil
}

// Init maps the GPIO registers and sets the pin as a low output.
func (a *RpioActuator) Init(ctx context.Context) error {
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("%w: open gpio memory: %w", ErrInit, err)
	}
	a.opened = true
	a.pin.Output()
	a.pin.Low()
	return nil
}

// Set writes the level for on.
func (a *RpioActuator) Set(ctx context.Context, on bool) error {
	if !a.opened {
		return fmt.Errorf("%w: pin %d not initialised", ErrWrite, a.pin)
	}
	if on {
		a.pin.Write(rpio.High)
	} else {
		a.pin.Write(rpio.Low)
	}
	return nil
}

// Release sets the pin back to input and unmaps the registers.
func (a *RpioActuator) Release(ctx context.Context) error {
	if !a.opened {
		return nil
	}
	a.pin.Input()
	a.opened = false
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("%w: close gpio memory: %w", ErrRelease, err)
	}
	return nil
}

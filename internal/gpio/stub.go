//go:build !linux

package gpio

import (
	"context"
	"errors"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// ChipActuator is not available on non-Linux platforms.
type ChipActuator struct{}

// NewChipActuator returns an error on non-Linux platforms.
func NewChipActuator(chip string, offset int) (*ChipActuator, error) {
	return nil, errUnsupported
}

// Init is not implemented on non-Linux platforms.
func (a *ChipActuator) Init(ctx context.Context) error {
	return errors.Join(ErrInit, errUnsupported)
}

// Set is not implemented on non-Linux platforms.
func (a *ChipActuator) Set(ctx context.Context, on bool) error {
	return errors.Join(ErrWrite, errUnsupported)
}

// Release is not implemented on non-Linux platforms.
func (a *ChipActuator) Release(ctx context.Context) error {
	return nil
}

// RpioActuator is not available on non-Linux platforms.
type RpioActuator struct{}

// NewRpioActuator returns an error on non-Linux platforms.
func NewRpioActuator(pin int) (*RpioActuator, error) {
	return nil, errUnsupported
}

// Init is not implemented on non-Linux platforms.
func (a *RpioActuator) Init(ctx context.Context) error {
	return errors.Join(ErrInit, errUnsupported)
}

// Set is not implemented on non-Linux platforms.
func (a *RpioActuator) Set(ctx context.Context, on bool) error {
	return errors.Join(ErrWrite, errUnsupported)
}

// Release is not implemented on non-Linux platforms.
func (a *RpioActuator) Release(ctx context.Context) error {
	return nil
}

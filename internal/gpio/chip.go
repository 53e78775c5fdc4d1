//go:build linux

package gpio

import (
	"context"
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// ChipActuator drives the line through the Linux GPIO character device.
type ChipActuator struct {
	chipName string
	offset   int
	chip     *gpiocdev.Chip
	line     *gpiocdev.Line
}

// NewChipActuator creates an actuator for a line offset on the named chip.
// An empty chip name selects DefaultChip.
func NewChipActuator(chip string, offset int) (*ChipActuator, error) {
	if chip == "" {
		chip = DefaultChip
	}
	return &ChipActuator{chipName: chip, offset: offset}, nil
}

// Init opens the chip and requests the line as an output, initially low.
func (a *ChipActuator) Init(ctx context.Context) error {
	chip, err := gpiocdev.NewChip(a.chipName, gpiocdev.WithConsumer("fanctl"))
	if err != nil {
		return fmt.Errorf("%w: open gpio chip %s: %w", ErrInit, a.chipName, err)
	}

	line, err := chip.RequestLine(a.offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return fmt.Errorf("%w: request line %d: %w", ErrInit, a.offset, err)
	}

	a.chip = chip
	a.line = line
	return nil
}

// Set drives the line high for on and low for off.
func (a *ChipActuator) Set(ctx context.Context, on bool) error {
	if a.line == nil {
		return fmt.Errorf("%w: line %d not requested", ErrWrite, a.offset)
	}
	if err := a.line.SetValue(level(on)); err != nil {
		return fmt.Errorf("%w: set line %d: %w", ErrWrite, a.offset, err)
	}
	return nil
}

// Release reconfigures the line as an input before closing it, so the pin
// is left in its boot default rather than driving the fan.
func (a *ChipActuator) Release(ctx context.Context) error {
	var errs []error

	if a.line != nil {
		if err := a.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line %d: %w", a.offset, err))
		}
		if err := a.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", a.offset, err))
		}
		a.line = nil
	}
	if a.chip != nil {
		if err := a.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		a.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrRelease, errors.Join(errs...))
	}
	return nil
}

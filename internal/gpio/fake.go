package gpio

import (
	"context"
	"fmt"
)

// FakeActuator is a test double that records every operation.
type FakeActuator struct {
	// Calls records operations in order: "init", "set:on", "set:off", "release".
	Calls []string

	// States records the value of every successful Set call.
	States []bool

	// Initialized is true after a successful Init.
	Initialized bool

	// Releases counts calls to Release.
	Releases int

	// InitError, SetError and ReleaseError, if set, are returned by the
	// corresponding operation.
	InitError    error
	SetError     error
	ReleaseError error
}

// NewFakeActuator creates a FakeActuator for testing.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// Init records the call and marks the actuator initialized.
func (f *FakeActuator) Init(ctx context.Context) error {
	f.Calls = append(f.Calls, "init")
	if f.InitError != nil {
		return f.InitError
	}
	f.Initialized = true
	return nil
}

// Set records the requested state.
func (f *FakeActuator) Set(ctx context.Context, on bool) error {
	f.Calls = append(f.Calls, "set:"+onOff(on))
	if f.SetError != nil {
		return f.SetError
	}
	if !f.Initialized {
		return fmt.Errorf("%w: set before init", ErrWrite)
	}
	f.States = append(f.States, on)
	return nil
}

// Release records the call.
func (f *FakeActuator) Release(ctx context.Context) error {
	f.Calls = append(f.Calls, "release")
	f.Releases++
	f.Initialized = false
	return f.ReleaseError
}

// Reset clears recorded calls and injected errors.
func (f *FakeActuator) Reset() {
	*f = FakeActuator{}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

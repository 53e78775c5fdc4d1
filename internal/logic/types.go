// Package logic contains the pure control logic for the fan controller.
// This package has NO external dependencies (no GPIO, sysfs, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"errors"
	"time"
)

// ErrEmptyWindow is returned when an average is requested before any sample
// has been pushed.
var ErrEmptyWindow = errors.New("sample window is empty")

// State represents the logical state of the fan.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// Thresholds configures the hysteresis band and smoothing window.
type Thresholds struct {
	Max     float64 // trip when the average rises strictly above Max
	Min     float64 // release when the average falls to or below Min
	Samples int     // window capacity
}

// Input represents a single temperature reading.
type Input struct {
	Temp float64 // degrees Celsius
	Time time.Time
}

// Decision is the outcome of one control cycle.
type Decision struct {
	Time    time.Time
	Samples []float64 // window contents after the push, oldest first
	Average float64
	Target  float64 // valid only when Armed
	Armed   bool
	Fan     State
}

// FanOn reports whether the fan should be running.
func (d Decision) FanOn() bool {
	return d.Fan == StateOn
}

// Counts tracks cycles and fan transitions since startup.
type Counts struct {
	Cycles int
	FanOn  int
	FanOff int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}

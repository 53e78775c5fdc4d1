// Package status keeps a point-in-time view of the fan controller for the
// lifecycle events written to the log.
package status

import (
	"time"

	"github.com/sweeney/fanctl/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	TemMax         float64
	TemMin         float64
	SampleMax      int
	SamplePeriodMs int64
	HeartbeatMs    int64
	Backend        string
	Pin            int
	SensorPath     string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and stays valid after the tracker has moved on.
type Snapshot struct {
	Fan         logic.State
	Samples     []float64
	Average     float64
	HasAverage  bool
	Target      float64
	Armed       bool
	Counts      logic.Counts
	LastReading time.Time
	StartTime   time.Time
	Now         time.Time
	Config      Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds the latest controller state. Not safe for concurrent use;
// the control loop is its only writer and reader.
type Tracker struct {
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the outcome of a control cycle.
func (t *Tracker) Update(d logic.Decision, counts logic.Counts) {
	t.snap.Fan = d.Fan
	t.snap.Samples = append(t.snap.Samples[:0], d.Samples...)
	t.snap.Average = d.Average
	t.snap.HasAverage = true
	t.snap.Target = d.Target
	t.snap.Armed = d.Armed
	t.snap.Counts = counts
	t.snap.LastReading = d.Time
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	s := t.snap
	s.Samples = append([]float64(nil), t.snap.Samples...)
	s.Now = time.Now()
	return s
}

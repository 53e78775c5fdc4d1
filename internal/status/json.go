package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Fan           string     `json:"fan"`
	Samples       []float64  `json:"samples"`
	Average       *float64   `json:"average,omitempty"`
	Target        *float64   `json:"target"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// CountsJSON is the JSON representation of cycle and transition counts.
type CountsJSON struct {
	Cycles int `json:"cycles"`
	FanOn  int `json:"fan_on"`
	FanOff int `json:"fan_off"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TemMax         float64 `json:"tem_max"`
	TemMin         float64 `json:"tem_min"`
	SampleMax      int     `json:"sample_max"`
	SamplePeriodMs int64   `json:"sample_period_ms"`
	HeartbeatMs    int64   `json:"heartbeat_ms"`
	Backend        string  `json:"backend"`
	Pin            int     `json:"pin"`
	SensorPath     string  `json:"sensor_path"`
}

func buildInner(snap Snapshot) StatusInner {
	fan := string(snap.Fan)
	if fan == "" {
		fan = "UNKNOWN"
	}

	samples := snap.Samples
	if samples == nil {
		samples = []float64{}
	}

	inner := StatusInner{
		Fan:           fan,
		Samples:       samples,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Counts: CountsJSON{
			Cycles: snap.Counts.Cycles,
			FanOn:  snap.Counts.FanOn,
			FanOff: snap.Counts.FanOff,
		},
		Config: ConfigJSON{
			TemMax:         snap.Config.TemMax,
			TemMin:         snap.Config.TemMin,
			SampleMax:      snap.Config.SampleMax,
			SamplePeriodMs: snap.Config.SamplePeriodMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Backend:        snap.Config.Backend,
			Pin:            snap.Config.Pin,
			SensorPath:     snap.Config.SensorPath,
		},
	}
	if snap.HasAverage {
		avg := snap.Average
		inner.Average = &avg
	}
	if snap.Armed {
		target := snap.Target
		inner.Target = &target
	}
	return inner
}

// FormatJSON returns the indented JSON status (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status for a lifecycle event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

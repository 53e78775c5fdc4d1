package logic

import "time"

// Controller runs one smoothing and hysteresis step per temperature reading
// and keeps running totals for heartbeat events.
type Controller struct {
	window        *Window
	hysteresis    *Hysteresis
	fan           State
	counts        Counts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewController creates a controller for the given thresholds.
// The startTime is used for calculating uptime in heartbeat events.
func NewController(th Thresholds, startTime time.Time) *Controller {
	return &Controller{
		window:        NewWindow(th.Samples),
		hysteresis:    NewHysteresis(th.Max, th.Min),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process pushes the reading into the window, averages it and returns the
// fan decision for this cycle.
func (c *Controller) Process(input Input) (Decision, error) {
	c.window.Push(input.Temp)

	avg, err := c.window.Average()
	if err != nil {
		return Decision{}, err
	}

	on := c.hysteresis.Update(avg)
	target, armed := c.hysteresis.Target()

	fan := boolToState(on)
	c.countTransition(fan)
	c.counts.Cycles++

	return Decision{
		Time:    input.Time,
		Samples: c.window.Samples(),
		Average: avg,
		Target:  target,
		Armed:   armed,
		Fan:     fan,
	}, nil
}

// countTransition records a fan state change. The first cycle counts as a
// transition only when it turns the fan on.
func (c *Controller) countTransition(fan State) {
	if fan == c.fan {
		return
	}
	switch {
	case fan == StateOn:
		c.counts.FanOn++
	case c.fan == StateOn:
		c.counts.FanOff++
	}
	c.fan = fan
}

func boolToState(b bool) State {
	if b {
		return StateOn
	}
	return StateOff
}

// CountsSnapshot returns a copy of the running totals.
func (c *Controller) CountsSnapshot() Counts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if interval is <= 0 (disabled) or
// the interval has not elapsed.
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}

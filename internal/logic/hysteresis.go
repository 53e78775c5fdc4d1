package logic

// Hysteresis decides the fan state from a smoothed temperature using two
// thresholds. The fan trips once the average rises strictly above max and
// stays on until the average falls to or below min.
//
// The engine holds a single optional target. It is unset at construction,
// set to min when the average exceeds max while unset, and cleared whenever
// the average is at or below the active target. When set it always equals min.
type Hysteresis struct {
	max, min float64

	target float64
	armed  bool
}

// NewHysteresis creates an engine in the unset state. No ordering between
// max and min is enforced.
func NewHysteresis(max, min float64) *Hysteresis {
	return &Hysteresis{max: max, min: min}
}

// Update feeds one average into the engine and reports whether the fan
// should be on.
func (h *Hysteresis) Update(avg float64) bool {
	if !h.armed && avg > h.max {
		h.target = h.min
		h.armed = true
	}

	// Evaluated in the same cycle as arming, so a target at or above the
	// tripping average releases immediately.
	if h.armed && avg > h.target {
		return true
	}

	h.armed = false
	h.target = 0
	return false
}

// Target returns the active release threshold, if any.
func (h *Hysteresis) Target() (float64, bool) {
	return h.target, h.armed
}

// Armed reports whether a cooling target is active.
func (h *Hysteresis) Armed() bool {
	return h.armed
}

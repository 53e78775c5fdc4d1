package logic

// Window is a bounded FIFO of the most recent readings, oldest first.
// Not safe for concurrent use.
type Window struct {
	samples  []float64
	capacity int
}

// NewWindow creates a window holding at most capacity readings.
// It panics if capacity is less than one.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		panic("logic: window capacity must be positive")
	}
	return &Window{
		samples:  make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a reading and evicts from the head until the window fits.
func (w *Window) Push(reading float64) {
	w.samples = append(w.samples, reading)
	for len(w.samples) > w.capacity {
		w.samples = w.samples[1:]
	}
}

// Average returns the arithmetic mean of the retained readings.
func (w *Window) Average() (float64, error) {
	if len(w.samples) == 0 {
		return 0, ErrEmptyWindow
	}
	var sum float64
	for _, s := range w.samples {
		sum += s
	}
	return sum / float64(len(w.samples)), nil
}

// Samples returns a copy of the retained readings, oldest first.
func (w *Window) Samples() []float64 {
	out := make([]float64, len(w.samples))
	copy(out, w.samples)
	return out
}

// Len returns the number of retained readings.
func (w *Window) Len() int {
	return len(w.samples)
}

// Cap returns the window capacity.
func (w *Window) Cap() int {
	return w.capacity
}

package thermal

import "errors"

// FakeSource is a test double that returns scripted temperatures.
type FakeSource struct {
	// Temps contains scripted readings in degrees.
	// Each call to Read() consumes the next value.
	Temps []float64

	// index tracks current position in Temps
	index int

	// Reads counts calls to Read.
	Reads int

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeSource creates a FakeSource with the given readings.
func NewFakeSource(temps ...float64) *FakeSource {
	return &FakeSource{Temps: temps}
}

// Read returns the next scripted reading.
// If readings are exhausted, returns the last reading repeatedly.
func (f *FakeSource) Read() (float64, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Temps) == 0 {
		return 0, errors.New("no temperatures configured")
	}

	temp := f.Temps[f.index]
	if f.index < len(f.Temps)-1 {
		f.index++
	}
	return temp, nil
}

// Reset rewinds the source to the first reading.
func (f *FakeSource) Reset() {
	f.index = 0
	f.Reads = 0
}

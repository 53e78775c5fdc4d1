// Package thermal reads the CPU temperature.
// The real implementation reads a sysfs thermal zone.
// The fake implementation allows testing without hardware.
package thermal

import "errors"

// ErrSensorRead is wrapped by every error caused by an unreadable sensor or
// a value that cannot be parsed.
var ErrSensorRead = errors.New("sensor read failed")

// DefaultPath is the thermal zone of the SoC on a Raspberry Pi.
const DefaultPath = "/sys/class/thermal/thermal_zone0/temp"

// Source reads the instantaneous temperature.
type Source interface {
	// Read returns the current temperature in degrees Celsius.
	// Every call performs a fresh read.
	Read() (float64, error)
}

package thermal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SysfsSource reads a file containing the temperature in millidegrees.
type SysfsSource struct {
	path string
}

// NewSysfsSource creates a source for the given file. An empty path uses
// DefaultPath.
func NewSysfsSource(path string) *SysfsSource {
	if path == "" {
		path = DefaultPath
	}
	return &SysfsSource{path: path}
}

// Path returns the file being read.
func (s *SysfsSource) Path() string {
	return s.path
}

// Read returns the temperature in degrees Celsius.
func (s *SysfsSource) Read() (float64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSensorRead, err)
	}
	return ParseMillidegrees(string(data))
}

// ParseMillidegrees converts the textual integer exposed by the kernel
// (e.g. "48312\n") into degrees.
func ParseMillidegrees(s string) (float64, error) {
	milli, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %q: %v", ErrSensorRead, strings.TrimSpace(s), err)
	}
	return float64(milli) / 1000, nil
}

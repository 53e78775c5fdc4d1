package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sweeney/fanctl/internal/config"
	"github.com/sweeney/fanctl/internal/control"
	"github.com/sweeney/fanctl/internal/gpio"
	"github.com/sweeney/fanctl/internal/thermal"
)

// writeSetup creates a sensor file and a YAML config pointing at it in a
// fresh working directory, returning the config path.
func writeSetup(t *testing.T, sensor string, extra string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	sensorPath := filepath.Join(dir, "temp")
	require.NoError(t, os.WriteFile(sensorPath, []byte(sensor), 0o644))

	cfg := "sensor_path: " + sensorPath + "\n" +
		"heartbeat: 0s\n" +
		"logging:\n  level: error\n" + extra
	cfgPath := filepath.Join(dir, "fanctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func TestSignalName(t *testing.T) {
	tests := []struct {
		sig  os.Signal
		want string
	}{
		{syscall.SIGINT, "SIGINT"},
		{syscall.SIGTERM, "SIGTERM"},
		{syscall.SIGHUP, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := signalName(tt.sig); got != tt.want {
			t.Errorf("signalName(%v): got %q, want %q", tt.sig, got, tt.want)
		}
	}
}

func TestStatusConfig(t *testing.T) {
	cfg := config.Config{
		TemMax:         62,
		TemMin:         48,
		SampleMax:      4,
		SamplePeriodMs: 2500,
		Backend:        gpio.BackendChip,
		Pin:            17,
		SensorPath:     "/tmp/temp",
		Heartbeat:      time.Minute,
	}

	got := statusConfig(cfg)

	if got.TemMax != 62 || got.TemMin != 48 {
		t.Errorf("thresholds: got %v/%v, want 62/48", got.TemMax, got.TemMin)
	}
	if got.SampleMax != 4 {
		t.Errorf("SampleMax: got %d, want 4", got.SampleMax)
	}
	if got.SamplePeriodMs != 2500 {
		t.Errorf("SamplePeriodMs: got %d, want 2500", got.SamplePeriodMs)
	}
	if got.HeartbeatMs != 60000 {
		t.Errorf("HeartbeatMs: got %d, want 60000", got.HeartbeatMs)
	}
	if got.Backend != "gpiocdev" || got.Pin != 17 || got.SensorPath != "/tmp/temp" {
		t.Errorf("hardware: got %+v", got)
	}
}

func TestWatchSignalsCancelsWithCause(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	sig := make(chan os.Signal, 1)
	sig <- syscall.SIGTERM
	stopped := false

	watchSignals(ctx, sig, func() { stopped = true }, cancel, zap.NewNop())

	if !stopped {
		t.Error("signal delivery should be stopped after the first signal")
	}
	if ctx.Err() == nil {
		t.Fatal("context should be cancelled")
	}
	cause := context.Cause(ctx)
	if !errors.Is(cause, control.ErrStopped) {
		t.Errorf("cause: got %v, want ErrStopped", cause)
	}
	if !strings.Contains(cause.Error(), "SIGTERM") {
		t.Errorf("cause should name the signal: %v", cause)
	}
}

func TestWatchSignalsReturnsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(nil)

	done := make(chan struct{})
	go func() {
		watchSignals(ctx, make(chan os.Signal), nil, cancel, zap.NewNop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watchSignals did not return after ctx was done")
	}
}

func TestRunPrintState(t *testing.T) {
	cfgPath := writeSetup(t, "52312\n", "")

	err := run(options{configPath: cfgPath, printState: true}, nil, nil)
	require.NoError(t, err)
}

func TestRunPrintStateSensorError(t *testing.T) {
	cfgPath := writeSetup(t, "garbage", "")

	err := run(options{configPath: cfgPath, printState: true}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, thermal.ErrSensorRead), "got %v", err)
}

func TestRunMissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	err := run(options{configPath: "/nonexistent/fanctl.yaml"}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrLoad), "got %v", err)
}

func TestRunUnknownBackend(t *testing.T) {
	cfgPath := writeSetup(t, "40000", "backend: spi\n")

	err := run(options{configPath: cfgPath}, make(chan os.Signal), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrLoad), "got %v", err)
	assert.False(t, errors.Is(err, gpio.ErrInit), "config errors must not look like hardware errors")
}

func TestPrintStateWritesStatusJSON(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := config.Config{TemMax: 60, TemMin: 45, SampleMax: 3, Backend: gpio.BackendExec, Pin: 1, SensorPath: "/tmp/temp"}
	var buf bytes.Buffer

	err := printState(&buf, thermal.NewFakeSource(65), cfg, now)
	require.NoError(t, err)

	var got struct {
		Status struct {
			Fan     string    `json:"fan"`
			Samples []float64 `json:"samples"`
			Average *float64  `json:"average"`
			Target  *float64  `json:"target"`
			Counts  struct {
				Cycles int `json:"cycles"`
			} `json:"counts"`
			Config struct {
				TemMax float64 `json:"tem_max"`
				Pin    int     `json:"pin"`
			} `json:"config"`
		} `json:"status"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got), "output: %s", buf.String())

	assert.Equal(t, "ON", got.Status.Fan)
	assert.Equal(t, []float64{65}, got.Status.Samples)
	require.NotNil(t, got.Status.Average)
	assert.Equal(t, 65.0, *got.Status.Average)
	require.NotNil(t, got.Status.Target)
	assert.Equal(t, 45.0, *got.Status.Target)
	assert.Equal(t, 1, got.Status.Counts.Cycles)
	assert.Equal(t, 60.0, got.Status.Config.TemMax)
	assert.Equal(t, 1, got.Status.Config.Pin)
}

func TestPrintStateBelowThreshold(t *testing.T) {
	cfg := config.Config{TemMax: 60, TemMin: 45, SampleMax: 3}
	var buf bytes.Buffer

	require.NoError(t, printState(&buf, thermal.NewFakeSource(41.5), cfg, time.Now()))

	assert.Contains(t, buf.String(), `"fan": "OFF"`)
	assert.Contains(t, buf.String(), `"target": null`)
}

func TestPrintStateSensorError(t *testing.T) {
	source := thermal.NewFakeSource(50)
	source.ReadError = thermal.ErrSensorRead
	var buf bytes.Buffer

	err := printState(&buf, source, config.Config{TemMax: 60, TemMin: 45, SampleMax: 3}, time.Now())
	assert.ErrorIs(t, err, thermal.ErrSensorRead)
	assert.Empty(t, buf.String())
}

func TestPinWarning(t *testing.T) {
	tests := []struct {
		backend string
		pin     int
		warn    bool
	}{
		{gpio.BackendRpio, 1, true},
		{gpio.BackendRpio, 18, false},
		{gpio.BackendExec, 1, false},
		{gpio.BackendChip, 1, false},
	}
	for _, tt := range tests {
		got := pinWarning(config.Config{Backend: tt.backend, Pin: tt.pin})
		if (got != "") != tt.warn {
			t.Errorf("pinWarning(%s, %d): got %q, want warning=%v", tt.backend, tt.pin, got, tt.warn)
		}
	}
}

func TestRunStopsOnSignal(t *testing.T) {
	truePath, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true(1) not available")
	}
	cfgPath := writeSetup(t, "65000", "gpio_cmd: "+truePath+"\nsample_period: 10\n")

	sig := make(chan os.Signal, 1)
	sig <- syscall.SIGINT

	errCh := make(chan error, 1)
	go func() { errCh <- run(options{configPath: cfgPath}, sig, nil) }()

	select {
	case err := <-errCh:
		require.Error(t, err, "run must never end without an error")
		assert.True(t, errors.Is(err, control.ErrStopped), "got %v", err)
		assert.Contains(t, err.Error(), "SIGINT")
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after SIGINT")
	}
}

func TestRunFailsWhenGPIOCommandFails(t *testing.T) {
	falsePath, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false(1) not available")
	}
	cfgPath := writeSetup(t, "65000", "gpio_cmd: "+falsePath+"\n")

	err = run(options{configPath: cfgPath}, make(chan os.Signal), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gpio.ErrInit), "got %v", err)
}

// Command fanctl switches a cooling fan on a GPIO pin from the smoothed CPU
// temperature, with hysteresis between a trip and a release threshold.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sweeney/fanctl/internal/config"
	"github.com/sweeney/fanctl/internal/control"
	"github.com/sweeney/fanctl/internal/gpio"
	"github.com/sweeney/fanctl/internal/logic"
	"github.com/sweeney/fanctl/internal/status"
	"github.com/sweeney/fanctl/internal/thermal"
)

type options struct {
	configPath string
	envFile    string
	printState bool
	flags      *pflag.FlagSet
}

func main() {
	flags := pflag.NewFlagSet("fanctl", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "Config file (JSON, YAML or TOML); may also be given as the first argument")
	envFile := flags.String("env-file", "", "dotenv file with FANCTL_* overrides (default .env if present)")
	printState := flags.Bool("print-state", false, "Print current temperature and exit")
	flags.String("backend", gpio.BackendExec, "GPIO backend: exec, gpiocdev or rpio")
	flags.Int("pin", gpio.DefaultPin, "Fan pin (WiringPi number for exec, line offset for gpiocdev, BCM for rpio)")
	flags.Parse(os.Args[1:])

	opts := options{
		configPath: *configPath,
		envFile:    *envFile,
		printState: *printState,
		flags:      flags,
	}
	if opts.configPath == "" && flags.NArg() > 0 {
		opts.configPath = flags.Arg(0)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	stop := func() { signal.Stop(sigCh) }

	// The loop only ever ends in shutdown, so any return other than
	// --print-state exits non-zero.
	if err := run(opts, sigCh, stop); err != nil {
		fmt.Fprintf(os.Stderr, "fanctl: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, sig <-chan os.Signal, stopSignals func()) error {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return err
	}
	cfg, v, err := config.Load(opts.configPath, opts.flags)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(v)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrLoad, err)
	}
	defer logger.Sync()

	source := thermal.NewSysfsSource(cfg.SensorPath)

	// Print state mode
	if opts.printState {
		return printState(os.Stdout, source, cfg, time.Now())
	}

	if f := v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded", zap.String("component", "config"), zap.String("source", f))
	} else {
		logger.Info("no configuration file found, using defaults", zap.String("component", "config"))
	}
	if msg := pinWarning(cfg); msg != "" {
		logger.Warn(msg, zap.String("backend", cfg.Backend), zap.Int("pin", cfg.Pin))
	}

	actuator, err := gpio.New(gpio.Options{
		Backend: cfg.Backend,
		Pin:     cfg.Pin,
		Command: cfg.GPIOCmd,
		Timeout: cfg.CommandTimeout(),
		Chip:    cfg.GPIOChip,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", gpio.ErrInit, err)
	}

	startTime := time.Now()
	tracker := status.NewTracker(startTime, statusConfig(cfg))
	controller := logic.NewController(logic.Thresholds{
		Max:     cfg.TemMax,
		Min:     cfg.TemMin,
		Samples: cfg.SampleMax,
	}, startTime)
	loop := control.New(control.Config{
		Period:         cfg.SamplePeriod(),
		Heartbeat:      cfg.Heartbeat,
		ReleaseTimeout: cfg.CommandTimeout(),
	}, source, actuator, controller, tracker, logger)

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	go watchSignals(ctx, sig, stopSignals, cancel, logger)

	logger.Info("started",
		zap.Float64("tem_max", cfg.TemMax),
		zap.Float64("tem_min", cfg.TemMin),
		zap.Int("sample_max", cfg.SampleMax),
		zap.Duration("sample_period", cfg.SamplePeriod()),
		zap.String("backend", cfg.Backend),
		zap.Int("pin", cfg.Pin),
		zap.String("sensor", cfg.SensorPath))

	return loop.Run(ctx)
}

// watchSignals cancels ctx on the first SIGINT or SIGTERM. Signal delivery is
// then stopped so that a second signal terminates the process outright.
func watchSignals(ctx context.Context, sig <-chan os.Signal, stopSignals func(), cancel context.CancelCauseFunc, logger *zap.Logger) {
	select {
	case s := <-sig:
		if stopSignals != nil {
			stopSignals()
		}
		name := signalName(s)
		logger.Info("received signal, shutting down", zap.String("signal", name))
		cancel(fmt.Errorf("%w: %s", control.ErrStopped, name))
	case <-ctx.Done():
	}
}

// printState takes one reading, runs it through a fresh controller and
// writes the resulting status as JSON. The fan is not touched.
func printState(w io.Writer, source thermal.Source, cfg config.Config, now time.Time) error {
	temp, err := source.Read()
	if err != nil {
		return fmt.Errorf("read temperature: %w", err)
	}

	controller := logic.NewController(logic.Thresholds{
		Max:     cfg.TemMax,
		Min:     cfg.TemMin,
		Samples: cfg.SampleMax,
	}, now)
	d, err := controller.Process(logic.Input{Temp: temp, Time: now})
	if err != nil {
		return err
	}

	tracker := status.NewTracker(now, statusConfig(cfg))
	tracker.Update(d, controller.CountsSnapshot())

	_, err = fmt.Fprintf(w, "%s\n", status.FormatJSON(tracker.Snapshot()))
	return err
}

// pinWarning flags the default pin under rpio, where numbering is BCM and
// pin 1 is the HAT EEPROM clock rather than WiringPi 1 (BCM 18).
func pinWarning(cfg config.Config) string {
	if cfg.Backend == gpio.BackendRpio && cfg.Pin == gpio.DefaultPin {
		return "rpio uses BCM numbering: pin 1 is ID_SC, WiringPi pin 1 is BCM 18"
	}
	return ""
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		TemMax:         cfg.TemMax,
		TemMin:         cfg.TemMin,
		SampleMax:      cfg.SampleMax,
		SamplePeriodMs: cfg.SamplePeriod().Milliseconds(),
		HeartbeatMs:    cfg.Heartbeat.Milliseconds(),
		Backend:        cfg.Backend,
		Pin:            cfg.Pin,
		SensorPath:     cfg.SensorPath,
	}
}

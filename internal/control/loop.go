// Package control runs the fan control loop: read, smooth, decide, actuate,
// sleep, until the context is cancelled or a cycle fails.
package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/fanctl/internal/gpio"
	"github.com/sweeney/fanctl/internal/logic"
	"github.com/sweeney/fanctl/internal/status"
	"github.com/sweeney/fanctl/internal/thermal"
)

// ErrStopped is the cancellation cause used when a termination signal
// stops the loop.
var ErrStopped = errors.New("stopped by signal")

// DefaultReleaseTimeout bounds the shutdown release when Config leaves it unset.
const DefaultReleaseTimeout = 10 * time.Second

// Lifecycle event names written with the status snapshot.
const (
	EventStartup   = "STARTUP"
	EventHeartbeat = "HEARTBEAT"
	EventShutdown  = "SHUTDOWN"
)

// Config controls loop timing.
type Config struct {
	Period         time.Duration // sleep between cycles
	Heartbeat      time.Duration // 0 disables heartbeat events
	ReleaseTimeout time.Duration
}

// SleepFunc suspends for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Loop drives one fan from one temperature source.
// Run must not be called concurrently or more than once.
type Loop struct {
	cfg        Config
	source     thermal.Source
	actuator   gpio.Actuator
	controller *logic.Controller
	tracker    *status.Tracker
	logger     *zap.Logger
	now        func() time.Time
	sleep      SleepFunc
}

// New creates a loop. The tracker may be nil.
func New(cfg Config, source thermal.Source, actuator gpio.Actuator, controller *logic.Controller, tracker *status.Tracker, logger *zap.Logger) *Loop {
	if cfg.ReleaseTimeout <= 0 {
		cfg.ReleaseTimeout = DefaultReleaseTimeout
	}
	return &Loop{
		cfg:        cfg,
		source:     source,
		actuator:   actuator,
		controller: controller,
		tracker:    tracker,
		logger:     logger.With(zap.String("component", "control")),
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// WithClock replaces the time source and the sleep between cycles.
func (l *Loop) WithClock(now func() time.Time, sleep SleepFunc) *Loop {
	l.now = now
	l.sleep = sleep
	return l
}

// Run initialises the actuator and runs cycles until ctx is cancelled or a
// cycle fails. The actuator is released exactly once before Run returns.
// Run never returns nil: it returns the cancellation cause or the error that
// ended the loop.
func (l *Loop) Run(ctx context.Context) error {
	// Hardware writes are not interrupted part way; cancellation is observed
	// between steps instead.
	hwCtx := context.WithoutCancel(ctx)

	if err := l.actuator.Init(hwCtx); err != nil {
		l.logger.Error("fan init failed", zap.Error(err))
		l.release(ctx)
		return fmt.Errorf("init fan: %w", err)
	}
	l.logEvent(EventStartup, "")

	err := l.cycles(ctx, hwCtx)

	if errors.Is(err, ErrStopped) {
		l.logger.Info("shutting down", zap.Error(err))
	} else {
		l.logger.Error("control loop failed", zap.Error(err))
	}
	l.logEvent(EventShutdown, err.Error())
	l.release(ctx)
	return err
}

func (l *Loop) cycles(ctx, hwCtx context.Context) error {
	for {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}

		if err := l.cycle(hwCtx); err != nil {
			return err
		}

		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		if err := l.sleep(ctx, l.cfg.Period); err != nil {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			return fmt.Errorf("sleep: %w", err)
		}
	}
}

// cycle performs one read, smooth, decide, actuate step.
func (l *Loop) cycle(ctx context.Context) error {
	temp, err := l.source.Read()
	if err != nil {
		return fmt.Errorf("read temperature: %w", err)
	}

	d, err := l.controller.Process(logic.Input{Temp: temp, Time: l.now()})
	if err != nil {
		// Unreachable while Process pushes before averaging.
		return fmt.Errorf("process reading: %w", err)
	}

	l.logger.Info("temperature samples", zap.Float64s("samples", d.Samples))
	l.logger.Info("average temperature", zap.Float64("avg", d.Average))
	if d.Armed {
		l.logger.Info("target temperature", zap.Float64("target", d.Target))
	} else {
		l.logger.Info("target temperature", zap.String("target", "none"))
	}

	if d.FanOn() {
		l.logger.Info("open fan")
	} else {
		l.logger.Info("close fan")
	}
	if err := l.actuator.Set(ctx, d.FanOn()); err != nil {
		return fmt.Errorf("set fan: %w", err)
	}

	if l.tracker != nil {
		l.tracker.Update(d, l.controller.CountsSnapshot())
	}

	if hb := l.controller.CheckHeartbeat(d.Time, l.cfg.Heartbeat); hb != nil {
		l.logger.Debug("heartbeat",
			zap.Duration("uptime", hb.Uptime),
			zap.Int("cycles", hb.Counts.Cycles),
			zap.Int("fan_on", hb.Counts.FanOn),
			zap.Int("fan_off", hb.Counts.FanOff))
		l.logEvent(EventHeartbeat, "")
	}
	return nil
}

// release returns the line to input mode with a fresh bounded context, since
// ctx is usually already cancelled by the time we get here. Failures are
// logged only.
func (l *Loop) release(ctx context.Context) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.cfg.ReleaseTimeout)
	defer cancel()

	if err := l.actuator.Release(rctx); err != nil {
		l.logger.Error("fan release failed", zap.Error(err))
		return
	}
	l.logger.Info("fan released")
}

func (l *Loop) logEvent(event, reason string) {
	if l.tracker == nil {
		return
	}
	snap := l.tracker.Snapshot()
	l.logger.Info("status",
		zap.String("event", event),
		zap.ByteString("status", status.FormatStatusEvent(snap, event, reason)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

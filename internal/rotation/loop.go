package rotation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultInterval is the pulse interval when none is configured
const DefaultInterval = 250 * time.Millisecond

// FocusChecker reports whether the game window has focus
type FocusChecker interface {
	HasFocus() (bool, error)
}

// Liveness reports whether the bound game process is still running
type Liveness interface {
	Check() bool
}

// LoopConfig controls the pulse loop
type LoopConfig struct {
	Interval     time.Duration
	RequireFocus bool
}

// Loop pulses an engine on a ticker until the context ends or a pulse fails
type Loop struct {
	engine *Engine
	cfg    LoopConfig
	focus  FocusChecker
	live   Liveness
	paused atomic.Bool
}

// NewLoop creates a loop. focus is only consulted when cfg.RequireFocus is set;
// live may be nil.
func NewLoop(engine *Engine, cfg LoopConfig, focus FocusChecker, live Liveness) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Loop{
		engine: engine,
		cfg:    cfg,
		focus:  focus,
		live:   live,
	}
}

// Pause skips pulses until Resume
func (l *Loop) Pause() { l.paused.Store(true) }

// Resume continues pulsing after Pause
func (l *Loop) Resume() { l.paused.Store(false) }

// Paused reports whether pulses are being skipped
func (l *Loop) Paused() bool { return l.paused.Load() }

// Engine returns the engine driven by this loop
func (l *Loop) Engine() *Engine { return l.engine }

// Run initializes the engine, pulses it every interval and stops it on return.
// Cancelling ctx ends the run with a nil error; any other failure is returned.
func (l *Loop) Run(ctx context.Context) (err error) {
	logger := l.engine.Logger()

	if err := l.engine.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer func() {
		if stopErr := l.engine.Stop(); stopErr != nil {
			logger.Error().Err(stopErr).Msg("Loop: Stop failed")
			err = errors.Join(err, fmt.Errorf("stop: %w", stopErr))
		}
	}()

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", l.cfg.Interval).Bool("require_focus", l.cfg.RequireFocus).Msg("Loop: Started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Loop: Cancelled")
			return nil
		case <-ticker.C:
		}

		if l.paused.Load() {
			continue
		}
		if l.live != nil && !l.live.Check() {
			logger.Warn().Msg("Loop: Game client exited")
			return ErrClientExited
		}
		if l.cfg.RequireFocus && l.focus != nil {
			focused, err := l.focus.HasFocus()
			if err != nil {
				return fmt.Errorf("focus: %w", err)
			}
			if !focused {
				continue
			}
		}

		if err := l.engine.Pulse(); err != nil {
			logger.Error().Err(err).Msg("Loop: Pulse failed")
			return fmt.Errorf("pulse: %w", err)
		}
	}
}

package rotation

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Phase is the lifecycle position of a rotation
type Phase int32

const (
	Uninitialized Phase = iota
	Active
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("Phase(%d)", int32(p))
}

// Engine enforces the rotation lifecycle: Initialize once, Pulse while
// active, Stop once. Calls are serialized.
type Engine struct {
	mu     sync.Mutex
	rot    Rotation
	phase  Phase
	runID  string
	pulses uint64
	log    zerolog.Logger
}

// NewEngine wraps r. Each engine gets its own run id.
func NewEngine(r Rotation) *Engine {
	return newEngine(r, uuid.NewString())
}

// Build creates a rotation from f and wraps it in an engine. The rotation
// sees a copy of env whose logger carries the engine's run id.
func Build(f Factory, env Env) *Engine {
	id := uuid.NewString()
	env.Log = log.With().Str("run", id).Logger()
	return newEngine(f(&env), id)
}

func newEngine(r Rotation, id string) *Engine {
	return &Engine{
		rot:   r,
		runID: id,
		log: log.With().
			Str("rotation", r.Name()).
			Str("class", r.Class()).
			Str("run", id).
			Logger(),
	}
}

// Logger returns the engine's logger, tagged with rotation and run id
func (e *Engine) Logger() zerolog.Logger {
	return e.log
}

// Rotation returns the wrapped rotation
func (e *Engine) Rotation() Rotation {
	return e.rot
}

// RunID identifies this run in logs and status
func (e *Engine) RunID() string {
	return e.runID
}

// Phase returns the current lifecycle phase
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Pulses returns how many pulses completed without error
func (e *Engine) Pulses() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pulses
}

// Initialize calls the rotation's Initialize. On failure the engine stays uninitialized.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case Active:
		return ErrAlreadyInitialized
	case Stopped:
		return ErrStopped
	}

	if err := e.rot.Initialize(); err != nil {
		e.log.Error().Err(err).Msg("Engine: Initialize failed")
		return err
	}
	e.phase = Active
	e.log.Info().Msg("Engine: Rotation initialized")
	return nil
}

// Pulse calls the rotation's Pulse. Outside the active phase it returns
// ErrNotActive without touching the rotation.
func (e *Engine) Pulse() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != Active {
		return ErrNotActive
	}
	if err := e.rot.Pulse(); err != nil {
		return err
	}
	e.pulses++
	return nil
}

// Stop ends the rotation. Repeated calls are no-ops. The rotation's Stop is
// only called when it was initialized.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.phase
	if prev == Stopped {
		return nil
	}
	e.phase = Stopped
	if prev != Active {
		return nil
	}

	e.log.Info().Uint64("pulses", e.pulses).Msg("Engine: Rotation stopped")
	return e.rot.Stop()
}

// Package rotation defines combat rotations and drives their lifecycle.
//
// A rotation is a named, class-specific decision routine. The engine
// initializes it once, pulses it repeatedly while active and stops it once.
package rotation

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"pixelmagic/internal/input"
	"pixelmagic/internal/state"
)

// Type selects between single-target and area-of-effect behavior
type Type int32

const (
	SingleTarget Type = iota
	AOE
)

func (t Type) String() string {
	switch t {
	case SingleTarget:
		return "single"
	case AOE:
		return "aoe"
	}
	return fmt.Sprintf("Type(%d)", int32(t))
}

// ParseType accepts "single", "singletarget", "st" and "aoe", ignoring case
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "singletarget", "st", "":
		return SingleTarget, nil
	case "aoe":
		return AOE, nil
	}
	return SingleTarget, fmt.Errorf("unknown rotation type: %q", s)
}

// Rotation is implemented by every rotation variant
type Rotation interface {
	Name() string
	Class() string

	// Initialize runs once before the first pulse
	Initialize() error

	// Pulse makes one decision and dispatches at most a few inputs
	Pulse() error

	// Stop runs once when the rotation ends
	Stop() error
}

// Env is what a rotation gets to work with
type Env struct {
	State  *state.State
	Input  *input.Dispatcher
	Spells Spellbook

	// Mode reports the current rotation type; nil means SingleTarget
	Mode func() Type

	// Log carries the rotation and run id; the zero value discards
	Log zerolog.Logger
}

// Factory builds a rotation bound to env
type Factory func(env *Env) Rotation

// Descriptor identifies a registered rotation
type Descriptor struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

// CurrentMode returns the active rotation type
func (e *Env) CurrentMode() Type {
	if e.Mode == nil {
		return SingleTarget
	}
	return e.Mode()
}

// Cast presses the key bound to the named spell if the spell is off cooldown and in range.
// It reports whether the key was sent.
func (e *Env) Cast(name string) (bool, error) {
	spell, ok := e.Spells.Get(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownSpell, name)
	}

	ok, err := e.State.CanCast(spell.Slot)
	if err != nil || !ok {
		return false, err
	}

	e.Log.Debug().Str("spell", spell.Name).Str("key", spell.Key.String()).Msg("Casting")
	if err := e.Input.SendKey(spell.Key); err != nil {
		return false, fmt.Errorf("cast %s: %w", spell.Name, err)
	}
	return true, nil
}

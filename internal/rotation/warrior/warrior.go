// Package warrior is the sample Warrior rotation.
package warrior

import (
	"pixelmagic/internal/input"
	"pixelmagic/internal/rotation"
)

const (
	Name  = "Warrior Sample"
	Class = "Warrior"
)

// Charge is used when the spellbook does not configure it
var Charge = rotation.Spell{Name: "Charge", Slot: 1, Key: input.KeyD1}

func init() {
	rotation.Register(Name, Class, New)
}

// Warrior charges hostile targets in single-target mode and idles in AOE mode
type Warrior struct {
	env *rotation.Env
}

// New creates the rotation
func New(env *rotation.Env) rotation.Rotation {
	e := *env
	e.Spells = env.Spells.WithDefaults(Charge)
	return &Warrior{env: &e}
}

func (w *Warrior) Name() string  { return Name }
func (w *Warrior) Class() string { return Class }

func (w *Warrior) Initialize() error {
	charge, _ := w.env.Spells.Get(Charge.Name)
	w.env.Log.Info().
		Int("charge_slot", charge.Slot).
		Str("charge_key", charge.Key.String()).
		Msg("Welcome to PixelMagic Warrior")
	return nil
}

func (w *Warrior) Pulse() error {
	if w.env.CurrentMode() == rotation.AOE {
		return nil
	}
	return w.singleTarget()
}

func (w *Warrior) singleTarget() error {
	enemy, err := w.env.State.TargetIsEnemy()
	if err != nil || !enemy {
		return err
	}
	casting, err := w.env.State.PlayerIsCasting()
	if err != nil || casting {
		return err
	}
	_, err = w.env.Cast(Charge.Name)
	return err
}

func (w *Warrior) Stop() error {
	w.env.Log.Info().Msg("Warrior rotation stopped")
	return nil
}

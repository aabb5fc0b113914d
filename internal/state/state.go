// Package state interprets the addon pixel grid as typed game state.
//
// Every query samples the grid afresh; nothing is cached between calls.
// Without a bound client the sensor reports black cells, so boolean
// queries read false and percent queries read 0.
package state

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"pixelmagic/internal/binding"
	"pixelmagic/internal/pixel"

	"github.com/rs/zerolog/log"
)

// Sampler reads one grid cell
type Sampler interface {
	SampleColor(column, row int) (color.RGBA, error)
}

// State is the game-state facade over a Sampler
type State struct {
	sensor  Sampler
	src     binding.Source
	desktop binding.Desktop
}

// New creates a facade. src and desktop are only consulted by HasFocus.
func New(sensor Sampler, src binding.Source, desktop binding.Desktop) *State {
	return &State{
		sensor:  sensor,
		src:     src,
		desktop: desktop,
	}
}

func (s *State) isColor(column, row int, want color.RGBA) (bool, error) {
	c, err := s.sensor.SampleColor(column, row)
	if err != nil {
		return false, err
	}
	return c.R == want.R && c.G == want.G && c.B == want.B, nil
}

func (s *State) isRed(column, row int) (bool, error) {
	return s.isColor(column, row, pixel.Red)
}

// readPercent decodes the binary digits rendered on row
func (s *State) readPercent(row int) (int, error) {
	var bits strings.Builder
	for col := 1; col <= percentBits; col++ {
		red, err := s.isRed(col, row)
		if err != nil {
			return 0, err
		}
		if red {
			bits.WriteByte('1')
		} else {
			bits.WriteByte('0')
		}
	}
	return ParseBits(bits.String())
}

// ParseBits parses an MSB-first binary string. Values are not clamped.
func ParseBits(bits string) (int, error) {
	v, err := strconv.ParseUint(bits, 2, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid bit string %q: %w", bits, err)
	}
	return int(v), nil
}

// HasTarget reports whether the player has a target
func (s *State) HasTarget() (bool, error) {
	return s.isRed(colHasTarget, rowFlags)
}

// PlayerIsCasting reports whether the player is casting
func (s *State) PlayerIsCasting() (bool, error) {
	return s.isRed(colPlayerIsCasting, rowFlags)
}

// TargetIsCasting reports whether the target is casting
func (s *State) TargetIsCasting() (bool, error) {
	return s.isRed(colTargetIsCasting, rowFlags)
}

// TargetIsFriend reports whether the target is friendly.
// The addon marks friendly targets green rather than red.
func (s *State) TargetIsFriend() (bool, error) {
	return s.isColor(colTargetIsFriend, rowFlags, pixel.Green)
}

// TargetIsEnemy reports whether there is a target and it is not friendly
func (s *State) TargetIsEnemy() (bool, error) {
	has, err := s.HasTarget()
	if err != nil || !has {
		return false, err
	}
	friend, err := s.TargetIsFriend()
	if err != nil {
		return false, err
	}
	return !friend, nil
}

// HealthPercent returns the player's health, 0-127
func (s *State) HealthPercent() (int, error) {
	return s.readPercent(rowHealth)
}

// TargetHealthPercent returns the target's health, 0-127
func (s *State) TargetHealthPercent() (int, error) {
	return s.readPercent(rowTargetHealth)
}

// Power returns the player's primary resource. The addon renders one
// power row for every class, so Mana, Energy, Rage and Focus are aliases.
func (s *State) Power() (int, error) {
	return s.readPercent(rowPower)
}

func (s *State) Mana() (int, error)   { return s.Power() }
func (s *State) Energy() (int, error) { return s.Power() }
func (s *State) Rage() (int, error)   { return s.Power() }
func (s *State) Focus() (int, error)  { return s.Power() }

func checkSlot(slot int) error {
	if slot < 1 {
		return fmt.Errorf("%w: spell slot %d must be >= 1", pixel.ErrInvalidArgument, slot)
	}
	return nil
}

// IsSpellOnCooldown reports whether the spell in the 1-based slot is on cooldown
func (s *State) IsSpellOnCooldown(slot int) (bool, error) {
	if err := checkSlot(slot); err != nil {
		return false, err
	}
	return s.isRed(cooldownOffset+slot, rowCooldown)
}

// IsSpellInRange reports whether the current target is in range of the spell in slot
func (s *State) IsSpellInRange(slot int) (bool, error) {
	if err := checkSlot(slot); err != nil {
		return false, err
	}
	return s.isRed(slot, rowRange)
}

// CanCast reports whether the spell is off cooldown and in range.
// Cooldown is checked first; range is not sampled for spells on cooldown.
func (s *State) CanCast(slot int) (bool, error) {
	onCooldown, err := s.IsSpellOnCooldown(slot)
	if err != nil {
		return false, err
	}
	if onCooldown {
		log.Debug().Int("slot", slot).Msg("State: Spell is on cooldown")
		return false, nil
	}

	inRange, err := s.IsSpellInRange(slot)
	if err != nil {
		return false, err
	}
	if !inRange {
		log.Debug().Int("slot", slot).Msg("State: Spell is not in range")
		return false, nil
	}

	log.Debug().Int("slot", slot).Msg("State: Spell is in range and off cooldown")
	return true, nil
}

// HasFocus reports whether the game window owns the foreground.
// Unlike the grid queries it requires a binding and returns binding.ErrNoBinding otherwise.
func (s *State) HasFocus() (bool, error) {
	w, ok := s.src.Current()
	if !ok {
		return false, fmt.Errorf("game client is not detected, log in before starting the bot: %w", binding.ErrNoBinding)
	}

	pid, ok := s.desktop.ForegroundProcessID()
	if !ok {
		return false, nil
	}
	return pid == w.PID, nil
}

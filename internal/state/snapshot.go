package state

// Snapshot is one read of every grid query. It is never stored by the bot.
type Snapshot struct {
	HasTarget           bool           `json:"has_target"`
	TargetIsFriend      bool           `json:"target_is_friend"`
	PlayerIsCasting     bool           `json:"player_is_casting"`
	TargetIsCasting     bool           `json:"target_is_casting"`
	HealthPercent       int            `json:"health_percent"`
	TargetHealthPercent int            `json:"target_health_percent"`
	Power               int            `json:"power"`
	Spells              []SpellReading `json:"spells,omitempty"`
}

// SpellReading holds the cooldown and range indicators of one spell slot
type SpellReading struct {
	Slot       int  `json:"slot"`
	OnCooldown bool `json:"on_cooldown"`
	InRange    bool `json:"in_range"`
}

// Snapshot samples every query, including the first slots spell indicators
func (s *State) Snapshot(slots int) (Snapshot, error) {
	var snap Snapshot
	var err error

	flags := []struct {
		dst  *bool
		read func() (bool, error)
	}{
		{&snap.HasTarget, s.HasTarget},
		{&snap.TargetIsFriend, s.TargetIsFriend},
		{&snap.PlayerIsCasting, s.PlayerIsCasting},
		{&snap.TargetIsCasting, s.TargetIsCasting},
	}
	for _, f := range flags {
		if *f.dst, err = f.read(); err != nil {
			return Snapshot{}, err
		}
	}

	if snap.HealthPercent, err = s.HealthPercent(); err != nil {
		return Snapshot{}, err
	}
	if snap.TargetHealthPercent, err = s.TargetHealthPercent(); err != nil {
		return Snapshot{}, err
	}
	if snap.Power, err = s.Power(); err != nil {
		return Snapshot{}, err
	}

	for slot := 1; slot <= slots; slot++ {
		r := SpellReading{Slot: slot}
		if r.OnCooldown, err = s.IsSpellOnCooldown(slot); err != nil {
			return Snapshot{}, err
		}
		if r.InRange, err = s.IsSpellInRange(slot); err != nil {
			return Snapshot{}, err
		}
		snap.Spells = append(snap.Spells, r)
	}
	return snap, nil
}

package rotation

import (
	"fmt"
	"slices"
	"strings"

	"pixelmagic/internal/input"
)

// Spell binds an addon action slot to the key that casts it
type Spell struct {
	Name string
	Slot int
	Key  input.Key
}

// Spellbook maps spell names, ignoring case, to spells
type Spellbook map[string]Spell

// NewSpellbook builds a spellbook from spells; later entries replace earlier ones
func NewSpellbook(spells ...Spell) Spellbook {
	b := make(Spellbook, len(spells))
	for _, s := range spells {
		b[strings.ToLower(s.Name)] = s
	}
	return b
}

// ParseSpell validates a configured spell entry
func ParseSpell(name string, slot int, key string) (Spell, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Spell{}, fmt.Errorf("spell name is empty")
	}
	if slot < 1 {
		return Spell{}, fmt.Errorf("spell %s: slot must be >= 1, got %d", name, slot)
	}
	k, err := input.ParseKey(key)
	if err != nil {
		return Spell{}, fmt.Errorf("spell %s: %w", name, err)
	}
	return Spell{Name: name, Slot: slot, Key: k}, nil
}

// Get looks up a spell by name
func (b Spellbook) Get(name string) (Spell, bool) {
	s, ok := b[strings.ToLower(name)]
	return s, ok
}

// WithDefaults returns a copy of b with defaults added for names b does not define
func (b Spellbook) WithDefaults(defaults ...Spell) Spellbook {
	out := make(Spellbook, len(b)+len(defaults))
	for _, s := range defaults {
		out[strings.ToLower(s.Name)] = s
	}
	for k, s := range b {
		out[k] = s
	}
	return out
}

// Slots returns the highest slot in use
func (b Spellbook) Slots() int {
	n := 0
	for _, s := range b {
		if s.Slot > n {
			n = s.Slot
		}
	}
	return n
}

// Spells returns the spells ordered by slot
func (b Spellbook) Spells() []Spell {
	out := make([]Spell, 0, len(b))
	for _, s := range b {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, c Spell) int {
		if a.Slot != c.Slot {
			return a.Slot - c.Slot
		}
		return strings.Compare(a.Name, c.Name)
	})
	return out
}

package rotation

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

type entry struct {
	desc    Descriptor
	factory Factory
}

// Registry keeps rotation factories keyed by name
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Default is the registry variants add themselves to from init
var Default = NewRegistry()

// Register adds f under name for the given class label
func (r *Registry) Register(name, class string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("rotation name and factory are required")
	}

	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRotation, name)
	}
	r.entries[key] = entry{desc: Descriptor{Name: name, Class: class}, factory: f}
	return nil
}

// Lookup finds a rotation by name, ignoring case
func (r *Registry) Lookup(name string) (Descriptor, Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Descriptor{}, nil, fmt.Errorf("%w: %s", ErrUnknownRotation, name)
	}
	return e.desc, e.factory, nil
}

// ForClass lists the rotations for a class label, ignoring case
func (r *Registry) ForClass(class string) []Descriptor {
	var out []Descriptor
	for _, d := range r.Descriptors() {
		if strings.EqualFold(d.Class, class) {
			out = append(out, d)
		}
	}
	return out
}

// Descriptors lists every registered rotation ordered by class and name
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	out := make([]Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.desc)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Descriptor) int {
		if c := strings.Compare(a.Class, b.Class); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Register adds a rotation to the default registry and panics on a duplicate name
func Register(name, class string, f Factory) {
	if err := Default.Register(name, class, f); err != nil {
		panic(err)
	}
}

package warrior

import (
	"sync"
	"testing"

	"pixelmagic/internal/binding"
	"pixelmagic/internal/input"
	"pixelmagic/internal/pixel"
	"pixelmagic/internal/rotation"
	"pixelmagic/internal/state"
)

type keyPoster struct {
	mu   sync.Mutex
	keys []input.Key
}

func (p *keyPoster) KeyDown(w binding.Window, k input.Key) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, k)
	return nil
}
func (p *keyPoster) KeyUp(binding.Window, input.Key) error { return nil }
func (p *keyPoster) Char(binding.Window, rune) error       { return nil }
func (p *keyPoster) LeftClick(int, int) error              { return nil }

func newEnv(mode rotation.Type) (*rotation.Env, *pixel.GridCanvas, *keyPoster) {
	b := binding.New(nil)
	b.Bind(binding.Window{Handle: 0x10, PID: 1})
	canvas := pixel.NewGridCanvas(8, 6)
	sensor := pixel.NewSensor(b, pixel.NewImageSurface(canvas.Image()))
	poster := &keyPoster{}
	env := &rotation.Env{
		State: state.New(sensor, b, nil),
		Input: input.NewDispatcher(b, poster),
		Mode:  func() rotation.Type { return mode },
	}
	return env, canvas, poster
}

// paintReadyEnemy renders a hostile target with Charge usable
func paintReadyEnemy(c *pixel.GridCanvas) {
	c.SetCell(2, 3, pixel.Red)
	c.SetCell(1, 6, pixel.Red)
}

func TestRegistered(t *testing.T) {
	desc, factory, err := rotation.Default.Lookup(Name)
	if err != nil {
		t.Fatalf("Expected %q in default registry: %v", Name, err)
	}
	if desc.Class != Class {
		t.Errorf("Expected class %q, got %q", Class, desc.Class)
	}
	env, _, _ := newEnv(rotation.SingleTarget)
	if r := factory(env); r.Name() != Name || r.Class() != Class {
		t.Errorf("Unexpected rotation %s/%s", r.Name(), r.Class())
	}
}

func TestSingleTargetCharges(t *testing.T) {
	tests := []struct {
		name  string
		paint func(c *pixel.GridCanvas)
		want  int
	}{
		{"ready enemy", paintReadyEnemy, 1},
		{"no target", func(c *pixel.GridCanvas) { c.SetCell(1, 6, pixel.Red) }, 0},
		{"friendly target", func(c *pixel.GridCanvas) {
			paintReadyEnemy(c)
			c.SetCell(1, 3, pixel.Green)
		}, 0},
		{"player casting", func(c *pixel.GridCanvas) {
			paintReadyEnemy(c)
			c.SetCell(3, 3, pixel.Red)
		}, 0},
		{"on cooldown", func(c *pixel.GridCanvas) {
			paintReadyEnemy(c)
			c.SetCell(6, 1, pixel.Red)
		}, 0},
		{"out of range", func(c *pixel.GridCanvas) { c.SetCell(2, 3, pixel.Red) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, canvas, poster := newEnv(rotation.SingleTarget)
			tt.paint(canvas)

			r := New(env)
			if err := r.Initialize(); err != nil {
				t.Fatalf("Initialize failed: %v", err)
			}
			if err := r.Pulse(); err != nil {
				t.Fatalf("Pulse failed: %v", err)
			}
			if len(poster.keys) != tt.want {
				t.Errorf("Expected %d key presses, got %v", tt.want, poster.keys)
			}
			if tt.want > 0 && poster.keys[0] != input.KeyD1 {
				t.Errorf("Expected D1, got %v", poster.keys[0])
			}
		})
	}
}

func TestAOEDoesNothing(t *testing.T) {
	env, canvas, poster := newEnv(rotation.AOE)
	paintReadyEnemy(canvas)

	r := New(env)
	if err := r.Pulse(); err != nil {
		t.Fatalf("Pulse failed: %v", err)
	}
	if len(poster.keys) != 0 {
		t.Errorf("Expected no input in AOE mode, got %v", poster.keys)
	}
}

func TestConfiguredChargeKey(t *testing.T) {
	env, canvas, poster := newEnv(rotation.SingleTarget)
	env.Spells = rotation.NewSpellbook(rotation.Spell{Name: "Charge", Slot: 2, Key: input.KeyF1})
	canvas.SetCell(2, 3, pixel.Red)
	canvas.SetCell(2, 6, pixel.Red)

	r := New(env)
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := r.Pulse(); err != nil {
		t.Fatal(err)
	}
	if len(poster.keys) != 1 || poster.keys[0] != input.KeyF1 {
		t.Errorf("Expected F1 press, got %v", poster.keys)
	}
}

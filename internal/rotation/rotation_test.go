package rotation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pixelmagic/internal/binding"
	"pixelmagic/internal/input"
	"pixelmagic/internal/pixel"
	"pixelmagic/internal/state"
)

type fakeRotation struct {
	mu        sync.Mutex
	initErr   error
	pulseErr  error
	inits     int
	pulses    int
	stops     int
	pulseHook func(n int) error
}

func (r *fakeRotation) Name() string  { return "Fake" }
func (r *fakeRotation) Class() string { return "Tester" }

func (r *fakeRotation) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
	return r.initErr
}

func (r *fakeRotation) Pulse() error {
	r.mu.Lock()
	r.pulses++
	n := r.pulses
	hook := r.pulseHook
	r.mu.Unlock()
	if hook != nil {
		return hook(n)
	}
	return r.pulseErr
}

func (r *fakeRotation) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	return nil
}

func (r *fakeRotation) counts() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inits, r.pulses, r.stops
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"single", SingleTarget},
		{"SingleTarget", SingleTarget},
		{"st", SingleTarget},
		{"", SingleTarget},
		{"AOE", AOE},
		{" aoe ", AOE},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if err != nil {
			t.Errorf("ParseType(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseType(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
	if _, err := ParseType("cleave"); err == nil {
		t.Error("Expected error for unknown type")
	}
}

func TestModeSwitchToggle(t *testing.T) {
	m := NewModeSwitch(SingleTarget)
	if got := m.Toggle(); got != AOE {
		t.Errorf("Expected AOE after toggle, got %v", got)
	}
	if got := m.Toggle(); got != SingleTarget {
		t.Errorf("Expected SingleTarget after second toggle, got %v", got)
	}
	m.Set(AOE)
	if m.Get() != AOE {
		t.Errorf("Expected AOE after Set, got %v", m.Get())
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	factory := func(env *Env) Rotation { return &fakeRotation{} }

	if err := r.Register("Warrior Sample", "Warrior", factory); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("Fire Mage", "Mage", factory); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("warrior sample", "Warrior", factory); !errors.Is(err, ErrDuplicateRotation) {
		t.Errorf("Expected ErrDuplicateRotation, got %v", err)
	}

	desc, f, err := r.Lookup("WARRIOR SAMPLE")
	if err != nil || f == nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if desc.Name != "Warrior Sample" || desc.Class != "Warrior" {
		t.Errorf("Unexpected descriptor %+v", desc)
	}

	if _, _, err := r.Lookup("Nope"); !errors.Is(err, ErrUnknownRotation) {
		t.Errorf("Expected ErrUnknownRotation, got %v", err)
	}

	if got := r.ForClass("mage"); len(got) != 1 || got[0].Name != "Fire Mage" {
		t.Errorf("Expected one Mage rotation, got %v", got)
	}

	all := r.Descriptors()
	if len(all) != 2 || all[0].Class != "Mage" || all[1].Class != "Warrior" {
		t.Errorf("Expected descriptors sorted by class, got %v", all)
	}
}

func TestEngineLifecycle(t *testing.T) {
	rot := &fakeRotation{}
	e := NewEngine(rot)

	if e.RunID() == "" {
		t.Error("Expected a run id")
	}
	if err := e.Pulse(); !errors.Is(err, ErrNotActive) {
		t.Errorf("Expected ErrNotActive before Initialize, got %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := e.Initialize(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("Expected ErrAlreadyInitialized, got %v", err)
	}
	if err := e.Pulse(); err != nil {
		t.Errorf("Pulse failed: %v", err)
	}
	if e.Phase() != Active || e.Pulses() != 1 {
		t.Errorf("Expected active with 1 pulse, got %v with %d", e.Phase(), e.Pulses())
	}
	if err := e.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Errorf("Second Stop failed: %v", err)
	}
	if err := e.Pulse(); !errors.Is(err, ErrNotActive) {
		t.Errorf("Expected ErrNotActive after Stop, got %v", err)
	}
	if err := e.Initialize(); !errors.Is(err, ErrStopped) {
		t.Errorf("Expected ErrStopped, got %v", err)
	}

	inits, pulses, stops := rot.counts()
	if inits != 1 || pulses != 1 || stops != 1 {
		t.Errorf("Expected 1/1/1 calls, got %d/%d/%d", inits, pulses, stops)
	}
}

func TestEngineFailedInitialize(t *testing.T) {
	boom := errors.New("boom")
	rot := &fakeRotation{initErr: boom}
	e := NewEngine(rot)

	if err := e.Initialize(); !errors.Is(err, boom) {
		t.Errorf("Expected init error, got %v", err)
	}
	if e.Phase() != Uninitialized {
		t.Errorf("Expected uninitialized after failure, got %v", e.Phase())
	}

	rot.initErr = nil
	if err := e.Initialize(); err != nil {
		t.Errorf("Expected retry to succeed, got %v", err)
	}
}

func TestEngineStopBeforeInitialize(t *testing.T) {
	rot := &fakeRotation{}
	e := NewEngine(rot)
	if err := e.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if _, _, stops := rot.counts(); stops != 0 {
		t.Errorf("Expected rotation Stop not called, got %d", stops)
	}
}

func TestEnginePulseErrorPropagates(t *testing.T) {
	boom := errors.New("capture failed")
	e := NewEngine(&fakeRotation{pulseErr: boom})
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := e.Pulse(); !errors.Is(err, boom) {
		t.Errorf("Expected pulse error, got %v", err)
	}
	if e.Pulses() != 0 {
		t.Errorf("Expected failed pulse not counted, got %d", e.Pulses())
	}
}

type flagFocus struct{ focused bool }

func (f flagFocus) HasFocus() (bool, error) { return f.focused, nil }

type flagLive struct{ alive bool }

func (f flagLive) Check() bool { return f.alive }

func TestLoopRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rot := &fakeRotation{pulseHook: func(n int) error {
		if n == 3 {
			cancel()
		}
		return nil
	}}
	loop := NewLoop(NewEngine(rot), LoopConfig{Interval: time.Millisecond}, nil, flagLive{alive: true})

	if err := loop.Run(ctx); err != nil {
		t.Errorf("Expected nil error on cancel, got %v", err)
	}
	inits, pulses, stops := rot.counts()
	if inits != 1 || pulses < 3 || stops != 1 {
		t.Errorf("Expected init once, >=3 pulses, stop once; got %d/%d/%d", inits, pulses, stops)
	}
	if loop.Engine().Phase() != Stopped {
		t.Errorf("Expected stopped engine, got %v", loop.Engine().Phase())
	}
}

func TestLoopEndsOnPulseError(t *testing.T) {
	boom := errors.New("boom")
	rot := &fakeRotation{pulseErr: boom}
	loop := NewLoop(NewEngine(rot), LoopConfig{Interval: time.Millisecond}, nil, nil)

	if err := loop.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Expected pulse error, got %v", err)
	}
	if _, pulses, stops := rot.counts(); pulses != 1 || stops != 1 {
		t.Errorf("Expected one pulse and stop, got %d/%d", pulses, stops)
	}
}

func TestLoopEndsWhenClientExits(t *testing.T) {
	rot := &fakeRotation{}
	loop := NewLoop(NewEngine(rot), LoopConfig{Interval: time.Millisecond}, nil, flagLive{alive: false})

	if err := loop.Run(context.Background()); !errors.Is(err, ErrClientExited) {
		t.Errorf("Expected ErrClientExited, got %v", err)
	}
	if _, pulses, _ := rot.counts(); pulses != 0 {
		t.Errorf("Expected no pulses, got %d", pulses)
	}
}

func TestLoopSkipsWithoutFocusOrWhenPaused(t *testing.T) {
	tests := []struct {
		name    string
		focused bool
		paused  bool
	}{
		{"unfocused", false, false},
		{"paused", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rot := &fakeRotation{}
			loop := NewLoop(NewEngine(rot), LoopConfig{Interval: time.Millisecond, RequireFocus: true},
				flagFocus{focused: tt.focused}, nil)
			if tt.paused {
				loop.Pause()
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
			defer cancel()
			if err := loop.Run(ctx); err != nil {
				t.Errorf("Run failed: %v", err)
			}
			if _, pulses, _ := rot.counts(); pulses != 0 {
				t.Errorf("Expected no pulses, got %d", pulses)
			}
		})
	}
}

func TestLoopInitializeFailure(t *testing.T) {
	boom := errors.New("boom")
	loop := NewLoop(NewEngine(&fakeRotation{initErr: boom}), LoopConfig{}, nil, nil)
	if err := loop.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Expected init error, got %v", err)
	}
}

func TestSpellbook(t *testing.T) {
	charge, err := ParseSpell("Charge", 1, "D1")
	if err != nil {
		t.Fatalf("ParseSpell failed: %v", err)
	}
	book := NewSpellbook(charge, Spell{Name: "Rend", Slot: 3, Key: input.KeyD3})

	if s, ok := book.Get("charge"); !ok || s.Key != input.KeyD1 {
		t.Errorf("Expected Charge on D1, got %+v", s)
	}
	if book.Slots() != 3 {
		t.Errorf("Expected 3 slots, got %d", book.Slots())
	}

	merged := book.WithDefaults(Spell{Name: "Charge", Slot: 9, Key: input.KeyD9}, Spell{Name: "Execute", Slot: 2, Key: input.KeyD2})
	if s, _ := merged.Get("Charge"); s.Slot != 1 {
		t.Errorf("Expected configured Charge to win, got slot %d", s.Slot)
	}
	spells := merged.Spells()
	if len(spells) != 3 || spells[0].Name != "Charge" || spells[1].Name != "Execute" {
		t.Errorf("Expected spells ordered by slot, got %+v", spells)
	}

	for _, bad := range []struct {
		name string
		slot int
		key  string
	}{
		{"", 1, "D1"},
		{"Charge", 0, "D1"},
		{"Charge", 1, "Bogus"},
	} {
		if _, err := ParseSpell(bad.name, bad.slot, bad.key); err == nil {
			t.Errorf("Expected error for %+v", bad)
		}
	}
}

type recordingPoster struct {
	mu   sync.Mutex
	keys []input.Key
}

func (p *recordingPoster) KeyDown(w binding.Window, k input.Key) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, k)
	return nil
}
func (p *recordingPoster) KeyUp(binding.Window, input.Key) error { return nil }
func (p *recordingPoster) Char(binding.Window, rune) error       { return nil }
func (p *recordingPoster) LeftClick(int, int) error              { return nil }

func TestEnvCast(t *testing.T) {
	b := binding.New(nil)
	b.Bind(binding.Window{Handle: 0x10, PID: 1})
	canvas := pixel.NewGridCanvas(8, 6)
	sensor := pixel.NewSensor(b, pixel.NewImageSurface(canvas.Image()))
	poster := &recordingPoster{}
	env := &Env{
		State:  state.New(sensor, b, nil),
		Input:  input.NewDispatcher(b, poster),
		Spells: NewSpellbook(Spell{Name: "Charge", Slot: 1, Key: input.KeyD1}),
	}

	if cast, err := env.Cast("Charge"); err != nil || cast {
		t.Errorf("Expected no cast while out of range, got %v %v", cast, err)
	}

	canvas.SetCell(1, 6, pixel.Red)
	if cast, err := env.Cast("Charge"); err != nil || !cast {
		t.Errorf("Expected cast when in range and ready, got %v %v", cast, err)
	}

	canvas.SetCell(6, 1, pixel.Red)
	if cast, err := env.Cast("Charge"); err != nil || cast {
		t.Errorf("Expected no cast on cooldown, got %v %v", cast, err)
	}

	if _, err := env.Cast("Heroic Strike"); !errors.Is(err, ErrUnknownSpell) {
		t.Errorf("Expected ErrUnknownSpell, got %v", err)
	}

	if len(poster.keys) != 1 || poster.keys[0] != input.KeyD1 {
		t.Errorf("Expected exactly one D1 press, got %v", poster.keys)
	}
	if env.CurrentMode() != SingleTarget {
		t.Errorf("Expected SingleTarget with no mode source, got %v", env.CurrentMode())
	}
}

func TestBuildSharesRunID(t *testing.T) {
	var seen *Env
	f := func(env *Env) Rotation {
		seen = env
		return &fakeRotation{}
	}
	e := Build(f, Env{Mode: func() Type { return AOE }})

	if seen == nil || seen.CurrentMode() != AOE {
		t.Fatal("Expected factory to receive env")
	}
	if e.RunID() == "" || e.Phase() != Uninitialized {
		t.Errorf("Expected fresh engine, got run %q phase %v", e.RunID(), e.Phase())
	}
	if other := Build(f, Env{}); other.RunID() == e.RunID() {
		t.Error("Expected distinct run ids")
	}
}

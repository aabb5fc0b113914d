// Package bot provides the core rotation control logic.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"pixelmagic/internal/binding"
	"pixelmagic/internal/config"
	"pixelmagic/internal/input"
	"pixelmagic/internal/rotation"
	"pixelmagic/internal/state"
)

// ErrRunning is returned by Start while a rotation is already running
var ErrRunning = errors.New("a rotation is already running")

// Status describes the bot for the tray and the API
type Status struct {
	Bound      bool   `json:"bound"`
	PID        uint32 `json:"pid,omitempty"`
	Executable string `json:"executable,omitempty"`

	Running   bool   `json:"running"`
	Paused    bool   `json:"paused"`
	Rotation  string `json:"rotation,omitempty"`
	Class     string `json:"class,omitempty"`
	RunID     string `json:"run_id,omitempty"`
	Mode      string `json:"mode"`
	Pulses    uint64 `json:"pulses"`
	LastError string `json:"last_error,omitempty"`
}

// Options wires a Bot to its collaborators
type Options struct {
	Binding  *binding.Binding
	State    *state.State
	Input    *input.Dispatcher
	Registry *rotation.Registry
	Config   *config.Manager
}

// Bot coordinates the binding, the selected rotation and its pulse loop
type Bot struct {
	mu       sync.Mutex
	binding  *binding.Binding
	state    *state.State
	input    *input.Dispatcher
	registry *rotation.Registry
	cfg      *config.Manager
	mode     *rotation.ModeSwitch

	loop    *rotation.Loop
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error

	// Callback for UI notifications
	onChange func(Status)
}

// New creates a Bot. The initial mode comes from the configuration.
func New(opts Options) *Bot {
	reg := opts.Registry
	if reg == nil {
		reg = rotation.Default
	}

	mode, err := rotation.ParseType(opts.Config.Get().Rotation.Mode)
	if err != nil {
		log.Warn().Err(err).Msg("Bot: Invalid mode in config, using single target")
	}

	return &Bot{
		binding:  opts.Binding,
		state:    opts.State,
		input:    opts.Input,
		registry: reg,
		cfg:      opts.Config,
		mode:     rotation.NewModeSwitch(mode),
	}
}

// SetOnChange sets the callback for status changes
func (b *Bot) SetOnChange(callback func(Status)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = callback
}

// Registry returns the rotations the bot can run
func (b *Bot) Registry() *rotation.Registry {
	return b.registry
}

// Spellbook builds the spellbook from the configuration
func (b *Bot) Spellbook() (rotation.Spellbook, error) {
	var spells []rotation.Spell
	for _, sc := range b.cfg.Get().Spells {
		s, err := rotation.ParseSpell(sc.Name, sc.Slot, sc.Key)
		if err != nil {
			return nil, err
		}
		spells = append(spells, s)
	}
	return rotation.NewSpellbook(spells...), nil
}

// Start runs the named rotation; an empty name uses the configured one.
// It connects to the game first when no client is bound.
func (b *Bot) Start(name string) error {
	cfg := b.cfg.Get()
	if name == "" {
		name = cfg.Rotation.Name
	}

	desc, factory, err := b.registry.Lookup(name)
	if err != nil {
		return err
	}
	spells, err := b.Spellbook()
	if err != nil {
		return fmt.Errorf("spellbook: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loop != nil {
		return ErrRunning
	}
	if _, ok := b.binding.Current(); !ok {
		if err := b.binding.Connect(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
	}

	engine := rotation.Build(factory, rotation.Env{
		State:  b.state,
		Input:  b.input,
		Spells: spells,
		Mode:   b.mode.Get,
	})
	loop := rotation.NewLoop(engine, rotation.LoopConfig{
		Interval:     cfg.PulseInterval(),
		RequireFocus: cfg.Rotation.RequireFocus,
	}, b.state, b.binding)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.loop, b.cancel, b.done, b.lastErr = loop, cancel, done, nil

	log.Info().Str("rotation", desc.Name).Str("class", desc.Class).Str("run", engine.RunID()).Msg("Bot: Starting rotation")
	go b.run(ctx, loop, done)

	b.notifyLocked()
	return nil
}

func (b *Bot) run(ctx context.Context, loop *rotation.Loop, done chan struct{}) {
	err := loop.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Bot: Rotation ended with error")
	}

	b.mu.Lock()
	if b.loop == loop {
		b.loop, b.cancel, b.lastErr = nil, nil, err
	}
	close(done)
	b.notifyLocked()
	b.mu.Unlock()
}

// Stop ends the running rotation and waits for it to finish. It is a no-op when idle.
func (b *Bot) Stop() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Info().Msg("Bot: Rotation stopped")
}

// Toggle starts the configured rotation when idle and stops it when running
func (b *Bot) Toggle() error {
	if b.Running() {
		b.Stop()
		return nil
	}
	return b.Start("")
}

// Running reports whether a rotation loop is active
func (b *Bot) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loop != nil
}

// Pause keeps the rotation running but skips pulses
func (b *Bot) Pause() {
	b.setPaused(true)
}

// Resume continues pulsing after Pause
func (b *Bot) Resume() {
	b.setPaused(false)
}

func (b *Bot) setPaused(paused bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loop == nil {
		return
	}
	if paused {
		b.loop.Pause()
	} else {
		b.loop.Resume()
	}
	b.notifyLocked()
}

// Mode returns the current rotation type
func (b *Bot) Mode() rotation.Type {
	return b.mode.Get()
}

// SetMode switches between single target and AOE
func (b *Bot) SetMode(t rotation.Type) {
	b.mode.Set(t)
	b.modeChanged(t)
}

// ToggleMode flips the rotation type and returns the new one
func (b *Bot) ToggleMode() rotation.Type {
	t := b.mode.Toggle()
	b.modeChanged(t)
	return t
}

func (b *Bot) modeChanged(t rotation.Type) {
	log.Info().Str("mode", t.String()).Msg("Bot: Mode changed")
	b.cfg.Update(func(c *config.Config) { c.Rotation.Mode = t.String() })

	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifyLocked()
}

// Snapshot reads the current game state, including every configured spell slot
func (b *Bot) Snapshot() (state.Snapshot, error) {
	spells, err := b.Spellbook()
	if err != nil {
		return state.Snapshot{}, err
	}
	return b.state.Snapshot(spells.Slots())
}

// Status returns the current bot status
func (b *Bot) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.statusLocked()
}

func (b *Bot) statusLocked() Status {
	st := Status{Mode: b.mode.Get().String()}

	if w, ok := b.binding.Current(); ok {
		st.Bound = true
		st.PID = w.PID
		st.Executable = b.binding.Executable()
	}
	if b.loop != nil {
		e := b.loop.Engine()
		st.Running = true
		st.Paused = b.loop.Paused()
		st.Rotation = e.Rotation().Name()
		st.Class = e.Rotation().Class()
		st.RunID = e.RunID()
		st.Pulses = e.Pulses()
	}
	if b.lastErr != nil {
		st.LastError = b.lastErr.Error()
	}
	return st
}

func (b *Bot) notifyLocked() {
	if b.onChange == nil {
		return
	}
	go b.onChange(b.statusLocked())
}

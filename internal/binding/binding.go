// Package binding owns the connection between the bot and a running game client.
//
// A Binding is the only writer of the current window/process pair. The pixel
// sensor, the game-state facade and the input dispatcher only read it through
// the Source interface and must tolerate it disappearing at any time.
package binding

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"
)

// DefaultProcessNames lists the client executables searched for, in priority order
var DefaultProcessNames = []string{"Wow", "Wow-64", "WowB-64"}

// Window identifies the bound game window and its owning process
type Window struct {
	Handle uintptr `json:"hwnd"`
	PID    uint32  `json:"pid"`
}

// Valid reports whether the window carries a usable handle
func (w Window) Valid() bool {
	return w.Handle != 0
}

// Source supplies the current binding. ok is false when no client is bound.
type Source interface {
	Current() (w Window, ok bool)
}

// Desktop answers questions about the interactive desktop
type Desktop interface {
	// ForegroundProcessID returns the pid owning the foreground window, or false when no window is active
	ForegroundProcessID() (uint32, bool)
}

// Binding discovers the game client and tracks its lifetime
type Binding struct {
	mu    sync.RWMutex
	names []string
	win   Window
	bound bool
	exe   string

	// platform hooks, replaced in tests
	findProcess func(names []string) (pid uint32, exe string, err error)
	findWindow  func(pid uint32) (uintptr, error)
	pidExists   func(pid uint32) bool
}

// New creates an unbound Binding that searches for the given process names.
// An empty list falls back to DefaultProcessNames.
func New(names []string) *Binding {
	if len(names) == 0 {
		names = DefaultProcessNames
	}
	return &Binding{
		names:       names,
		findProcess: findProcess,
		findWindow:  findMainWindow,
		pidExists:   pidExists,
	}
}

// Current returns the bound window
func (b *Binding) Current() (Window, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.bound || !b.win.Valid() {
		return Window{}, false
	}
	return b.win, true
}

// Executable returns the path of the bound client, if known
func (b *Binding) Executable() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.exe
}

// Bind replaces the binding with an explicit window
func (b *Binding) Bind(w Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.win = w
	b.bound = w.Valid()
	b.exe = ""
}

// Connect searches for a running client and binds its main window
func (b *Binding) Connect() error {
	log.Info().Strs("names", b.names).Msg("Binding: Searching for open game processes...")

	pid, exe, err := b.findProcess(b.names)
	if err != nil {
		return err
	}

	hwnd, err := b.findWindow(pid)
	if err != nil {
		return fmt.Errorf("pid %d: %w", pid, err)
	}

	b.mu.Lock()
	b.win = Window{Handle: hwnd, PID: pid}
	b.bound = true
	b.exe = exe
	b.mu.Unlock()

	log.Info().Uint32("pid", pid).Str("exe", exe).Msgf("Binding: Connected to window 0x%X", hwnd)
	return nil
}

// Dispose drops the binding. Readers fall back to safe defaults afterwards.
func (b *Binding) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bound {
		log.Info().Uint32("pid", b.win.PID).Msg("Binding: Disposing of game process")
	}
	b.win = Window{}
	b.bound = false
	b.exe = ""
}

// Check verifies the bound process is still running and disposes the binding if it exited
func (b *Binding) Check() bool {
	w, ok := b.Current()
	if !ok {
		return false
	}
	if b.pidExists(w.PID) {
		return true
	}
	log.Warn().Uint32("pid", w.PID).Msg("Binding: Game process exited")
	b.Dispose()
	return false
}

// Launch starts the client from installPath and waits until its window can be bound
func (b *Binding) Launch(ctx context.Context, installPath, exe string, poll time.Duration) error {
	if installPath == "" {
		return fmt.Errorf("install path is not configured")
	}
	path := filepath.Join(installPath, exe)

	cmd := exec.Command(path)
	cmd.Dir = installPath
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", path, err)
	}
	log.Info().Int("pid", cmd.Process.Pid).Str("exe", path).Msg("Binding: Launched game client")
	cmd.Process.Release()

	if poll <= 0 {
		poll = time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		err := b.Connect()
		if err == nil {
			return nil
		}
		log.Debug().Err(err).Msg("Binding: Client not ready yet")

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for game window: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// findProcess returns the first running process matching names, honoring name priority
func findProcess(names []string) (uint32, string, error) {
	procs, err := process.Processes()
	if err != nil {
		return 0, "", fmt.Errorf("failed to list processes: %w", err)
	}

	for _, want := range names {
		for _, p := range procs {
			name, err := p.Name()
			if err != nil || !MatchName(name, want) {
				continue
			}
			exe, _ := p.Exe()
			return uint32(p.Pid), exe, nil
		}
	}
	return 0, "", ErrProcessNotFound
}

func pidExists(pid uint32) bool {
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}

// MatchName compares a process image name against a configured name,
// ignoring case and a trailing ".exe"
func MatchName(image, want string) bool {
	image = strings.TrimSuffix(strings.ToLower(image), ".exe")
	want = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(want)), ".exe")
	return image != "" && image == want
}

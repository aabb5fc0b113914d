// Package hotkey provides global system-wide hotkey and mouse button monitoring.
package hotkey

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"pixelmagic/internal/input"
)

// Manager handles global hotkey and mouse button registration and matching
type Manager struct {
	mu           sync.RWMutex
	hotkeys      []*registeredHotkey
	currentState map[string]bool // map of current keys/buttons pressed
}

type registeredHotkey struct {
	parts    []string // e.g., ["CTRL", "ALT", "P"]
	original string
	callback func()
}

// NewManager creates a new hotkey manager
func NewManager() *Manager {
	return &Manager{
		currentState: make(map[string]bool),
	}
}

// Normalize converts a hotkey string such as "ctrl+alt+return" into its
// canonical parts ("CTRL", "ALT", "ENTER").
func Normalize(hotkeyStr string) ([]string, error) {
	var parts []string
	for _, p := range strings.Split(hotkeyStr, "+") {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("invalid hotkey %q: empty key", hotkeyStr)
		}
		k, err := input.ParseKey(p)
		if err != nil {
			return nil, fmt.Errorf("invalid hotkey %q: %w", hotkeyStr, err)
		}
		name := k.ComboName()
		if name == "" {
			return nil, fmt.Errorf("invalid hotkey %q: %s cannot be used in a hotkey", hotkeyStr, p)
		}
		parts = append(parts, name)
	}
	return parts, nil
}

// Register registers a hotkey string (e.g. "Ctrl+Alt+P", "Mouse4") and a callback.
// An empty string registers nothing.
func (m *Manager) Register(hotkeyStr string, callback func()) (int, error) {
	if strings.TrimSpace(hotkeyStr) == "" {
		return -1, nil
	}

	parts, err := Normalize(hotkeyStr)
	if err != nil {
		return -1, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.hotkeys = append(m.hotkeys, &registeredHotkey{
		parts:    parts,
		original: hotkeyStr,
		callback: callback,
	})
	log.Debug().Str("hotkey", hotkeyStr).Strs("parts", parts).Msg("Hotkey: Registered")

	return len(m.hotkeys) - 1, nil
}

// Clear removes all registered hotkeys
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotkeys = nil
}

// UpdateState updates the internal state of a key or button and checks for matches.
// Auto-repeated key downs do not trigger again.
func (m *Manager) UpdateState(key string, isDown bool) {
	m.mu.Lock()
	key = strings.ToUpper(key)
	wasDown := m.currentState[key]
	if isDown {
		m.currentState[key] = true
	} else {
		delete(m.currentState, key)
	}
	m.mu.Unlock()

	if isDown && !wasDown {
		m.checkMatches(key)
	}
}

func (m *Manager) checkMatches(pressed string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, hk := range m.hotkeys {
		match := false
		// All parts must be held and the key just pressed must be one of them
		for _, part := range hk.parts {
			if !m.currentState[part] {
				match = false
				break
			}
			if part == pressed {
				match = true
			}
		}

		if match {
			log.Info().Str("hotkey", hk.original).Msg("Hotkey: Triggered")
			go hk.callback()
		}
	}
}

// Start installs the global hooks and returns once they are in place
func (m *Manager) Start() error {
	return m.startPlatform()
}

// Stop removes the global hooks. Key state is reset.
func (m *Manager) Stop() {
	m.stopPlatform()

	m.mu.Lock()
	m.currentState = make(map[string]bool)
	m.mu.Unlock()
}

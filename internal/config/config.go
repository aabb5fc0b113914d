// Package config provides configuration management for PixelMagic.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

// ErrInstallPathNotFound is returned when neither the config file nor the registry names the game folder
var ErrInstallPathNotFound = errors.New("game install path not found")

// Config represents the application configuration
type Config struct {
	Game     GameConfig     `toml:"game"`
	Rotation RotationConfig `toml:"rotation"`
	Hotkeys  HotkeyConfig   `toml:"hotkeys"`
	API      APIConfig      `toml:"api"`

	// Spells binds spell names to addon slots and keys
	Spells []SpellConfig `toml:"spells"`
}

// GameConfig locates the game client
type GameConfig struct {
	// InstallPath is the game folder; empty means look it up in the registry
	InstallPath string `toml:"install_path"`

	// ProcessNames are tried in order when looking for a running client
	ProcessNames []string `toml:"process_names"`

	// Executable is started by -launch when no client is running
	Executable string `toml:"executable"`
}

// RotationConfig selects and paces the rotation
type RotationConfig struct {
	// Name of the registered rotation to run
	Name string `toml:"name"`

	// Mode is "single" or "aoe"
	Mode string `toml:"mode"`

	// PulseIntervalMS is the time between pulses
	PulseIntervalMS int `toml:"pulse_interval_ms"`

	// RequireFocus skips pulses while the game window is in the background
	RequireFocus bool `toml:"require_focus"`

	// AutoStart starts the rotation as soon as a client is bound
	AutoStart bool `toml:"auto_start"`
}

// HotkeyConfig holds global hotkey combinations such as "Ctrl+Alt+P"
type HotkeyConfig struct {
	Toggle string `toml:"toggle"`
	Mode   string `toml:"mode"`
}

// APIConfig controls the local status API
type APIConfig struct {
	Enabled bool   `toml:"enabled"`
	Port    int    `toml:"port"`
	Token   string `toml:"token,omitempty"`
}

// SpellConfig is one spellbook entry
type SpellConfig struct {
	Name string `toml:"name"`
	Slot int    `toml:"slot"`
	Key  string `toml:"key"`
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Game: GameConfig{
			ProcessNames: []string{"Wow", "Wow-64", "WowB-64"},
			Executable:   "Wow-64.exe",
		},
		Rotation: RotationConfig{
			Name:            "Warrior Sample",
			Mode:            "single",
			PulseIntervalMS: 250,
			RequireFocus:    true,
		},
		Hotkeys: HotkeyConfig{
			Toggle: "Ctrl+Alt+P",
			Mode:   "Ctrl+Alt+M",
		},
		API: APIConfig{
			Enabled: true,
			Port:    18090,
		},
		Spells: []SpellConfig{
			{Name: "Charge", Slot: 1, Key: "D1"},
		},
	}
}

// PulseInterval returns the configured pulse interval
func (c *Config) PulseInterval() time.Duration {
	return time.Duration(c.Rotation.PulseIntervalMS) * time.Millisecond
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Rotation.PulseIntervalMS <= 0 {
		return fmt.Errorf("rotation.pulse_interval_ms must be positive, got %d", c.Rotation.PulseIntervalMS)
	}
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	for i, s := range c.Spells {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("spells[%d]: name is empty", i)
		}
		if s.Slot < 1 {
			return fmt.Errorf("spells[%d] %s: slot must be >= 1", i, s.Name)
		}
	}
	return nil
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
	onChanged  func()

	// lookupInstallPath reads the install path from the system; replaced in tests
	lookupInstallPath func() (string, error)
}

// NewManager creates a configuration manager for the default per-user config file
func NewManager() (*Manager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(configPath), nil
}

// NewManagerAt creates a configuration manager for the file at path
func NewManagerAt(path string) *Manager {
	return &Manager{
		configPath:        path,
		config:            DefaultConfig(),
		lookupInstallPath: registryInstallPath,
	}
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "pixelmagic")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "pixelmagic")
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Path returns the config file location
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration from disk. A missing file keeps the defaults.
func (m *Manager) Load() error {
	m.mu.Lock()

	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(m.configPath, cfg); err != nil {
		m.mu.Unlock()
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Str("path", m.configPath).Msg("Config: No config file, using defaults")
			return nil
		}
		return fmt.Errorf("parse %s: %w", m.configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}
	m.config = cfg
	onChanged := m.onChanged
	m.mu.Unlock()

	log.Info().Str("path", m.configPath).Msg("Config: Loaded")
	if onChanged != nil {
		onChanged()
	}
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return err
	}

	f, err := os.Create(m.configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	log.Info().Str("path", m.configPath).Msg("Config: Saving configuration")
	if err := toml.NewEncoder(f).Encode(m.config); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config.clone()
}

// Set replaces the configuration
func (m *Manager) Set(config *Config) {
	m.mu.Lock()
	m.config = config.clone()
	onChanged := m.onChanged
	m.mu.Unlock()
	if onChanged != nil {
		onChanged()
	}
}

// Update applies fn to the configuration under the manager's lock
func (m *Manager) Update(fn func(*Config)) {
	m.mu.Lock()
	fn(m.config)
	onChanged := m.onChanged
	m.mu.Unlock()
	if onChanged != nil {
		onChanged()
	}
}

// RegisterChangeCallback registers a function to be called when config changes
func (m *Manager) RegisterChangeCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = fn
}

// InstallPath returns the configured game folder. When none is configured it
// is read from the registry and saved back to the config file.
func (m *Manager) InstallPath() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p := strings.TrimSpace(m.config.Game.InstallPath); p != "" {
		return p, nil
	}

	p, err := m.lookupInstallPath()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInstallPathNotFound, err)
	}
	p = strings.TrimSpace(p)
	if p == "" {
		return "", ErrInstallPathNotFound
	}

	log.Info().Str("install_path", p).Msg("Config: Install path found in registry")
	m.config.Game.InstallPath = p
	if err := m.saveLocked(); err != nil {
		log.Warn().Err(err).Msg("Config: Failed to persist install path")
	}
	return p, nil
}

// AddonPath returns the game's AddOns folder
func (m *Manager) AddonPath() (string, error) {
	p, err := m.InstallPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(p, "Interface", "AddOns"), nil
}

func (c *Config) clone() *Config {
	out := *c
	out.Game.ProcessNames = append([]string(nil), c.Game.ProcessNames...)
	out.Spells = append([]SpellConfig(nil), c.Spells...)
	return &out
}

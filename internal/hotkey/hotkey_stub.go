//go:build !windows

package hotkey

import "github.com/rs/zerolog/log"

func (m *Manager) startPlatform() error {
	log.Warn().Msg("Hotkey Engine: Global hooks not supported on this platform.")
	return nil
}

func (m *Manager) stopPlatform() {}

// Package osutils holds small operating system helpers.
package osutils

import "github.com/rs/zerolog/log"

// Privileges describes the access level of the running process
type Privileges struct {
	Admin    bool // member of the administrators group
	Elevated bool // token carries the full administrator rights
}

// IsElevated reports whether window messages can reach an elevated game client
func IsElevated() bool {
	return CurrentPrivileges().Elevated
}

// WarnIfNotElevated logs a warning when input may be filtered by the OS
func WarnIfNotElevated() bool {
	return warnPrivileges(CurrentPrivileges())
}

func warnPrivileges(p Privileges) bool {
	switch {
	case p.Elevated:
		return true
	case p.Admin:
		log.Warn().Msg("OS: Administrator account but not elevated. Restart with \"Run as administrator\" if the game ignores key presses.")
	default:
		log.Warn().Msg("OS: Not running elevated. If the game runs as administrator, key presses will be ignored by it.")
	}
	return false
}

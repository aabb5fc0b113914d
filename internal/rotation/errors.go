package rotation

import "errors"

var (
	// ErrNotActive is returned when pulsing a rotation that is not initialized or already stopped
	ErrNotActive = errors.New("rotation is not active")

	// ErrAlreadyInitialized is returned by a second Initialize
	ErrAlreadyInitialized = errors.New("rotation already initialized")

	// ErrStopped is returned when initializing a rotation that has been stopped
	ErrStopped = errors.New("rotation has been stopped")

	// ErrUnknownRotation is returned when no rotation is registered under a name
	ErrUnknownRotation = errors.New("unknown rotation")

	// ErrDuplicateRotation is returned when a name is registered twice
	ErrDuplicateRotation = errors.New("rotation already registered")

	// ErrUnknownSpell is returned when a rotation asks for a spell missing from its spellbook
	ErrUnknownSpell = errors.New("unknown spell")

	// ErrClientExited ends a loop when the bound game process is gone
	ErrClientExited = errors.New("game client exited")
)

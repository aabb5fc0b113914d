package binding

import "errors"

var (
	// ErrNoBinding is returned by operations that need a live game client when none is bound
	ErrNoBinding = errors.New("no game client bound")

	// ErrProcessNotFound is returned when none of the configured process names is running
	ErrProcessNotFound = errors.New("game process not found")

	// ErrWindowNotFound is returned when the game process has no visible top-level window yet
	ErrWindowNotFound = errors.New("game window not found")

	// ErrUnsupportedPlatform is returned when window lookup is not available on this OS
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

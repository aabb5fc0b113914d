// Package input delivers synthetic keyboard and mouse input to the game window.
package input

import (
	"errors"

	"pixelmagic/internal/binding"
)

// ErrStaleWindow is returned when input is addressed to a window that no longer exists
var ErrStaleWindow = errors.New("window handle is no longer valid")

// Poster delivers raw input messages. Implementations are platform specific.
type Poster interface {
	KeyDown(w binding.Window, k Key) error
	KeyUp(w binding.Window, k Key) error
	Char(w binding.Window, r rune) error

	// LeftClick clicks at absolute screen coordinates
	LeftClick(x, y int) error
}

//go:build !windows

package input

import "pixelmagic/internal/binding"

// NewSystemPoster returns an error on platforms without window messages
func NewSystemPoster() (Poster, error) {
	return nil, binding.ErrUnsupportedPlatform
}

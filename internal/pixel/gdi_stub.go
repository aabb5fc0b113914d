//go:build !windows

package pixel

// NewSystemSurface returns the platform capture surface (stub)
func NewSystemSurface() (Surface, error) {
	return nil, ErrUnsupportedPlatform
}

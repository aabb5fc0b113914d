//go:build !windows

package binding

// Stub implementation for non-Windows platforms

func findMainWindow(pid uint32) (uintptr, error) {
	return 0, ErrUnsupportedPlatform
}

type systemDesktop struct{}

// SystemDesktop returns a Desktop that never reports a foreground window (stub)
func SystemDesktop() Desktop {
	return systemDesktop{}
}

func (systemDesktop) ForegroundProcessID() (uint32, bool) {
	return 0, false
}

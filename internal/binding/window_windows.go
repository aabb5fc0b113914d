//go:build windows

package binding

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

type windowSearch struct {
	pid  uint32
	hwnd windows.HWND
}

// Created once; callback slots are a limited process-wide resource.
var enumWindowsCallback = windows.NewCallback(func(hwnd windows.HWND, lparam uintptr) uintptr {
	s := (*windowSearch)(unsafe.Pointer(lparam))

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
		return 1
	}
	if pid == s.pid && windows.IsWindowVisible(hwnd) {
		s.hwnd = hwnd
		return 0 // stop enumeration
	}
	return 1
})

// findMainWindow returns the first visible top-level window owned by pid
func findMainWindow(pid uint32) (uintptr, error) {
	s := &windowSearch{pid: pid}
	// EnumWindows reports an error when the callback stops early; the result is in s.
	_ = windows.EnumWindows(enumWindowsCallback, unsafe.Pointer(s))
	runtime.KeepAlive(s)

	if s.hwnd == 0 {
		return 0, ErrWindowNotFound
	}
	return uintptr(s.hwnd), nil
}

type systemDesktop struct{}

// SystemDesktop returns the Desktop backed by the Windows foreground window
func SystemDesktop() Desktop {
	return systemDesktop{}
}

func (systemDesktop) ForegroundProcessID() (uint32, bool) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return 0, false
	}
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
		return 0, false
	}
	return pid, true
}

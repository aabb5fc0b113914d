//go:build windows

package pixel

import (
	"fmt"
	"image/color"

	"pixelmagic/internal/binding"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	gdi32        = windows.NewLazySystemDLL("gdi32.dll")
	procGetPixel = gdi32.NewProc("GetPixel")
)

const clrInvalid = 0xFFFFFFFF

// GDISurface copies window pixels into a 1x1 bitmap selected into a memory DC
type GDISurface struct {
	mem win.HDC
	bmp win.HBITMAP
	old win.HGDIOBJ
}

// NewGDISurface allocates the memory DC and its 1x1 bitmap
func NewGDISurface() (*GDISurface, error) {
	screen := win.GetDC(0)
	if screen == 0 {
		return nil, fmt.Errorf("GetDC failed: %v", win.GetLastError())
	}
	defer win.ReleaseDC(0, screen)

	mem := win.CreateCompatibleDC(screen)
	if mem == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC failed: %v", win.GetLastError())
	}

	bmp := win.CreateCompatibleBitmap(screen, 1, 1)
	if bmp == 0 {
		win.DeleteDC(mem)
		return nil, fmt.Errorf("CreateCompatibleBitmap failed: %v", win.GetLastError())
	}

	old := win.SelectObject(mem, win.HGDIOBJ(bmp))
	return &GDISurface{mem: mem, bmp: bmp, old: old}, nil
}

// NewSystemSurface returns the platform capture surface
func NewSystemSurface() (Surface, error) {
	return NewGDISurface()
}

// Copy implements Surface
func (s *GDISurface) Copy(w binding.Window, x, y int) error {
	hwnd := win.HWND(w.Handle)
	src := win.GetDC(hwnd)
	if src == 0 {
		return fmt.Errorf("GetDC(0x%X) failed: %v", w.Handle, win.GetLastError())
	}
	defer win.ReleaseDC(hwnd, src)

	if !win.BitBlt(s.mem, 0, 0, 1, 1, src, int32(x), int32(y), win.SRCCOPY) {
		return fmt.Errorf("BitBlt failed: %v", win.GetLastError())
	}
	return nil
}

// Read implements Surface
func (s *GDISurface) Read() (color.RGBA, error) {
	ret, _, err := procGetPixel.Call(uintptr(s.mem), 0, 0)
	if uint32(ret) == clrInvalid {
		return Black, fmt.Errorf("GetPixel failed: %v", err)
	}
	// COLORREF is 0x00BBGGRR
	c := uint32(ret)
	return color.RGBA{R: uint8(c), G: uint8(c >> 8), B: uint8(c >> 16), A: 255}, nil
}

// Close releases the GDI objects
func (s *GDISurface) Close() error {
	if s.mem == 0 {
		return nil
	}
	win.SelectObject(s.mem, s.old)
	win.DeleteObject(win.HGDIOBJ(s.bmp))
	win.DeleteDC(s.mem)
	s.mem = 0
	return nil
}

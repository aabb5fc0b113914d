//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"pixelmagic/internal/binding"
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputMouse         = 0
	mouseEventLeftDown = 0x0002
	mouseEventLeftUp   = 0x0004
)

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type mouseEvent struct {
	Type uint32
	Mi   mouseInput
}

// MessagePoster posts window messages straight to the game window, so input
// does not depend on which window has focus. Clicks go through SendInput.
type MessagePoster struct{}

// NewMessagePoster returns the Windows message poster
func NewMessagePoster() *MessagePoster {
	return &MessagePoster{}
}

// NewSystemPoster returns the poster for the current platform
func NewSystemPoster() (Poster, error) {
	return NewMessagePoster(), nil
}

func checkWindow(w binding.Window) (win.HWND, error) {
	if !windows.IsWindow(windows.HWND(w.Handle)) {
		return 0, fmt.Errorf("%w: 0x%X", ErrStaleWindow, w.Handle)
	}
	return win.HWND(w.Handle), nil
}

// KeyDown sends WM_KEYDOWN
func (p *MessagePoster) KeyDown(w binding.Window, k Key) error {
	hwnd, err := checkWindow(w)
	if err != nil {
		return err
	}
	win.SendMessage(hwnd, win.WM_KEYDOWN, uintptr(k), 0)
	return nil
}

// KeyUp sends WM_KEYUP
func (p *MessagePoster) KeyUp(w binding.Window, k Key) error {
	hwnd, err := checkWindow(w)
	if err != nil {
		return err
	}
	win.SendMessage(hwnd, win.WM_KEYUP, uintptr(k), 0)
	return nil
}

// Char posts WM_CHAR
func (p *MessagePoster) Char(w binding.Window, r rune) error {
	hwnd, err := checkWindow(w)
	if err != nil {
		return err
	}
	if win.PostMessage(hwnd, win.WM_CHAR, uintptr(r), 0) == 0 {
		return fmt.Errorf("PostMessage WM_CHAR failed: %d", win.GetLastError())
	}
	return nil
}

// LeftClick moves the cursor to (x, y) and clicks the left button
func (p *MessagePoster) LeftClick(x, y int) error {
	if !win.SetCursorPos(int32(x), int32(y)) {
		return fmt.Errorf("SetCursorPos failed: %d", win.GetLastError())
	}

	inputs := [2]mouseEvent{
		{Type: inputMouse, Mi: mouseInput{DwFlags: mouseEventLeftDown}},
		{Type: inputMouse, Mi: mouseInput{DwFlags: mouseEventLeftUp}},
	}
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if n != uintptr(len(inputs)) {
		return fmt.Errorf("SendInput failed: %w", err)
	}
	return nil
}

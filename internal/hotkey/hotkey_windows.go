//go:build windows

package hotkey

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/lxn/win"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows"

	"pixelmagic/internal/input"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	// bit set in GET_XBUTTON_WPARAM for the first extra button
	xButton1 = 1
)

// lowLevelKey mirrors KBDLLHOOKSTRUCT
type lowLevelKey struct {
	VkCode    uint32
	ScanCode  uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// lowLevelMouse mirrors MSLLHOOKSTRUCT
type lowLevelMouse struct {
	X, Y      int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// hookThread owns the low-level hooks and the message loop that services them.
// Windows delivers hook callbacks on the installing thread, so both live on one locked OS thread.
type hookThread struct {
	mgr      *Manager
	threadID uint32
	keyboard uintptr
	mouse    uintptr
}

var (
	active *hookThread

	// NewCallback slots are never released; create each trampoline once
	keyboardProc = windows.NewCallback(keyboardHook)
	mouseProc    = windows.NewCallback(mouseHook)
)

func (m *Manager) startPlatform() error {
	if active != nil {
		return fmt.Errorf("global hooks already running")
	}

	ready := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		h := &hookThread{mgr: m, threadID: windows.GetCurrentThreadId()}
		if err := h.install(); err != nil {
			ready <- err
			return
		}
		active = h
		ready <- nil

		log.Info().Msg("Hotkey Engine: Global keyboard and mouse hooks installed")
		h.pump()
		h.uninstall()
		active = nil
		log.Info().Msg("Hotkey Engine: Global hooks removed")
	}()

	return <-ready
}

func (m *Manager) stopPlatform() {
	if h := active; h != nil {
		procPostThreadMessage.Call(uintptr(h.threadID), win.WM_QUIT, 0, 0)
	}
}

func (h *hookThread) install() error {
	mod := win.GetModuleHandle(nil)

	kbd, _, err := procSetWindowsHookEx.Call(whKeyboardLL, keyboardProc, uintptr(mod), 0)
	if kbd == 0 {
		return fmt.Errorf("SetWindowsHookEx(keyboard): %w", err)
	}
	ms, _, err := procSetWindowsHookEx.Call(whMouseLL, mouseProc, uintptr(mod), 0)
	if ms == 0 {
		procUnhookWindowsHookEx.Call(kbd)
		return fmt.Errorf("SetWindowsHookEx(mouse): %w", err)
	}

	h.keyboard, h.mouse = kbd, ms
	return nil
}

func (h *hookThread) uninstall() {
	procUnhookWindowsHookEx.Call(h.keyboard)
	procUnhookWindowsHookEx.Call(h.mouse)
}

// pump runs until WM_QUIT or a GetMessage failure
func (h *hookThread) pump() {
	var msg win.MSG
	for win.GetMessage(&msg, 0, 0, 0) > 0 {
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

func keyboardHook(code int, wParam, lParam uintptr) uintptr {
	h := active
	if code == 0 && h != nil {
		ev := (*lowLevelKey)(unsafe.Pointer(lParam))
		if name := input.Key(ev.VkCode).ComboName(); name != "" {
			switch wParam {
			case win.WM_KEYDOWN, win.WM_SYSKEYDOWN:
				h.mgr.UpdateState(name, true)
			case win.WM_KEYUP, win.WM_SYSKEYUP:
				h.mgr.UpdateState(name, false)
			}
		}
	}
	return callNext(code, wParam, lParam)
}

func mouseHook(code int, wParam, lParam uintptr) uintptr {
	h := active
	if code == 0 && h != nil {
		ev := (*lowLevelMouse)(unsafe.Pointer(lParam))
		if key, down, ok := mouseButton(wParam, ev.MouseData); ok {
			h.mgr.UpdateState(key.ComboName(), down)
		}
	}
	return callNext(code, wParam, lParam)
}

// mouseButton maps a low-level mouse message to its virtual key
func mouseButton(msg uintptr, data uint32) (input.Key, bool, bool) {
	switch msg {
	case win.WM_LBUTTONDOWN, win.WM_LBUTTONUP:
		return input.KeyLButton, msg == win.WM_LBUTTONDOWN, true
	case win.WM_RBUTTONDOWN, win.WM_RBUTTONUP:
		return input.KeyRButton, msg == win.WM_RBUTTONDOWN, true
	case win.WM_MBUTTONDOWN, win.WM_MBUTTONUP:
		return input.KeyMButton, msg == win.WM_MBUTTONDOWN, true
	case win.WM_XBUTTONDOWN, win.WM_XBUTTONUP:
		k := input.KeyXButton2
		if data>>16 == xButton1 {
			k = input.KeyXButton1
		}
		return k, msg == win.WM_XBUTTONDOWN, true
	}
	return 0, false, false
}

func callNext(code int, wParam, lParam uintptr) uintptr {
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(code), wParam, lParam)
	return ret
}

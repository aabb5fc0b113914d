package input

import (
	"fmt"
	"strings"
)

// Key is a Windows virtual-key code
type Key uint16

const (
	KeyNone        Key = 0x00
	KeyLButton     Key = 0x01
	KeyRButton     Key = 0x02
	KeyCancel      Key = 0x03
	KeyMButton     Key = 0x04
	KeyXButton1    Key = 0x05
	KeyXButton2    Key = 0x06
	KeyBack        Key = 0x08
	KeyTab         Key = 0x09
	KeyLineFeed    Key = 0x0A
	KeyClear       Key = 0x0C
	KeyEnter       Key = 0x0D
	KeyShift       Key = 0x10
	KeyControl     Key = 0x11
	KeyMenu        Key = 0x12
	KeyPause       Key = 0x13
	KeyCapsLock    Key = 0x14
	KeyEscape      Key = 0x1B
	KeySpace       Key = 0x20
	KeyPageUp      Key = 0x21
	KeyPageDown    Key = 0x22
	KeyEnd         Key = 0x23
	KeyHome        Key = 0x24
	KeyLeft        Key = 0x25
	KeyUp          Key = 0x26
	KeyRight       Key = 0x27
	KeyDown        Key = 0x28
	KeySelect      Key = 0x29
	KeyPrint       Key = 0x2A
	KeyExecute     Key = 0x2B
	KeyPrintScreen Key = 0x2C
	KeyInsert      Key = 0x2D
	KeyDelete      Key = 0x2E
	KeyHelp        Key = 0x2F

	KeyD0 Key = 0x30
	KeyD1 Key = 0x31
	KeyD2 Key = 0x32
	KeyD3 Key = 0x33
	KeyD4 Key = 0x34
	KeyD5 Key = 0x35
	KeyD6 Key = 0x36
	KeyD7 Key = 0x37
	KeyD8 Key = 0x38
	KeyD9 Key = 0x39

	KeyA Key = 0x41
	KeyZ Key = 0x5A

	KeyLWin  Key = 0x5B
	KeyRWin  Key = 0x5C
	KeyApps  Key = 0x5D
	KeySleep Key = 0x5F

	KeyNumPad0   Key = 0x60
	KeyMultiply  Key = 0x6A
	KeyAdd       Key = 0x6B
	KeySeparator Key = 0x6C
	KeySubtract  Key = 0x6D
	KeyDecimal   Key = 0x6E
	KeyDivide    Key = 0x6F

	KeyF1  Key = 0x70
	KeyF24 Key = 0x87

	KeyNumLock  Key = 0x90
	KeyScroll   Key = 0x91
	KeyLShift   Key = 0xA0
	KeyRShift   Key = 0xA1
	KeyLControl Key = 0xA2
	KeyRControl Key = 0xA3
	KeyLMenu    Key = 0xA4
	KeyRMenu    Key = 0xA5

	KeyVolumeMute  Key = 0xAD
	KeyVolumeDown  Key = 0xAE
	KeyVolumeUp    Key = 0xAF
	KeyMediaNext   Key = 0xB0
	KeyMediaPrev   Key = 0xB1
	KeyMediaStop   Key = 0xB2
	KeyMediaPlay   Key = 0xB3
	KeyOemSemi     Key = 0xBA
	KeyOemPlus     Key = 0xBB
	KeyOemComma    Key = 0xBC
	KeyOemMinus    Key = 0xBD
	KeyOemPeriod   Key = 0xBE
	KeyOemQuestion Key = 0xBF
	KeyOemTilde    Key = 0xC0
	KeyOemOpen     Key = 0xDB
	KeyOemPipe     Key = 0xDC
	KeyOemClose    Key = 0xDD
	KeyOemQuotes   Key = 0xDE
	KeyOem8        Key = 0xDF
	KeyOem102      Key = 0xE2
)

// names lists the canonical name of each key first, followed by aliases
var names = []struct {
	key     Key
	aliases []string
}{
	{KeyLButton, []string{"LButton", "Mouse1"}},
	{KeyRButton, []string{"RButton", "Mouse3"}},
	{KeyCancel, []string{"Cancel"}},
	{KeyMButton, []string{"MButton", "Mouse2"}},
	{KeyXButton1, []string{"XButton1", "Mouse4"}},
	{KeyXButton2, []string{"XButton2", "Mouse5"}},
	{KeyBack, []string{"Back", "Backspace"}},
	{KeyTab, []string{"Tab"}},
	{KeyLineFeed, []string{"LineFeed"}},
	{KeyClear, []string{"Clear"}},
	{KeyEnter, []string{"Enter", "Return"}},
	{KeyShift, []string{"ShiftKey", "Shift"}},
	{KeyControl, []string{"ControlKey", "Ctrl", "Control"}},
	{KeyMenu, []string{"Menu", "Alt"}},
	{KeyPause, []string{"Pause"}},
	{KeyCapsLock, []string{"CapsLock", "Capital"}},
	{KeyEscape, []string{"Escape", "Esc"}},
	{KeySpace, []string{"Space"}},
	{KeyPageUp, []string{"PageUp", "Prior"}},
	{KeyPageDown, []string{"PageDown", "Next"}},
	{KeyEnd, []string{"End"}},
	{KeyHome, []string{"Home"}},
	{KeyLeft, []string{"Left"}},
	{KeyUp, []string{"Up"}},
	{KeyRight, []string{"Right"}},
	{KeyDown, []string{"Down"}},
	{KeySelect, []string{"Select"}},
	{KeyPrint, []string{"Print"}},
	{KeyExecute, []string{"Execute"}},
	{KeyPrintScreen, []string{"PrintScreen", "Snapshot"}},
	{KeyInsert, []string{"Insert"}},
	{KeyDelete, []string{"Delete"}},
	{KeyHelp, []string{"Help"}},
	{KeyLWin, []string{"LWin", "Cmd", "Win"}},
	{KeyRWin, []string{"RWin"}},
	{KeyApps, []string{"Apps"}},
	{KeySleep, []string{"Sleep"}},
	{KeyMultiply, []string{"Multiply"}},
	{KeyAdd, []string{"Add"}},
	{KeySeparator, []string{"Separator"}},
	{KeySubtract, []string{"Subtract"}},
	{KeyDecimal, []string{"Decimal"}},
	{KeyDivide, []string{"Divide"}},
	{KeyNumLock, []string{"NumLock"}},
	{KeyScroll, []string{"Scroll", "ScrollLock"}},
	{KeyLShift, []string{"LShiftKey"}},
	{KeyRShift, []string{"RShiftKey"}},
	{KeyLControl, []string{"LControlKey"}},
	{KeyRControl, []string{"RControlKey"}},
	{KeyLMenu, []string{"LMenu"}},
	{KeyRMenu, []string{"RMenu"}},
	{KeyVolumeMute, []string{"VolumeMute"}},
	{KeyVolumeDown, []string{"VolumeDown"}},
	{KeyVolumeUp, []string{"VolumeUp"}},
	{KeyMediaNext, []string{"MediaNextTrack"}},
	{KeyMediaPrev, []string{"MediaPreviousTrack"}},
	{KeyMediaStop, []string{"MediaStop"}},
	{KeyMediaPlay, []string{"MediaPlayPause"}},
	{KeyOemSemi, []string{"OemSemicolon", "Oem1"}},
	{KeyOemPlus, []string{"Oemplus"}},
	{KeyOemComma, []string{"Oemcomma"}},
	{KeyOemMinus, []string{"OemMinus"}},
	{KeyOemPeriod, []string{"OemPeriod"}},
	{KeyOemQuestion, []string{"OemQuestion", "Oem2"}},
	{KeyOemTilde, []string{"Oemtilde", "Oem3"}},
	{KeyOemOpen, []string{"OemOpenBrackets", "Oem4"}},
	{KeyOemPipe, []string{"OemPipe", "Oem5"}},
	{KeyOemClose, []string{"OemCloseBrackets", "Oem6"}},
	{KeyOemQuotes, []string{"OemQuotes", "Oem7"}},
	{KeyOem8, []string{"Oem8"}},
	{KeyOem102, []string{"OemBackslash", "Oem102"}},
}

var (
	byName    = make(map[string]Key)
	canonical = make(map[Key]string)
)

func addName(k Key, name string) {
	byName[strings.ToUpper(name)] = k
	if _, ok := canonical[k]; !ok {
		canonical[k] = name
	}
}

func init() {
	for _, n := range names {
		for _, alias := range n.aliases {
			addName(n.key, alias)
		}
	}
	for i := Key(0); i <= 9; i++ {
		addName(KeyD0+i, fmt.Sprintf("D%d", i))
		addName(KeyD0+i, fmt.Sprintf("%d", i))
		addName(KeyNumPad0+i, fmt.Sprintf("NumPad%d", i))
	}
	for k := KeyA; k <= KeyZ; k++ {
		addName(k, string(rune(k)))
	}
	for k := KeyF1; k <= KeyF24; k++ {
		addName(k, fmt.Sprintf("F%d", k-KeyF1+1))
	}
}

// ParseKey resolves a key name such as "D1", "F5", "NumPad4" or "Enter", ignoring case
func ParseKey(name string) (Key, error) {
	k, ok := byName[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return KeyNone, fmt.Errorf("unknown key: %q", name)
	}
	return k, nil
}

// String returns the canonical key name
func (k Key) String() string {
	if name, ok := canonical[k]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint16(k))
}

// ComboName returns the upper-case token used in hotkey strings such as "Ctrl+Alt+P".
// Left/right variants of a modifier share one token.
func (k Key) ComboName() string {
	switch k {
	case KeyControl, KeyLControl, KeyRControl:
		return "CTRL"
	case KeyMenu, KeyLMenu, KeyRMenu:
		return "ALT"
	case KeyShift, KeyLShift, KeyRShift:
		return "SHIFT"
	case KeyLWin, KeyRWin:
		return "CMD" // Windows key as CMD for consistency
	case KeyEscape:
		return "ESC"
	case KeyBack:
		return "BACKSPACE"
	case KeyLButton:
		return "MOUSE1"
	case KeyMButton:
		return "MOUSE2"
	case KeyRButton:
		return "MOUSE3"
	case KeyXButton1:
		return "MOUSE4"
	case KeyXButton2:
		return "MOUSE5"
	case KeyScroll:
		return "SCROLLLOCK"
	}
	if k >= KeyD0 && k <= KeyD9 {
		return string(rune(k))
	}
	if _, ok := canonical[k]; !ok {
		return ""
	}
	return strings.ToUpper(k.String())
}

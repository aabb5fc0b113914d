// Package tray provides system tray functionality using getlantern/systray.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// MenuItem represents a menu item
type MenuItem struct {
	ID       int
	Title    string
	Callback func()
	Checked  bool
	Disabled bool
	item     *systray.MenuItem
}

// Tray manages the system tray icon and menu. Item state set before the
// menu exists is applied when it is created.
type Tray struct {
	mu      sync.Mutex
	items   []*MenuItem
	tooltip string
	onReady func()
	onExit  func()
	readyCh chan struct{}
	quitCh  chan struct{}
}

// New creates a new system tray
func New(tooltip string) *Tray {
	t := &Tray{
		items:   make([]*MenuItem, 0),
		tooltip: tooltip,
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}

	t.onReady = func() {
		systray.SetTitle("PixelMagic")
		t.mu.Lock()
		systray.SetTooltip(t.tooltip)
		t.mu.Unlock()
		systray.SetIcon(getIcon())
		close(t.readyCh)
	}

	t.onExit = func() {
		close(t.quitCh)
	}

	return t
}

// AddMenuItem adds a menu item to the tray
func (t *Tray) AddMenuItem(title string, callback func()) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := len(t.items)
	menuItem := &MenuItem{
		ID:       id,
		Title:    title,
		Callback: callback,
	}
	t.items = append(t.items, menuItem)
	return id
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, nil) // nil indicates separator
}

func (t *Tray) lookup(id int) *MenuItem {
	if id >= 0 && id < len(t.items) {
		return t.items[id]
	}
	return nil
}

// SetItemChecked sets the checked state of a menu item
func (t *Tray) SetItemChecked(id int, checked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi := t.lookup(id)
	if mi == nil {
		return
	}
	mi.Checked = checked
	if mi.item != nil {
		if checked {
			mi.item.Check()
		} else {
			mi.item.Uncheck()
		}
	}
}

// SetItemTitle changes the label of a menu item
func (t *Tray) SetItemTitle(id int, title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi := t.lookup(id)
	if mi == nil {
		return
	}
	mi.Title = title
	if mi.item != nil {
		mi.item.SetTitle(title)
	}
}

// SetItemEnabled enables or greys out a menu item
func (t *Tray) SetItemEnabled(id int, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi := t.lookup(id)
	if mi == nil {
		return
	}
	mi.Disabled = !enabled
	if mi.item != nil {
		if enabled {
			mi.item.Enable()
		} else {
			mi.item.Disable()
		}
	}
}

// SetTooltip changes the tray icon tooltip
func (t *Tray) SetTooltip(tooltip string) {
	t.mu.Lock()
	t.tooltip = tooltip
	t.mu.Unlock()

	select {
	case <-t.readyCh:
		systray.SetTooltip(tooltip)
	default:
	}
}

// Run starts the tray event loop (blocks)
func (t *Tray) Run() {
	systray.Run(t.setupMenu, t.onExit)
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	t.onReady()

	// Wait for ready signal
	<-t.readyCh

	t.mu.Lock()
	defer t.mu.Unlock()

	// Create menu items
	for _, menuItem := range t.items {
		if menuItem == nil {
			// Separator
			systray.AddSeparator()
		} else {
			item := systray.AddMenuItem(menuItem.Title, "")
			if menuItem.Checked {
				item.Check()
			}
			if menuItem.Disabled {
				item.Disable()
			}
			menuItem.item = item

			// Handle clicks in goroutine
			if menuItem.Callback != nil {
				go func(mi *MenuItem) {
					for {
						select {
						case <-mi.item.ClickedCh:
							mi.Callback()
						case <-t.quitCh:
							return
						}
					}
				}(menuItem)
			}
		}
	}
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}

// getIcon returns a 16x16 32-bit ICO showing a red and black 4x4 cell grid
func getIcon() []byte {
	icon := make([]byte, 1118)
	// ICO Header
	copy(icon[0:6], []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	// Icon Directory
	copy(icon[6:22], []byte{
		0x10, 0x10, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00,
		0x48, 0x04, 0x00, 0x00, // Size: 1024 (pixels) + 40 (header) + 32 (mask) = 1096 bytes
		0x16, 0x00, 0x00, 0x00, // Offset
	})
	// DIB Header
	copy(icon[22:62], []byte{
		0x28, 0x00, 0x00, 0x00, // Size
		0x10, 0x00, 0x00, 0x00, // Width
		0x20, 0x00, 0x00, 0x00, // Height (16 * 2 for icon)
		0x01, 0x00, // Planes
		0x20, 0x00, // BPP
		0x00, 0x00, 0x00, 0x00, // Compression
		0x00, 0x04, 0x00, 0x00, // Image Size
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	})
	// Pixels are BGRA, bottom-up; the AND mask after them stays zero
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			off := 62 + (y*16+x)*4
			if (x/4+y/4)%2 == 0 {
				icon[off+2] = 0xFF
			}
			icon[off+3] = 0xFF
		}
	}
	return icon
}

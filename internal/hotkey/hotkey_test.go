package hotkey

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, n *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if n.Load() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("Expected %d callbacks, got %d", want, n.Load())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Ctrl+Alt+P", []string{"CTRL", "ALT", "P"}},
		{"ctrl + shift + 1", []string{"CTRL", "SHIFT", "1"}},
		{"Alt+Return", []string{"ALT", "ENTER"}},
		{"Mouse4", []string{"MOUSE4"}},
		{"Ctrl+F12", []string{"CTRL", "F12"}},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if err != nil {
			t.Errorf("Normalize(%q) failed: %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("Normalize(%q): expected %v, got %v", tt.in, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Normalize(%q): expected %v, got %v", tt.in, tt.want, got)
				break
			}
		}
	}

	for _, bad := range []string{"Ctrl++P", "Ctrl+Banana", "Hyper+1"} {
		if _, err := Normalize(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestRegisterEmptyIsNoop(t *testing.T) {
	m := NewManager()
	id, err := m.Register("  ", func() {})
	if err != nil || id != -1 {
		t.Errorf("Expected (-1, nil), got (%d, %v)", id, err)
	}
}

func TestComboTriggersOnce(t *testing.T) {
	m := NewManager()
	var calls atomic.Int32
	if _, err := m.Register("Ctrl+Alt+P", func() { calls.Add(1) }); err != nil {
		t.Fatal(err)
	}

	m.UpdateState("CTRL", true)
	m.UpdateState("ALT", true)
	m.UpdateState("P", true)
	m.UpdateState("P", true) // auto-repeat
	waitFor(t, &calls, 1)

	m.UpdateState("P", false)
	m.UpdateState("P", true)
	waitFor(t, &calls, 2)
}

func TestUnrelatedKeyDoesNotRetrigger(t *testing.T) {
	m := NewManager()
	var calls atomic.Int32
	m.Register("Ctrl+P", func() { calls.Add(1) })

	m.UpdateState("CTRL", true)
	m.UpdateState("P", true)
	m.UpdateState("X", true)
	waitFor(t, &calls, 1)
}

func TestPartialComboDoesNotTrigger(t *testing.T) {
	m := NewManager()
	var calls atomic.Int32
	m.Register("Ctrl+Alt+M", func() { calls.Add(1) })

	m.UpdateState("ALT", true)
	m.UpdateState("M", true)
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("Expected no callback, got %d", calls.Load())
	}

	m.Clear()
	m.UpdateState("CTRL", true)
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("Expected no callback after Clear, got %d", calls.Load())
	}
}

func TestStopResetsHeldKeys(t *testing.T) {
	m := NewManager()
	var calls atomic.Int32
	m.Register("Ctrl+P", func() { calls.Add(1) })

	m.UpdateState("CTRL", true)
	m.Stop()
	m.UpdateState("P", true)
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("Expected held keys to be dropped by Stop, got %d callbacks", calls.Load())
	}
}

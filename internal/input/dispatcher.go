package input

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"pixelmagic/internal/binding"
)

const (
	// MinKeyHold is the shortest time a key stays pressed
	MinKeyHold = 50 * time.Millisecond

	// KeyJitter bounds the random time added to every hold
	KeyJitter = 50 * time.Millisecond

	tapHold    = 50 * time.Millisecond
	macroPause = 100 * time.Millisecond
)

// Dispatcher sends key presses, clicks and chat macros to the bound window
type Dispatcher struct {
	src    binding.Source
	poster Poster

	jitter func() time.Duration
	sleep  func(time.Duration)
}

// NewDispatcher creates a dispatcher that targets the window reported by src
func NewDispatcher(src binding.Source, poster Poster) *Dispatcher {
	return &Dispatcher{
		src:    src,
		poster: poster,
		jitter: func() time.Duration { return rand.N(KeyJitter) },
		sleep:  time.Sleep,
	}
}

func (d *Dispatcher) window() (binding.Window, error) {
	w, ok := d.src.Current()
	if !ok {
		return binding.Window{}, binding.ErrNoBinding
	}
	return w, nil
}

// SendKey presses and releases k with the minimum hold
func (d *Dispatcher) SendKey(k Key) error {
	return d.SendKeyHold(k, MinKeyHold)
}

// SendKeyHold presses k for at least max(hold, MinKeyHold) plus jitter, then releases it.
// The call blocks for the whole hold.
func (d *Dispatcher) SendKeyHold(k Key, hold time.Duration) error {
	w, err := d.window()
	if err != nil {
		return err
	}

	if hold < MinKeyHold {
		hold = MinKeyHold
	}
	hold += d.jitter()

	log.Debug().Str("key", k.String()).Dur("hold", hold).Msg("Input: Sending keypress")
	return d.press(w, k, hold)
}

// SendKeyAtLocation taps k and then left-clicks at screen coordinates (x, y)
func (d *Dispatcher) SendKeyAtLocation(k Key, x, y int) error {
	w, err := d.window()
	if err != nil {
		return err
	}

	log.Debug().Str("key", k.String()).Int("x", x).Int("y", y).Msg("Input: Sending keypress at location")
	if err := d.press(w, k, tapHold); err != nil {
		return err
	}
	if err := d.poster.LeftClick(x, y); err != nil {
		return fmt.Errorf("click at %d,%d: %w", x, y, err)
	}
	return nil
}

// SendMacro opens the chat box, types text one character at a time and submits it
func (d *Dispatcher) SendMacro(text string) error {
	w, err := d.window()
	if err != nil {
		return err
	}

	log.Info().Str("macro", text).Msg("Input: Sending macro")
	if err := d.press(w, KeyEnter, tapHold); err != nil {
		return err
	}
	d.sleep(macroPause)

	for _, r := range text {
		if err := d.poster.Char(w, r); err != nil {
			return fmt.Errorf("char %q: %w", r, err)
		}
	}

	d.sleep(macroPause)
	return d.press(w, KeyEnter, tapHold)
}

func (d *Dispatcher) press(w binding.Window, k Key, hold time.Duration) error {
	if err := d.poster.KeyDown(w, k); err != nil {
		return fmt.Errorf("key down %s: %w", k, err)
	}
	d.sleep(hold)
	if err := d.poster.KeyUp(w, k); err != nil {
		return fmt.Errorf("key up %s: %w", k, err)
	}
	return nil
}

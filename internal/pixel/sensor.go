// Package pixel samples the indicator grid rendered by the in-game addon.
package pixel

import (
	"fmt"
	"image/color"
	"io"
	"sync"

	"pixelmagic/internal/binding"

	"github.com/rs/zerolog/log"
)

// CellSize is the edge length in physical pixels of one addon grid cell
const CellSize = 7

// Reference colors rendered by the addon
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// Surface is a 1x1 off-screen capture target.
// Copy and Read are not safe for concurrent use; Sensor serializes them.
type Surface interface {
	// Copy transfers the physical pixel (x, y) of the window's client area into the surface
	Copy(w binding.Window, x, y int) error

	// Read returns the pixel currently held by the surface
	Read() (color.RGBA, error)
}

// Sensor reads grid cells from the bound window through one shared Surface
type Sensor struct {
	mu      sync.Mutex
	src     binding.Source
	surface Surface
}

// NewSensor creates a sensor sampling the window supplied by src
func NewSensor(src binding.Source, surface Surface) *Sensor {
	return &Sensor{
		src:     src,
		surface: surface,
	}
}

// CellOrigin maps a 1-indexed grid cell to the top-left physical pixel of its block
func CellOrigin(column, row int) (x, y int) {
	return (column - 1) * CellSize, (row - 1) * CellSize
}

// SampleColor returns the color of grid cell (column, row).
// Without a binding it returns Black. Capture failures are returned as *CaptureError.
func (s *Sensor) SampleColor(column, row int) (color.RGBA, error) {
	if column <= 0 || row <= 0 {
		return Black, fmt.Errorf("%w: column %d and row %d must be >= 1", ErrInvalidArgument, column, row)
	}

	w, ok := s.src.Current()
	if !ok {
		return Black, nil
	}

	x, y := CellOrigin(column, row)

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.capture(w, x, y)
	if err != nil {
		log.Error().
			Err(err).
			Int("column", column).
			Int("row", row).
			Int("x", x).
			Int("y", y).
			Uint32("pid", w.PID).
			Msgf("Sensor: Failed to read pixel color from window 0x%X, the game usually closed while sampling", w.Handle)
		return Black, &CaptureError{Column: column, Row: row, Err: err}
	}
	return c, nil
}

func (s *Sensor) capture(w binding.Window, x, y int) (color.RGBA, error) {
	if err := s.surface.Copy(w, x, y); err != nil {
		return Black, err
	}
	return s.surface.Read()
}

// Close releases the underlying surface when it holds OS resources
func (s *Sensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.surface.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

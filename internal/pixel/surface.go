package pixel

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"pixelmagic/internal/binding"
)

// ImageSurface is a capture surface whose window contents come from an image.
// It stands in for the game window when replaying screenshots or testing.
type ImageSurface struct {
	mu  sync.RWMutex
	img image.Image

	// the 1x1 buffer; guarded by the owning Sensor
	buf color.RGBA
}

// NewImageSurface creates a surface that renders img for every bound window
func NewImageSurface(img image.Image) *ImageSurface {
	return &ImageSurface{img: img, buf: Black}
}

// SetImage swaps the rendered frame
func (s *ImageSurface) SetImage(img image.Image) {
	s.mu.Lock()
	s.img = img
	s.mu.Unlock()
}

// Copy implements Surface
func (s *ImageSurface) Copy(w binding.Window, x, y int) error {
	s.mu.RLock()
	img := s.img
	s.mu.RUnlock()

	if img == nil {
		return fmt.Errorf("window 0x%X has no frame", w.Handle)
	}
	if !image.Pt(x, y).In(img.Bounds()) {
		return fmt.Errorf("pixel (%d,%d) outside window bounds %v", x, y, img.Bounds())
	}
	s.buf = color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
	return nil
}

// Read implements Surface
func (s *ImageSurface) Read() (color.RGBA, error) {
	return s.buf, nil
}

// GridCanvas paints addon grid cells into an image, one CellSize block per cell
type GridCanvas struct {
	img *image.RGBA
}

// NewGridCanvas creates an all-black canvas of columns x rows cells
func NewGridCanvas(columns, rows int) *GridCanvas {
	img := image.NewRGBA(image.Rect(0, 0, columns*CellSize, rows*CellSize))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+3] = 0xFF
	}
	return &GridCanvas{img: img}
}

// SetCell fills the block of cell (column, row)
func (g *GridCanvas) SetCell(column, row int, c color.RGBA) {
	x0, y0 := CellOrigin(column, row)
	for y := y0; y < y0+CellSize; y++ {
		for x := x0; x < x0+CellSize; x++ {
			g.img.SetRGBA(x, y, c)
		}
	}
}

// SetBits paints a binary string on row, starting at column 1: '1' is red, anything else black
func (g *GridCanvas) SetBits(row int, bits string) {
	for i, b := range bits {
		c := Black
		if b == '1' {
			c = Red
		}
		g.SetCell(i+1, row, c)
	}
}

// Image returns the painted image
func (g *GridCanvas) Image() *image.RGBA {
	return g.img
}

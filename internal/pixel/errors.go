package pixel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for grid coordinates below 1. It marks a programming error.
	ErrInvalidArgument = errors.New("invalid grid coordinate")

	// ErrUnsupportedPlatform is returned when no capture surface exists for this OS
	ErrUnsupportedPlatform = errors.New("pixel capture not supported on this platform")
)

// CaptureError reports a failed copy or read of a grid cell
type CaptureError struct {
	Column int
	Row    int
	Err    error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture of cell (%d,%d) failed: %v", e.Column, e.Row, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

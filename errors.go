package videofx

import (
	"errors"
	"fmt"
)

// Package errors for videofx.
var (
	// ErrTooManyOverlays is returned when the overlay count exceeds the
	// sampler budget of the requested dynamic range mode.
	ErrTooManyOverlays = errors.New("videofx: overlay count exceeds mode limit")

	// ErrNotHDROverlay is returned when HDR compositing encounters an
	// overlay that carries no gain map.
	ErrNotHDROverlay = errors.New("videofx: HDR compositing requires gain-map overlays")

	// ErrResultPending is returned by Result.Value before the result has
	// been resolved.
	ErrResultPending = errors.New("videofx: result not yet resolved")

	// ErrReleased is returned when operations are called after Release.
	ErrReleased = errors.New("videofx: released")
)

// FrameError wraps a GPU failure that occurred while operating on a frame,
// carrying the frame's presentation timestamp. The frame is abandoned but
// the enclosing compositor or pipeline remains usable.
type FrameError struct {
	// PresentationTimeUs is the timestamp of the frame being operated on,
	// in microseconds.
	PresentationTimeUs int64

	// Err is the underlying GPU error.
	Err error
}

// Error implements the error interface.
func (e *FrameError) Error() string {
	return fmt.Sprintf("videofx: frame at %dus: %v", e.PresentationTimeUs, e.Err)
}

// Unwrap returns the underlying GPU error.
func (e *FrameError) Unwrap() error { return e.Err }

// frameErr wraps err with the frame timestamp unless it is nil or already
// a FrameError.
func frameErr(presentationTimeUs int64, err error) error {
	if err == nil {
		return nil
	}
	var fe *FrameError
	if errors.As(err, &fe) {
		return err
	}
	return &FrameError{PresentationTimeUs: presentationTimeUs, Err: err}
}

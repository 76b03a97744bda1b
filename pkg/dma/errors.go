// ABOUTME: Error taxonomy for sound output initialization
// ABOUTME: Sentinel errors wrapped with context and matched via errors.Is
package dma

import "errors"

var (
	// ErrDeviceUnavailable means the device could not be opened or started
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrUnsupportedFormat means the device returned a sample format or
	// channel count the ring buffer cannot carry
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrAllocationFailure means the ring buffer could not be allocated
	ErrAllocationFailure = errors.New("ring buffer allocation failed")

	// ErrReleased is returned when a released ring buffer is released again
	ErrReleased = errors.New("ring buffer already released")
)

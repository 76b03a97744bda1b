// ABOUTME: Audio device interface definition
// ABOUTME: Common callback-driven interface for playback backends
package output

import (
	"fmt"
	"strings"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
)

// Callback fills out with exactly len(out) bytes of interleaved 16-bit PCM.
// It runs on the device's real-time thread and must not block.
type Callback func(out []byte)

// Device is a playback device that pulls audio through a registered callback
type Device interface {
	// Open opens the device paused and returns the format it actually runs at
	Open(desired audio.Format, framesPerBuffer int, fill Callback) (audio.Format, error)

	// Pause stops (true) or starts (false) callback invocation
	Pause(paused bool) error

	// Close stops the device; no callback runs after Close returns
	Close() error

	// DriverName returns the backend name reported in diagnostics
	DriverName() string
}

// Drivers lists the backend names accepted by New
func Drivers() []string {
	return []string{"malgo", "oto", "portaudio", "null"}
}

// New creates a device for the named backend
func New(driver string) (Device, error) {
	switch strings.ToLower(driver) {
	case "", "malgo":
		return NewMalgo(), nil
	case "oto":
		return NewOto(), nil
	case "portaudio":
		return NewPortAudio(), nil
	case "null":
		return NewNull(true), nil
	default:
		return nil, fmt.Errorf("unknown audio driver: %s (supported: %s)", driver, strings.Join(Drivers(), ", "))
	}
}

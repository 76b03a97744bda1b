//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"fmt"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
)

// PortAudio device implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio device
func NewPortAudio() Device {
	return &PortAudio{}
}

// Open reports that PortAudio is not compiled in
func (p *PortAudio) Open(desired audio.Format, framesPerBuffer int, fill Callback) (audio.Format, error) {
	return audio.Format{}, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

// Pause reports that PortAudio is not compiled in
func (p *PortAudio) Pause(paused bool) error {
	return fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

// Close is a no-op
func (p *PortAudio) Close() error {
	return nil
}

// DriverName returns the backend name
func (p *PortAudio) DriverName() string {
	return "portaudio"
}

// ABOUTME: Audio type definitions
// ABOUTME: Defines the 16-bit PCM format, rate selector and decoded buffers
package audio

import "fmt"

const (
	// BitDepth is the only sample width the DMA layer carries
	BitDepth = 16

	// BytesPerSample is the width of one 16-bit sample
	BytesPerSample = BitDepth / 8

	// DefaultChannels is the channel count requested from devices
	DefaultChannels = 2

	// DefaultKHz is the rate selector used when none is configured
	DefaultKHz = 11
)

// Format describes a PCM stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// String returns a short description such as "44100Hz/2ch/16bit"
func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", f.SampleRate, f.Channels, f.BitDepth)
}

// FrameBytes returns the size of one interleaved frame in bytes
func (f Format) FrameBytes() int {
	return f.Channels * f.BitDepth / 8
}

// Validate checks that the format is one the DMA layer can carry
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.BitDepth != BitDepth {
		return fmt.Errorf("unsupported bit depth: %d (supported: 16)", f.BitDepth)
	}
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("unsupported channel count: %d (supported: 1, 2)", f.Channels)
	}
	return nil
}

// RateFromKHz maps the kHz rate selector to a device sample rate.
// Unknown selectors fall back to 11025 Hz.
func RateFromKHz(khz int) int {
	switch khz {
	case 48:
		return 48000
	case 44:
		return 44100
	case 22:
		return 22050
	default:
		return 11025
	}
}

// DesiredFormat returns the stereo 16-bit format requested for a rate selector
func DesiredFormat(khz int) Format {
	return Format{
		SampleRate: RateFromKHz(khz),
		Channels:   DefaultChannels,
		BitDepth:   BitDepth,
	}
}

// Buffer holds decoded interleaved 16-bit PCM
type Buffer struct {
	Samples []int16
	Format  Format
}

// Frames returns the number of interleaved frames in the buffer
func (b Buffer) Frames() int {
	if b.Format.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// ClampInt16 saturates a mixed sample to the 16-bit range
func ClampInt16(sample int32) int16 {
	if sample > 32767 {
		return 32767
	}
	if sample < -32768 {
		return -32768
	}
	return int16(sample)
}

// SampleFromBits rescales a signed sample of the given bit width to 16 bits
func SampleFromBits(sample int32, bits int) int16 {
	switch {
	case bits == 16:
		return int16(sample)
	case bits > 16:
		return int16(sample >> uint(bits-16))
	default:
		return int16(sample << uint(16-bits))
	}
}

// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer and 16-bit sample helpers
// Package audio provides the PCM types shared by the DMA layer, the device
// backends and the decoders.
//
// Only signed 16-bit little-endian samples are carried, in mono or stereo:
//   - Format: sample rate, channel count and bit depth of a stream
//   - Buffer: decoded interleaved samples with their format
//
// The rate selector maps the configured kHz value to a device rate:
//
//	format := audio.DesiredFormat(44) // 44100Hz, 2 channels, 16-bit
//	if err := format.Validate(); err != nil {
//	    return err
//	}
package audio

// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides Decoder interface and implementations for PCM, WAV, FLAC, MP3
// Package decode turns sound files into 16-bit interleaved PCM buffers that
// mixer voices can play.
//
// Supports: raw PCM (16-bit and 24-bit), WAV, FLAC, MP3
//
// Example:
//
//	buf, err := decode.File("explosion.flac", 11025)
//	// buf.Samples holds interleaved int16, buf.Format the source format
package decode

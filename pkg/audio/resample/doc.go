// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts audio between different sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling.
//
// Example:
//
//	r := resample.New(44100, 11025, 2)
//	n := r.Resample(inputSamples, outputSamples)
//
//	// or for a whole decoded buffer
//	voice := resample.Buffer(decoded, 11025)
package resample

// ABOUTME: Audio output package for playback devices
// ABOUTME: Provides the callback Device interface and its backends
// Package output provides callback-driven playback devices.
//
// Every backend opens paused, invokes the registered Callback from its own
// real-time thread once started, and guarantees no further invocation after
// Close returns. Supported backends: malgo (miniaudio), oto, PortAudio
// (build with -tags portaudio) and a null device.
//
// Example:
//
//	dev, err := output.New("malgo")
//	obtained, err := dev.Open(audio.DesiredFormat(44), 512, fill)
//	err = dev.Pause(false)
package output

// ABOUTME: Sound output context owning the device, ring buffer and clock
// ABOUTME: Exposes init, cursor, sound time, painting and shutdown to the mixer
package dma

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
	"github.com/Resonate-Protocol/snddma/pkg/audio/output"
)

// DefaultFramesPerBuffer is the device period requested at open
const DefaultFramesPerBuffer = 512

// Options configures an Output
type Options struct {
	// Device is the playback backend; nil makes every Init fail
	Device output.Device

	// BufferSamples is the per-channel ring buffer size (default 0x8000)
	BufferSamples int

	// FramesPerBuffer is the device period in frames (default 512)
	FramesPerBuffer int

	// TimeCeiling is the painted time that triggers an epoch reset
	TimeCeiling int64

	// Logf receives initialization and shutdown diagnostics (default log.Printf)
	Logf func(format string, args ...any)
}

// Stats is a snapshot of the output state for diagnostics
type Stats struct {
	Driver          string
	Format          audio.Format
	Initialized     bool
	Samples         int
	Cursor          int
	SoundTime       int64
	PaintedTime     int64
	Wraps           int64
	Resets          int64
	Callbacks       int64
	SilentCallbacks int64
}

// Output is the single owned context shared by the mixer and the device
// callback. A zero-initialized (or failed) Output behaves as a silent sink.
type Output struct {
	opts Options
	dev  output.Device

	gate  Gate
	ring  atomic.Pointer[RingBuffer]
	clock *Clock

	initialized atomic.Bool
	opened      bool
	format      audio.Format
	lifeMu      sync.Mutex

	stopAll   atomic.Pointer[func()]
	callbacks atomic.Int64
	silent    atomic.Int64
}

// New creates an uninitialized output
func New(opts Options) *Output {
	if opts.BufferSamples == 0 {
		opts.BufferSamples = DefaultBufferSamples
	}
	if opts.FramesPerBuffer <= 0 {
		opts.FramesPerBuffer = DefaultFramesPerBuffer
	}
	if opts.TimeCeiling <= 0 {
		opts.TimeCeiling = DefaultTimeCeiling
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}

	return &Output{
		opts:  opts,
		dev:   opts.Device,
		clock: NewClock(0, opts.TimeCeiling),
	}
}

// SetStopAllSounds registers the hook run when the clock resets its epoch
func (o *Output) SetStopAllSounds(fn func()) {
	if fn == nil {
		o.stopAll.Store(nil)
		return
	}
	o.stopAll.Store(&fn)
}

// Init opens the device at the rate selected by khz and reports success.
// On failure nothing stays open and the output keeps acting as a no-op sink.
func (o *Output) Init(khz int) bool {
	return o.Open(khz) == nil
}

// Open is Init with the failure reason
func (o *Output) Open(khz int) error {
	o.lifeMu.Lock()
	defer o.lifeMu.Unlock()

	if o.initialized.Load() {
		return nil
	}
	if o.dev == nil {
		o.opts.Logf("Couldn't initialize audio: no device")
		return fmt.Errorf("%w: no device configured", ErrDeviceUnavailable)
	}

	desired := audio.DesiredFormat(khz)
	obtained, err := o.dev.Open(desired, o.opts.FramesPerBuffer, o.fill)
	if err != nil {
		o.opts.Logf("Couldn't open %s audio: %v", o.dev.DriverName(), err)
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	o.opened = true

	if obtained.BitDepth != audio.BitDepth {
		o.opts.Logf("%s audio format %d-bit unsupported.", o.dev.DriverName(), obtained.BitDepth)
		o.shutdownLocked()
		return fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, obtained.BitDepth)
	}
	if obtained.Channels != 1 && obtained.Channels != 2 {
		o.opts.Logf("%s audio channels %d unsupported.", o.dev.DriverName(), obtained.Channels)
		o.shutdownLocked()
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, obtained.Channels)
	}

	rb, err := NewRingBuffer(o.opts.BufferSamples, obtained.Channels)
	if err != nil {
		o.opts.Logf("Couldn't allocate audio buffer: %v", err)
		o.shutdownLocked()
		return err
	}

	o.format = obtained
	o.clock.Reset(rb.Samples(), o.opts.TimeCeiling)
	o.ring.Store(rb)
	o.initialized.Store(true)

	o.opts.Logf("Using %s audio driver @ %d Hz", o.dev.DriverName(), obtained.SampleRate)

	if err := o.dev.Pause(false); err != nil {
		o.opts.Logf("Couldn't start %s audio: %v", o.dev.DriverName(), err)
		o.shutdownLocked()
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	return nil
}

// fill is the device callback: one circular copy under the gate
func (o *Output) fill(out []byte) {
	o.callbacks.Add(1)

	o.gate.Lock()
	rb := o.ring.Load()
	if rb == nil || !o.initialized.Load() {
		o.gate.Unlock()
		clear(out)
		o.silent.Add(1)
		return
	}
	rb.Fill(out)
	o.gate.Unlock()
}

// Initialized reports whether audio output is available
func (o *Output) Initialized() bool {
	return o.initialized.Load()
}

// Format returns the obtained device format
func (o *Output) Format() audio.Format {
	o.lifeMu.Lock()
	defer o.lifeMu.Unlock()
	return o.format
}

// Samples returns the ring buffer capacity in samples, or 0 when closed
func (o *Output) Samples() int {
	if rb := o.ring.Load(); rb != nil {
		return rb.Samples()
	}
	return 0
}

// DMAPos returns the device read position in samples inside the ring buffer
func (o *Output) DMAPos() int {
	if !o.initialized.Load() {
		return 0
	}
	rb := o.ring.Load()
	if rb == nil {
		return 0
	}
	return rb.Pos()
}

// SoundTime polls the cursor and returns the absolute sound time.
// Call it from the mixer goroutine only.
func (o *Output) SoundTime() int64 {
	if !o.initialized.Load() {
		return 0
	}

	soundTime, reset := o.clock.Advance(o.DMAPos())
	if reset {
		o.opts.Logf("Sound time reached its ceiling, stopping all sounds")
		if fn := o.stopAll.Load(); fn != nil {
			(*fn)()
		}
	}
	return soundTime
}

// PaintedTime returns how far the mixer has rendered
func (o *Output) PaintedTime() int64 {
	return o.clock.PaintedTime()
}

// SetPaintedTime records how far the mixer has rendered
func (o *Output) SetPaintedTime(t int64) {
	o.clock.SetPaintedTime(t)
}

// FullSamples returns the length of one buffer lap in sound-time units
func (o *Output) FullSamples() int64 {
	return o.clock.FullSamples()
}

// BeginPainting locks the ring buffer for mixer writes
func (o *Output) BeginPainting() {
	o.begin()
}

func (o *Output) begin() bool {
	if !o.initialized.Load() {
		return false
	}
	o.gate.Begin()
	return true
}

// Submit unlocks the ring buffer after mixer writes. Without a matching
// BeginPainting it does nothing. A Submit from another goroutine still
// releases a held lock, so only the goroutine that called BeginPainting
// may call Submit.
func (o *Output) Submit() {
	o.gate.End()
}

// Paint runs fn with the ring buffer locked and always unlocks afterwards.
// It is a no-op when output is not initialized.
func (o *Output) Paint(fn func(rb *RingBuffer) error) error {
	if !o.begin() {
		return nil
	}
	defer o.Submit()

	rb := o.ring.Load()
	if rb == nil {
		return nil
	}
	return fn(rb)
}

// Pause stops or resumes device callbacks
func (o *Output) Pause(paused bool) error {
	o.lifeMu.Lock()
	defer o.lifeMu.Unlock()

	if !o.initialized.Load() {
		return nil
	}
	return o.dev.Pause(paused)
}

// Shutdown closes the device and releases the ring buffer. It is safe to
// call repeatedly, before Init, and concurrently with a pending callback,
// but not from a goroutine that is inside BeginPainting.
func (o *Output) Shutdown() {
	o.lifeMu.Lock()
	defer o.lifeMu.Unlock()
	o.shutdownLocked()
}

func (o *Output) shutdownLocked() {
	if !o.opened && o.ring.Load() == nil {
		return
	}

	o.opts.Logf("Shutting down audio.")
	o.initialized.Store(false)

	if o.opened {
		if err := o.dev.Close(); err != nil {
			o.opts.Logf("Error closing %s audio: %v", o.dev.DriverName(), err)
		}
		o.opened = false
	}

	o.gate.Lock()
	rb := o.ring.Swap(nil)
	o.gate.Unlock()

	if rb != nil {
		if err := rb.Release(); err != nil {
			o.opts.Logf("Error releasing audio buffer: %v", err)
		}
	}
}

// DriverName returns the backend name, or "none" without a device
func (o *Output) DriverName() string {
	if o.dev == nil {
		return "none"
	}
	return o.dev.DriverName()
}

// PrintDeviceName logs the active backend
func (o *Output) PrintDeviceName() {
	if !o.initialized.Load() {
		o.opts.Logf("Audio: none")
		return
	}
	o.opts.Logf("Audio: %s (%s)", o.DriverName(), o.Format())
}

// Stats returns a snapshot without polling the clock
func (o *Output) Stats() Stats {
	cs := o.clock.Stats()
	return Stats{
		Driver:          o.DriverName(),
		Format:          o.Format(),
		Initialized:     o.initialized.Load(),
		Samples:         o.Samples(),
		Cursor:          o.DMAPos(),
		SoundTime:       cs.SoundTime,
		PaintedTime:     cs.PaintedTime,
		Wraps:           cs.Wraps,
		Resets:          cs.Resets,
		Callbacks:       o.callbacks.Load(),
		SilentCallbacks: o.silent.Load(),
	}
}

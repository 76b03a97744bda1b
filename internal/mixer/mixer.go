// ABOUTME: Paint-ahead mixer driving the DMA ring buffer
// ABOUTME: Renders voices ahead of sound time and stops everything on clock reset
package mixer

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
	"github.com/Resonate-Protocol/snddma/pkg/dma"
	"github.com/google/uuid"
)

const (
	// DefaultMixahead is how far ahead of the device the mixer renders, in seconds
	DefaultMixahead = 0.1

	// DefaultVolume is the master volume used when Options.Volume is nil
	DefaultVolume = 100
)

// Options configures a Mixer
type Options struct {
	Mixahead float64
	// Volume is the initial master volume 0-100; nil means DefaultVolume
	Volume *int
}

// Stats tracks mixer activity
type Stats struct {
	Voices    int
	Updates   int64
	Painted   int64
	Underruns int64
}

type voice struct {
	id  uuid.UUID
	src Source
}

// Mixer renders playing voices into the output's ring buffer
type Mixer struct {
	out      *dma.Output
	mixahead float64

	mu     sync.Mutex
	voices []*voice
	volume int
	muted  bool

	accum   []int32
	scratch []int16
	mix     []int16

	stats Stats
}

// New creates a mixer and registers it as the output's stop-all hook
func New(out *dma.Output, opts Options) *Mixer {
	if opts.Mixahead <= 0 {
		opts.Mixahead = DefaultMixahead
	}
	m := &Mixer{
		out:      out,
		mixahead: opts.Mixahead,
		volume:   DefaultVolume,
	}
	if opts.Volume != nil {
		m.SetVolume(*opts.Volume)
	}
	out.SetStopAllSounds(m.StopAllSounds)
	return m
}

// Play starts a voice and returns its handle
func (m *Mixer) Play(src Source) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New()
	m.voices = append(m.voices, &voice{id: id, src: src})
	return id
}

// Stop removes one voice and reports whether it was playing
func (m *Mixer) Stop(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, v := range m.voices {
		if v.id == id {
			m.voices = append(m.voices[:i], m.voices[i+1:]...)
			return true
		}
	}
	return false
}

// Voices returns the number of playing voices
func (m *Mixer) Voices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// StopAllSounds drops every voice and silences the ring buffer
func (m *Mixer) StopAllSounds() {
	m.mu.Lock()
	m.voices = nil
	m.mu.Unlock()

	_ = m.out.Paint(func(rb *dma.RingBuffer) error {
		rb.Clear()
		return nil
	})
}

// SetVolume sets the volume (0-100)
func (m *Mixer) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	m.mu.Lock()
	m.volume = volume
	m.mu.Unlock()
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (m *Mixer) SetMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
	log.Printf("Muted: %v", muted)
}

// Volume returns current volume
func (m *Mixer) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Muted returns mute state
func (m *Mixer) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Stats returns mixer statistics
func (m *Mixer) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Voices = len(m.voices)
	return s
}

// Update paints from the painted frontier up to mixahead past the device.
// One sound-time unit is two ring samples: a frame in stereo, two in mono.
func (m *Mixer) Update() error {
	if !m.out.Initialized() {
		return nil
	}

	// May run the stop-all hook, so no mixer lock yet
	soundTime := m.out.SoundTime()
	painted := m.out.PaintedTime()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Updates++

	if painted < soundTime {
		m.stats.Underruns++
		painted = soundTime
	}

	format := m.out.Format()
	unitsPerSecond := float64(format.SampleRate*format.Channels) / 2
	endTime := soundTime + int64(m.mixahead*unitsPerSecond)

	// never paint over what the device has not played yet
	if lap := m.out.FullSamples(); endTime-soundTime > lap {
		endTime = soundTime + lap
	}
	if endTime <= painted {
		return nil
	}

	samples := int(endTime-painted) * 2
	m.render(samples, format.Channels)

	err := m.out.Paint(func(rb *dma.RingBuffer) error {
		rb.WriteSamples(int((painted*2)%int64(rb.Samples())), m.mix[:samples])
		return nil
	})
	if err != nil {
		return err
	}

	m.out.SetPaintedTime(endTime)
	m.stats.Painted += endTime - painted
	return nil
}

// render mixes every voice into m.mix[:samples]; m.mu must be held
func (m *Mixer) render(samples, channels int) {
	if cap(m.accum) < samples {
		m.accum = make([]int32, samples)
		m.scratch = make([]int16, samples)
		m.mix = make([]int16, samples)
	}
	accum := m.accum[:samples]
	clear(accum)

	kept := m.voices[:0]
	for _, v := range m.voices {
		scratch := m.scratch[:samples]
		n, err := v.src.Read(scratch, channels)
		for i := 0; i < n*channels; i++ {
			accum[i] += int32(scratch[i])
		}
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			log.Printf("Voice %s failed: %v", v.id, err)
			continue
		}
		kept = append(kept, v)
	}
	clear(m.voices[len(kept):])
	m.voices = kept

	multiplier := getVolumeMultiplier(m.volume, m.muted)
	for i, s := range accum {
		m.mix[i] = audio.ClampInt16(int32(float64(s) * multiplier))
	}
}

// Run updates the mixer until ctx is cancelled
func (m *Mixer) Run(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Update(); err != nil {
				log.Printf("Mixer update failed: %v", err)
			}
		}
	}
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}

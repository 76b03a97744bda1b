// ABOUTME: Absolute sample clock derived from the wrapping DMA cursor
// ABOUTME: Counts buffer laps and resets the epoch before painted time overflows
package dma

import "sync"

// DefaultTimeCeiling is the painted time past which the clock resets its epoch
const DefaultTimeCeiling = 0x40000000

// Clock folds the bounded read cursor into a monotonically increasing
// sound time. It also owns the painted time the mixer has rendered up to,
// because an epoch reset must rewind both together.
type Clock struct {
	mu sync.RWMutex

	fullSamples  int64
	buffers      int64
	oldSamplePos int
	paintedTime  int64
	soundTime    int64
	ceiling      int64

	wraps  int64
	resets int64
}

// ClockStats is a snapshot of the clock state
type ClockStats struct {
	SoundTime   int64
	PaintedTime int64
	Buffers     int64
	Wraps       int64
	Resets      int64
}

// NewClock creates a clock for a ring buffer of the given sample count.
// A ceiling of zero selects DefaultTimeCeiling.
func NewClock(samples int, ceiling int64) *Clock {
	c := &Clock{}
	c.Reset(samples, ceiling)
	return c
}

// Reset starts a new stream epoch for a ring buffer of the given sample count
func (c *Clock) Reset(samples int, ceiling int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ceiling <= 0 {
		ceiling = DefaultTimeCeiling
	}
	c.fullSamples = int64(samples / 2)
	c.buffers = 0
	c.oldSamplePos = 0
	c.paintedTime = 0
	c.soundTime = 0
	c.ceiling = ceiling
	c.wraps = 0
	c.resets = 0
}

// Advance folds a cursor observation into the clock and returns the sound
// time. A cursor strictly below the previous one counts as exactly one wrap;
// an unchanged cursor does not. reset reports whether this call rewound the
// epoch, in which case the caller must stop every playing sound.
func (c *Clock) Advance(samplePos int) (soundTime int64, reset bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// a lap of two or more between polls is counted once
	if samplePos < c.oldSamplePos {
		c.buffers++
		c.wraps++

		if c.paintedTime > c.ceiling {
			c.buffers = 0
			c.paintedTime = c.fullSamples
			c.resets++
			reset = true
		}
	}
	c.oldSamplePos = samplePos

	c.soundTime = c.buffers*c.fullSamples + int64(samplePos/2)
	return c.soundTime, reset
}

// FullSamples returns the length of one lap in sound-time units
func (c *Clock) FullSamples() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fullSamples
}

// PaintedTime returns how far the mixer has rendered
func (c *Clock) PaintedTime() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paintedTime
}

// SetPaintedTime records how far the mixer has rendered
func (c *Clock) SetPaintedTime(t int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paintedTime = t
}

// Stats returns a snapshot without polling the cursor
func (c *Clock) Stats() ClockStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ClockStats{
		SoundTime:   c.soundTime,
		PaintedTime: c.paintedTime,
		Buffers:     c.buffers,
		Wraps:       c.wraps,
		Resets:      c.resets,
	}
}

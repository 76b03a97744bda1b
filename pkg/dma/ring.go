// ABOUTME: DMA ring buffer shared between the mixer and the device callback
// ABOUTME: Implements the circular copy that feeds the device and the read cursor
package dma

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// DefaultBufferSamples is the per-channel sample count of the ring buffer
const DefaultBufferSamples = 0x8000

// RingBuffer is the fixed-size circular region of interleaved 16-bit PCM
// that the device consumes. All access except Pos must happen under the
// owning Output's gate.
type RingBuffer struct {
	buffer    []byte
	samples   int
	samplePos atomic.Int64
	released  bool
}

// NewRingBuffer allocates bufferSamples samples per channel.
// bufferSamples must be a positive power of two.
func NewRingBuffer(bufferSamples, channels int) (*RingBuffer, error) {
	if bufferSamples <= 0 || bufferSamples&(bufferSamples-1) != 0 {
		return nil, fmt.Errorf("%w: buffer size %d is not a power of two", ErrAllocationFailure, bufferSamples)
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrAllocationFailure, channels)
	}

	samples := bufferSamples * channels
	return &RingBuffer{
		buffer:  make([]byte, samples*2),
		samples: samples,
	}, nil
}

// Samples returns the capacity in samples, counting every channel
func (rb *RingBuffer) Samples() int {
	return rb.samples
}

// Size returns the capacity in bytes
func (rb *RingBuffer) Size() int {
	return len(rb.buffer)
}

// Pos returns the device read cursor in samples.
// It is safe to call from any goroutine.
func (rb *RingBuffer) Pos() int {
	return int(rb.samplePos.Load())
}

// Fill copies len(out) bytes starting at the read cursor into out, wrapping
// at the end of the buffer, and advances the cursor. It returns the number
// of non-empty contiguous copies made.
func (rb *RingBuffer) Fill(out []byte) int {
	if rb.released || rb.samples == 0 {
		clear(out)
		return 0
	}

	n := len(out) &^ 1
	if n < len(out) {
		out[n] = 0
	}

	size := rb.samples << 1
	copies := 0
	for off := 0; off < n; off += size {
		chunk := min(n-off, size)
		copies += rb.fillChunk(out[off : off+chunk])
	}
	return copies
}

// fillChunk performs one circular copy of at most one full buffer
func (rb *RingBuffer) fillChunk(out []byte) int {
	length := len(out)
	size := rb.samples << 1
	pos := int(rb.samplePos.Load()) << 1
	wrapped := pos + length - size

	if wrapped < 0 {
		copy(out, rb.buffer[pos:pos+length])
		rb.samplePos.Store(int64((pos + length) >> 1))
		return 1
	}

	remaining := size - pos
	copy(out, rb.buffer[pos:size])
	copy(out[remaining:], rb.buffer[:wrapped])
	rb.samplePos.Store(int64(wrapped >> 1))

	copies := 0
	if remaining > 0 {
		copies++
	}
	if wrapped > 0 {
		copies++
	}
	return copies
}

// WriteSamples stores src at the given sample offset, wrapping around the
// end of the buffer. Offsets outside the buffer are reduced modulo its size.
func (rb *RingBuffer) WriteSamples(offset int, src []int16) {
	if rb.released || rb.samples == 0 {
		return
	}

	pos := offset % rb.samples
	if pos < 0 {
		pos += rb.samples
	}
	for _, s := range src {
		binary.LittleEndian.PutUint16(rb.buffer[pos<<1:], uint16(s))
		pos++
		if pos == rb.samples {
			pos = 0
		}
	}
}

// SampleAt returns the sample stored at the given offset
func (rb *RingBuffer) SampleAt(offset int) int16 {
	if rb.released || rb.samples == 0 {
		return 0
	}
	pos := offset % rb.samples
	if pos < 0 {
		pos += rb.samples
	}
	return int16(binary.LittleEndian.Uint16(rb.buffer[pos<<1:]))
}

// Clear silences the whole buffer without moving the cursor
func (rb *RingBuffer) Clear() {
	clear(rb.buffer)
}

// Release drops the backing storage. A second release returns ErrReleased.
func (rb *RingBuffer) Release() error {
	if rb.released {
		return ErrReleased
	}
	rb.released = true
	rb.buffer = nil
	return nil
}

// Released reports whether the storage has been dropped
func (rb *RingBuffer) Released() bool {
	return rb.released
}

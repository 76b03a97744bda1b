// ABOUTME: Sound sources played by mixer voices
// ABOUTME: Test tone generator and decoded buffer playback
package mixer

import (
	"io"
	"math"
	"sync"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
)

// Source renders interleaved 16-bit frames for a voice
type Source interface {
	// Read fills dst with whole frames of the given channel count and returns
	// the frames written. io.EOF means the sound has finished.
	Read(dst []int16, channels int) (int, error)
}

// ToneSource generates a sine test tone
type ToneSource struct {
	sampleIndex uint64
	sampleMu    sync.Mutex
	frequency   float64
	sampleRate  int
	amplitude   float64
}

// NewToneSource creates a tone generator at the given output rate
func NewToneSource(frequency float64, sampleRate int) *ToneSource {
	return &ToneSource{
		frequency:  frequency,
		sampleRate: sampleRate,
		amplitude:  0.5, // 50% volume
	}
}

// Read generates the next frames of the tone. It never ends.
func (s *ToneSource) Read(dst []int16, channels int) (int, error) {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()

	numFrames := len(dst) / channels
	for i := 0; i < numFrames; i++ {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.sampleRate)
		pcmValue := int16(math.Sin(2*math.Pi*s.frequency*t) * 32767.0 * s.amplitude)

		for ch := 0; ch < channels; ch++ {
			dst[i*channels+ch] = pcmValue
		}
	}

	s.sampleIndex += uint64(numFrames)
	return numFrames, nil
}

// BufferSource plays a decoded buffer, optionally looping
type BufferSource struct {
	buf  audio.Buffer
	pos  int
	loop bool
	mu   sync.Mutex
}

// NewBufferSource plays buf, which must already be at the output rate
func NewBufferSource(buf audio.Buffer, loop bool) *BufferSource {
	return &BufferSource{buf: buf, loop: loop}
}

// Read copies frames from the buffer, mapping mono to every output channel
// and averaging stereo into mono.
func (s *BufferSource) Read(dst []int16, channels int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := s.buf.Frames()
	if frames == 0 {
		return 0, io.EOF
	}
	srcCh := s.buf.Format.Channels

	numFrames := len(dst) / channels
	written := 0
	for written < numFrames {
		if s.pos >= frames {
			if !s.loop {
				return written, io.EOF
			}
			s.pos = 0
		}

		in := s.buf.Samples[s.pos*srcCh : (s.pos+1)*srcCh]
		out := dst[written*channels : (written+1)*channels]
		switch {
		case srcCh == channels:
			copy(out, in)
		case srcCh == 1:
			for ch := range out {
				out[ch] = in[0]
			}
		default:
			var sum int32
			for _, v := range in {
				sum += int32(v)
			}
			out[0] = int16(sum / int32(srcCh))
		}

		s.pos++
		written++
	}
	return written, nil
}

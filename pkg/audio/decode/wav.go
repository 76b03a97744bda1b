// ABOUTME: WAV audio decoder
// ABOUTME: Reads RIFF/WAVE PCM files into int16 samples
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
	"github.com/go-audio/wav"
)

// WAVDecoder decodes PCM WAV files
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() Decoder {
	return &WAVDecoder{}
}

// Decode converts a WAV stream to int16 samples. Files with more than
// two channels keep the first two.
func (d *WAVDecoder) Decode(r io.Reader) (audio.Buffer, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("failed to read wav: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return audio.Buffer{}, fmt.Errorf("invalid wav file")
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("wav decode error: %w", err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels == 0 {
		return audio.Buffer{}, fmt.Errorf("wav file has no channels")
	}

	srcChannels := pcm.Format.NumChannels
	channels := min(srcChannels, 2)
	bits := int(dec.BitDepth)
	frames := len(pcm.Data) / srcChannels

	samples := make([]int16, 0, frames*channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			samples = append(samples, audio.SampleFromBits(int32(pcm.Data[i*srcChannels+ch]), bits))
		}
	}

	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			SampleRate: pcm.Format.SampleRate,
			Channels:   channels,
			BitDepth:   audio.BitDepth,
		},
	}, nil
}

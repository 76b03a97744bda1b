// ABOUTME: PCM audio decoder
// ABOUTME: Decodes 16-bit and 24-bit little-endian PCM to int16 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
)

// PCMDecoder decodes headerless PCM
type PCMDecoder struct {
	format audio.Format
}

// NewPCM creates a new PCM decoder for data in the given format
func NewPCM(format audio.Format) (Decoder, error) {
	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}
	if format.Channels != 1 && format.Channels != 2 {
		return nil, fmt.Errorf("unsupported channel count: %d (supported: 1, 2)", format.Channels)
	}
	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", format.SampleRate)
	}

	return &PCMDecoder{format: format}, nil
}

// Decode converts PCM bytes to int16 samples
func (d *PCMDecoder) Decode(r io.Reader) (audio.Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("pcm read failed: %w", err)
	}

	out := audio.Buffer{
		Format: audio.Format{
			SampleRate: d.format.SampleRate,
			Channels:   d.format.Channels,
			BitDepth:   audio.BitDepth,
		},
	}

	if d.format.BitDepth == 24 {
		numSamples := len(data) / 3
		out.Samples = make([]int16, numSamples)
		for i := 0; i < numSamples; i++ {
			// sign-extend the 24-bit value before dropping the low byte
			v := int32(data[i*3]) | int32(data[i*3+1])<<8 | int32(int8(data[i*3+2]))<<16
			out.Samples[i] = audio.SampleFromBits(v, 24)
		}
		return out, nil
	}

	numSamples := len(data) / 2
	out.Samples = make([]int16, numSamples)
	for i := 0; i < numSamples; i++ {
		out.Samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out, nil
}

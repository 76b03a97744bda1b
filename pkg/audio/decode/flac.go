// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC streams frame by frame to int16 samples
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC() Decoder {
	return &FLACDecoder{}
}

// Decode converts a FLAC stream to int16 samples. Streams with more than
// two channels keep the first two.
func (d *FLACDecoder) Decode(r io.Reader) (audio.Buffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to create flac decoder: %w", err)
	}
	defer stream.Close()

	channels := min(int(stream.Info.NChannels), 2)
	bits := int(stream.Info.BitsPerSample)
	if channels == 0 {
		return audio.Buffer{}, fmt.Errorf("flac stream has no channels")
	}

	samples := make([]int16, 0, int(stream.Info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("flac decode error: %w", err)
		}

		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, audio.SampleFromBits(frame.Subframes[ch].Samples[i], bits))
			}
		}
	}

	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			SampleRate: int(stream.Info.SampleRate),
			Channels:   channels,
			BitDepth:   audio.BitDepth,
		},
	}, nil
}

// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all audio decoders and extension lookup
package decode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
)

// Decoder decodes a complete encoded stream to 16-bit PCM
type Decoder interface {
	// Decode reads r to the end and returns the interleaved samples
	Decode(r io.Reader) (audio.Buffer, error)
}

// ForPath picks a decoder from the file extension.
// Raw .pcm and .raw files are read as 16-bit stereo at the given rate.
func ForPath(path string, rawRate int) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return NewMP3(), nil
	case ".flac":
		return NewFLAC(), nil
	case ".wav":
		return NewWAV(), nil
	case ".pcm", ".raw":
		return NewPCM(audio.Format{
			SampleRate: rawRate,
			Channels:   audio.DefaultChannels,
			BitDepth:   audio.BitDepth,
		})
	default:
		return nil, fmt.Errorf("unsupported audio file: %s", path)
	}
}

// File decodes the file at path
func File(path string, rawRate int) (audio.Buffer, error) {
	dec, err := ForPath(path, rawRate)
	if err != nil {
		return audio.Buffer{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	buf, err := dec.Decode(f)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return buf, nil
}

//go:build portaudio

// ABOUTME: PortAudio playback device
// ABOUTME: Cross-platform callback output using PortAudio
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio device implementation
type PortAudio struct {
	stream  *portaudio.Stream
	fill    Callback
	scratch []byte
	running bool
	host    string

	mu sync.Mutex
}

// NewPortAudio creates a new PortAudio device
func NewPortAudio() Device {
	return &PortAudio{}
}

// Open initializes PortAudio and opens a stopped default output stream
func (p *PortAudio) Open(desired audio.Format, framesPerBuffer int, fill Callback) (audio.Format, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return audio.Format{}, fmt.Errorf("portaudio stream already open")
	}
	if fill == nil {
		return audio.Format{}, fmt.Errorf("portaudio device requires a callback")
	}

	if err := portaudio.Initialize(); err != nil {
		return audio.Format{}, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p.fill = fill
	p.scratch = make([]byte, framesPerBuffer*desired.Channels*audio.BytesPerSample)

	stream, err := portaudio.OpenDefaultStream(0, desired.Channels, float64(desired.SampleRate), framesPerBuffer, p.process)
	if err != nil {
		portaudio.Terminate()
		return audio.Format{}, fmt.Errorf("failed to open stream: %w", err)
	}

	p.stream = stream
	p.host = "portaudio"
	if api, err := portaudio.DefaultHostApi(); err == nil && api != nil {
		p.host = api.Name
	}

	format := audio.Format{
		SampleRate: desired.SampleRate,
		Channels:   desired.Channels,
		BitDepth:   audio.BitDepth,
	}
	log.Printf("portaudio stream opened: %s via %s", format, p.host)

	return format, nil
}

// process bridges PortAudio's int16 buffer to the byte callback
func (p *PortAudio) process(out []int16) {
	need := len(out) * audio.BytesPerSample
	if len(p.scratch) < need {
		p.scratch = make([]byte, need)
	}
	buf := p.scratch[:need]

	p.fill(buf)

	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}
}

// Pause starts or stops the stream
func (p *PortAudio) Pause(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return fmt.Errorf("portaudio stream not open")
	}
	if paused && p.running {
		if err := p.stream.Stop(); err != nil {
			return fmt.Errorf("failed to stop stream: %w", err)
		}
		p.running = false
	} else if !paused && !p.running {
		if err := p.stream.Start(); err != nil {
			return fmt.Errorf("failed to start stream: %w", err)
		}
		p.running = true
	}
	return nil
}

// Close stops the stream and terminates PortAudio
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}
	if p.running {
		if err := p.stream.Stop(); err != nil {
			log.Printf("Warning: portaudio stop error: %v", err)
		}
		p.running = false
	}
	if err := p.stream.Close(); err != nil {
		log.Printf("Warning: portaudio close error: %v", err)
	}
	p.stream = nil
	return portaudio.Terminate()
}

// DriverName returns the PortAudio host API name
func (p *PortAudio) DriverName() string {
	if p.host == "" {
		return "portaudio"
	}
	return p.host
}

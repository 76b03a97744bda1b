// ABOUTME: Oto-based playback device
// ABOUTME: Drives the DMA adapter from oto's pull reader
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process, so it is shared across devices
var (
	otoCtx    *oto.Context
	otoFormat audio.Format
	otoMu     sync.Mutex
)

// Oto device implementation using oto library
type Oto struct {
	player *oto.Player
	reader *callbackReader
	format audio.Format

	mu sync.Mutex
}

// callbackReader adapts a Callback to the io.Reader oto pulls from
type callbackReader struct {
	mu     sync.Mutex
	fill   Callback
	closed bool
}

// Read hands the even-length prefix of p to the callback
func (r *callbackReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(p) &^ 1
	if r.closed {
		clear(p[:n])
		return n, nil
	}
	r.fill(p[:n])
	return n, nil
}

func (r *callbackReader) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// NewOto creates a new Oto device
func NewOto() Device {
	return &Oto{}
}

// Open creates (or reuses) the oto context and a paused player
func (o *Oto) Open(desired audio.Format, framesPerBuffer int, fill Callback) (audio.Format, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		return audio.Format{}, fmt.Errorf("oto device already open")
	}
	if fill == nil {
		return audio.Format{}, fmt.Errorf("oto device requires a callback")
	}

	ctx, format, err := sharedOtoContext(desired, framesPerBuffer)
	if err != nil {
		return audio.Format{}, err
	}

	o.reader = &callbackReader{fill: fill}
	o.player = ctx.NewPlayer(o.reader)
	o.format = format

	log.Printf("oto device opened: %s", format)

	return format, nil
}

// sharedOtoContext returns the process-wide oto context, creating it on first use
func sharedOtoContext(desired audio.Format, framesPerBuffer int) (*oto.Context, audio.Format, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		// oto cannot be reinitialized; keep running at the original format
		if otoFormat != desired {
			log.Printf("Warning: oto context already running at %s, ignoring request for %s", otoFormat, desired)
		}
		if err := otoCtx.Resume(); err != nil {
			return nil, audio.Format{}, fmt.Errorf("failed to resume oto context: %w", err)
		}
		return otoCtx, otoFormat, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   desired.SampleRate,
		ChannelCount: desired.Channels,
		Format:       oto.FormatSignedInt16LE,
	}
	if framesPerBuffer > 0 {
		op.BufferSize = time.Duration(framesPerBuffer) * time.Second / time.Duration(desired.SampleRate)
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	otoCtx = ctx
	otoFormat = audio.Format{
		SampleRate: desired.SampleRate,
		Channels:   desired.Channels,
		BitDepth:   audio.BitDepth,
	}
	return otoCtx, otoFormat, nil
}

// Pause pauses or resumes the player
func (o *Oto) Pause(paused bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return fmt.Errorf("oto device not open")
	}
	if paused {
		o.player.Pause()
	} else {
		o.player.Play()
	}
	return nil
}

// Close stops the player and waits out any in-flight read
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.reader != nil {
		o.reader.close()
		o.reader = nil
	}
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			log.Printf("Warning: oto player close error: %v", err)
		}
		o.player = nil

		otoMu.Lock()
		if otoCtx != nil {
			if err := otoCtx.Suspend(); err != nil {
				log.Printf("Warning: oto suspend error: %v", err)
			}
		}
		otoMu.Unlock()
	}
	return nil
}

// DriverName returns the backend name
func (o *Oto) DriverName() string {
	return "oto"
}

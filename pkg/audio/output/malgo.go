// ABOUTME: Malgo-based playback device
// ABOUTME: Uses miniaudio via malgo and forwards its data callback to the DMA adapter
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo device implementation using malgo/miniaudio library
type Malgo struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	format   audio.Format
	running  bool

	mu sync.Mutex
}

// NewMalgo creates a new Malgo device
func NewMalgo() Device {
	return &Malgo{}
}

// Open initializes the playback device without starting it
func (m *Malgo) Open(desired audio.Format, framesPerBuffer int, fill Callback) (audio.Format, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return audio.Format{}, fmt.Errorf("malgo device already open")
	}
	if fill == nil {
		return audio.Format{}, fmt.Errorf("malgo device requires a callback")
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return audio.Format{}, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(desired.Channels)
	deviceConfig.SampleRate = uint32(desired.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(framesPerBuffer)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			fill(pOutputSample)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return audio.Format{}, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	m.malgoCtx = ctx
	m.device = device
	// miniaudio converts to the requested S16 format internally
	m.format = audio.Format{
		SampleRate: desired.SampleRate,
		Channels:   desired.Channels,
		BitDepth:   audio.BitDepth,
	}

	log.Printf("malgo device opened: %s, %d frames per period", m.format, framesPerBuffer)

	return m.format, nil
}

// Pause starts or stops the device
func (m *Malgo) Pause(paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return fmt.Errorf("malgo device not open")
	}

	if paused && m.running {
		if err := m.device.Stop(); err != nil {
			return fmt.Errorf("failed to stop device: %w", err)
		}
		m.running = false
	} else if !paused && !m.running {
		if err := m.device.Start(); err != nil {
			return fmt.Errorf("failed to start device: %w", err)
		}
		m.running = true
	}
	return nil
}

// Close stops and releases the device and its context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		if m.running {
			if err := m.device.Stop(); err != nil {
				log.Printf("Warning: device stop error: %v", err)
			}
			m.running = false
		}
		// Uninit waits for the audio thread, so no callback survives Close
		m.device.Uninit()
		m.device = nil
	}

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}

	return nil
}

// DriverName returns the backend name
func (m *Malgo) DriverName() string {
	return "malgo"
}

// ABOUTME: Main player application orchestration
// ABOUTME: Coordinates output device, mixer, monitor and UI
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/snddma/internal/config"
	"github.com/Resonate-Protocol/snddma/internal/mixer"
	"github.com/Resonate-Protocol/snddma/internal/monitor"
	"github.com/Resonate-Protocol/snddma/internal/ui"
	"github.com/Resonate-Protocol/snddma/internal/version"
	"github.com/Resonate-Protocol/snddma/pkg/audio/decode"
	"github.com/Resonate-Protocol/snddma/pkg/audio/output"
	"github.com/Resonate-Protocol/snddma/pkg/audio/resample"
	"github.com/Resonate-Protocol/snddma/pkg/dma"
)

// Config holds player configuration
type Config struct {
	Settings *config.Config
	Name     string
	Files    []string
	Tone     float64
	Loop     bool
	UseTUI   bool
}

// Player represents the main player application
type Player struct {
	config  Config
	out     *dma.Output
	mixer   *mixer.Mixer
	monitor *monitor.Server
	control *ui.Control
	tuiProg *tea.Program

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a new player
func New(cfg Config) (*Player, error) {
	if cfg.Settings == nil {
		cfg.Settings = config.DefaultConfig()
	}
	if cfg.Name == "" {
		cfg.Name = version.Product
	}
	s := cfg.Settings

	dev, err := output.New(s.Audio.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio device: %w", err)
	}

	out := dma.New(dma.Options{
		Device:          dev,
		BufferSamples:   s.Audio.BufferSamples,
		FramesPerBuffer: s.Audio.PeriodFrames,
		TimeCeiling:     s.Audio.TimeCeiling,
	})

	ctx, cancel := context.WithCancel(context.Background())

	return &Player{
		config: cfg,
		out:    out,
		mixer: mixer.New(out, mixer.Options{
			Mixahead: s.Mixer.Mixahead,
			Volume:   &s.Mixer.Volume,
		}),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Output returns the sound output
func (p *Player) Output() *dma.Output {
	return p.out
}

// Mixer returns the mixer
func (p *Player) Mixer() *mixer.Mixer {
	return p.mixer
}

// Start opens audio and starts the background loops.
// Audio init failure is logged and the player keeps running silently.
func (p *Player) Start() error {
	s := p.config.Settings

	if !p.out.Init(s.Audio.KHz) {
		log.Printf("Audio unavailable, continuing without sound")
	}
	p.out.PrintDeviceName()

	if err := p.loadVoices(); err != nil {
		return err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.mixer.Run(p.ctx)
	}()

	if s.Monitor.Enabled {
		p.monitor = monitor.New(monitor.Config{
			Addr:       s.Monitor.Addr,
			Name:       p.config.Name,
			EnableMDNS: s.Monitor.MDNS,
		}, p.Snapshot)
		if err := p.monitor.Start(p.ctx); err != nil {
			p.Stop()
			return fmt.Errorf("failed to start monitor: %w", err)
		}
	}

	if p.config.UseTUI {
		p.control = ui.NewControl()
		p.tuiProg = ui.Run(p.control, p.mixer.Volume())

		p.wg.Add(2)
		go func() {
			defer p.wg.Done()
			p.handleControls()
		}()
		go func() {
			defer p.wg.Done()
			p.statsUpdateLoop()
		}()
		go func() {
			if _, err := p.tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	}

	return nil
}

// loadVoices queues the configured files and test tone
func (p *Player) loadVoices() error {
	if !p.out.Initialized() {
		return nil
	}
	rate := p.out.Format().SampleRate

	for _, path := range p.config.Files {
		buf, err := decode.File(path, rate)
		if err != nil {
			return err
		}
		buf = resample.Buffer(buf, rate)
		id := p.mixer.Play(mixer.NewBufferSource(buf, p.config.Loop))
		log.Printf("Playing %s (%d frames) as voice %s", path, buf.Frames(), id)
	}

	if p.config.Tone > 0 {
		id := p.mixer.Play(mixer.NewToneSource(p.config.Tone, rate))
		log.Printf("Playing %.0fHz test tone as voice %s", p.config.Tone, id)
	}
	return nil
}

// Done is closed when the player stops
func (p *Player) Done() <-chan struct{} {
	return p.ctx.Done()
}

// Stop stops the player and shuts audio down
func (p *Player) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		if p.tuiProg != nil {
			p.tuiProg.Quit()
		}
		p.wg.Wait()
		if p.monitor != nil {
			p.monitor.Wait()
		}
		p.out.Shutdown()
	})
}

// Snapshot returns combined output and mixer stats for the monitor
func (p *Player) Snapshot() monitor.Snapshot {
	snap := monitor.FromStats(p.out.Stats())
	ms := p.mixer.Stats()
	snap.Voices = ms.Voices
	snap.Underruns = ms.Underruns
	return snap
}

// Status returns combined stats for the TUI
func (p *Player) Status() ui.StatusMsg {
	st := p.out.Stats()
	ms := p.mixer.Stats()
	return ui.StatusMsg{
		Initialized:     st.Initialized,
		Driver:          st.Driver,
		SampleRate:      st.Format.SampleRate,
		Channels:        st.Format.Channels,
		BitDepth:        st.Format.BitDepth,
		Samples:         st.Samples,
		Cursor:          st.Cursor,
		SoundTime:       st.SoundTime,
		PaintedTime:     st.PaintedTime,
		Wraps:           st.Wraps,
		Resets:          st.Resets,
		Callbacks:       st.Callbacks,
		SilentCallbacks: st.SilentCallbacks,
		Voices:          ms.Voices,
		Underruns:       ms.Underruns,
	}
}

// handleControls applies TUI commands
func (p *Player) handleControls() {
	for {
		select {
		case vol := <-p.control.Volume:
			p.mixer.SetVolume(vol.Volume)
			p.mixer.SetMuted(vol.Muted)
		case action := <-p.control.Actions:
			p.handleAction(action)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Player) handleAction(action ui.Action) {
	switch action {
	case ui.ActionQuit:
		log.Printf("Received quit signal from TUI")
		p.cancel()
	case ui.ActionPause:
		if err := p.out.Pause(true); err != nil {
			log.Printf("Pause failed: %v", err)
		}
	case ui.ActionResume:
		if err := p.out.Pause(false); err != nil {
			log.Printf("Resume failed: %v", err)
		}
	case ui.ActionStopAll:
		p.mixer.StopAllSounds()
	}
}

// statsUpdateLoop periodically updates TUI with output statistics
func (p *Player) statsUpdateLoop() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.tuiProg.Send(p.Status())
		case <-p.ctx.Done():
			return
		}
	}
}

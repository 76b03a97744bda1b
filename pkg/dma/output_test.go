// ABOUTME: Tests for the sound output context
// ABOUTME: Tests lifecycle, error taxonomy, callback copy and concurrent painting
package dma

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
	"github.com/Resonate-Protocol/snddma/pkg/audio/output"
)

type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *logRecorder) Logf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *logRecorder) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func newTestOutput(t *testing.T, bufferSamples int) (*Output, *output.Null, *logRecorder) {
	t.Helper()
	dev := output.NewNull(false)
	logs := &logRecorder{}
	out := New(Options{
		Device:        dev,
		BufferSamples: bufferSamples,
		Logf:          logs.Logf,
	})
	return out, dev, logs
}

func TestInitSuccess(t *testing.T) {
	out, dev, logs := newTestOutput(t, 0)
	defer out.Shutdown()

	if !out.Init(44) {
		t.Fatal("expected Init to succeed")
	}
	if !out.Initialized() {
		t.Error("expected output initialized")
	}

	expected := audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}
	if out.Format() != expected {
		t.Errorf("expected format %v, got %v", expected, out.Format())
	}
	if out.Samples() != DefaultBufferSamples*2 {
		t.Errorf("expected %d samples, got %d", DefaultBufferSamples*2, out.Samples())
	}
	if out.FullSamples() != DefaultBufferSamples {
		t.Errorf("expected full samples %d, got %d", DefaultBufferSamples, out.FullSamples())
	}
	if dev.Opens() != 1 {
		t.Errorf("expected 1 open, got %d", dev.Opens())
	}
	if !logs.contains("Using null audio driver @ 44100 Hz") {
		t.Errorf("expected driver log line, got %v", logs.lines)
	}

	// Device was unpaused
	if buf := dev.Pump(8); buf == nil {
		t.Error("expected the device to be running after Init")
	}

	// A second Init is a no-op success
	if !out.Init(22) {
		t.Error("expected repeated Init to succeed")
	}
	if dev.Opens() != 1 {
		t.Errorf("expected device opened once, got %d", dev.Opens())
	}
}

func TestInitDefaultRate(t *testing.T) {
	out, _, _ := newTestOutput(t, 0)
	defer out.Shutdown()

	if !out.Init(0) {
		t.Fatal("expected Init to succeed")
	}
	if out.Format().SampleRate != 11025 {
		t.Errorf("expected 11025 Hz, got %d", out.Format().SampleRate)
	}
}

func TestInitFailures(t *testing.T) {
	tests := []struct {
		name          string
		bufferSamples int
		obtained      *audio.Format
		openErr       error
		expectedErr   error
		expectedClose int
	}{
		{
			name:          "device unavailable",
			openErr:       errors.New("no such device"),
			expectedErr:   ErrDeviceUnavailable,
			expectedClose: 0,
		},
		{
			name:          "eight bit device",
			obtained:      &audio.Format{SampleRate: 11025, Channels: 2, BitDepth: 8},
			expectedErr:   ErrUnsupportedFormat,
			expectedClose: 1,
		},
		{
			name:          "six channel device",
			obtained:      &audio.Format{SampleRate: 11025, Channels: 6, BitDepth: 16},
			expectedErr:   ErrUnsupportedFormat,
			expectedClose: 1,
		},
		{
			name:          "bad buffer size",
			bufferSamples: 1000,
			expectedErr:   ErrAllocationFailure,
			expectedClose: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, dev, _ := newTestOutput(t, tt.bufferSamples)
			dev.Obtained = tt.obtained
			dev.OpenErr = tt.openErr

			err := out.Open(11)
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("expected %v, got %v", tt.expectedErr, err)
			}
			if out.Initialized() {
				t.Error("expected output not initialized")
			}
			if out.Samples() != 0 {
				t.Errorf("expected no ring buffer, got %d samples", out.Samples())
			}
			if dev.Closes() != tt.expectedClose {
				t.Errorf("expected %d closes, got %d", tt.expectedClose, dev.Closes())
			}

			out.Shutdown()
			if dev.Closes() != tt.expectedClose {
				t.Errorf("expected Shutdown after failure not to close again, got %d", dev.Closes())
			}
		})
	}
}

func TestInitWithoutDevice(t *testing.T) {
	out := New(Options{Logf: func(string, ...any) {}})

	if out.Init(11) {
		t.Error("expected Init without a device to fail")
	}
	if err := out.Open(11); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("expected ErrDeviceUnavailable, got %v", err)
	}
	if out.DriverName() != "none" {
		t.Errorf("expected driver none, got %s", out.DriverName())
	}
}

func TestMonoDevice(t *testing.T) {
	out, dev, _ := newTestOutput(t, 64)
	dev.Obtained = &audio.Format{SampleRate: 22050, Channels: 1, BitDepth: 16}
	defer out.Shutdown()

	if err := out.Open(22); err != nil {
		t.Fatalf("expected mono device to be accepted: %v", err)
	}
	if out.Samples() != 64 {
		t.Errorf("expected 64 samples, got %d", out.Samples())
	}
}

func TestUninitializedIsNoOp(t *testing.T) {
	out, dev, _ := newTestOutput(t, 0)

	if out.DMAPos() != 0 {
		t.Errorf("expected cursor 0, got %d", out.DMAPos())
	}
	if out.SoundTime() != 0 {
		t.Errorf("expected sound time 0, got %d", out.SoundTime())
	}

	out.BeginPainting()
	out.Submit()
	out.Submit()

	called := false
	err := out.Paint(func(rb *RingBuffer) error {
		called = true
		return nil
	})
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if called {
		t.Error("expected Paint not to run without output")
	}
	if err := out.Pause(true); err != nil {
		t.Errorf("expected Pause to be a no-op, got %v", err)
	}

	// Nothing was opened, so nothing is closed or logged
	out.Shutdown()
	if dev.Closes() != 0 {
		t.Errorf("expected no closes, got %d", dev.Closes())
	}
}

func TestShutdownIdempotent(t *testing.T) {
	out, dev, logs := newTestOutput(t, 0)
	if !out.Init(11) {
		t.Fatal("expected Init to succeed")
	}

	out.Shutdown()
	out.Shutdown()

	if dev.Closes() != 1 {
		t.Errorf("expected exactly 1 close, got %d", dev.Closes())
	}
	if out.Initialized() {
		t.Error("expected output not initialized after shutdown")
	}
	if out.DMAPos() != 0 {
		t.Errorf("expected cursor 0 after shutdown, got %d", out.DMAPos())
	}
	if !logs.contains("Shutting down audio.") {
		t.Error("expected shutdown log line")
	}
	if buf := dev.Pump(8); buf != nil {
		t.Error("expected no callbacks after shutdown")
	}

	// The output can be opened again
	if !out.Init(11) {
		t.Error("expected Init after Shutdown to succeed")
	}
	out.Shutdown()
	if dev.Closes() != 2 {
		t.Errorf("expected 2 closes, got %d", dev.Closes())
	}
}

func TestCallbackCopiesPaintedSamples(t *testing.T) {
	out, dev, _ := newTestOutput(t, 16) // 32 samples
	defer out.Shutdown()
	if !out.Init(11) {
		t.Fatal("expected Init to succeed")
	}

	err := out.Paint(func(rb *RingBuffer) error {
		samples := make([]int16, rb.Samples())
		for i := range samples {
			samples[i] = int16(i * 100)
		}
		rb.WriteSamples(0, samples)
		return nil
	})
	if err != nil {
		t.Fatalf("paint failed: %v", err)
	}

	buf := dev.Pump(48) // 24 samples
	for i := 0; i < 24; i++ {
		got := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		if got != int16(i*100) {
			t.Errorf("sample %d: expected %d, got %d", i, i*100, got)
		}
	}
	if out.DMAPos() != 24 {
		t.Errorf("expected cursor 24, got %d", out.DMAPos())
	}

	// Wraps: 8 samples from the tail then 16 from the head
	buf = dev.Pump(48)
	first := int16(binary.LittleEndian.Uint16(buf[0:]))
	head := int16(binary.LittleEndian.Uint16(buf[16:]))
	if first != 2400 {
		t.Errorf("expected first sample 2400, got %d", first)
	}
	if head != 0 {
		t.Errorf("expected head sample 0 after wrap, got %d", head)
	}
	if out.DMAPos() != 16 {
		t.Errorf("expected cursor 16, got %d", out.DMAPos())
	}

	stats := out.Stats()
	if stats.Callbacks != 2 {
		t.Errorf("expected 2 callbacks, got %d", stats.Callbacks)
	}
}

func TestPaintReleasesOnError(t *testing.T) {
	out, dev, _ := newTestOutput(t, 16)
	defer out.Shutdown()
	if !out.Init(11) {
		t.Fatal("expected Init to succeed")
	}

	boom := errors.New("boom")
	if err := out.Paint(func(rb *RingBuffer) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}

	func() {
		defer func() { _ = recover() }()
		_ = out.Paint(func(rb *RingBuffer) error { panic("paint") })
	}()

	// The callback would block forever if the gate leaked
	if buf := dev.Pump(4); buf == nil {
		t.Error("expected callback to run")
	}
}

func TestSoundTimeOverflowStopsSounds(t *testing.T) {
	dev := output.NewNull(false)
	out := New(Options{
		Device:        dev,
		BufferSamples: 16, // 32 samples, 16 per lap
		TimeCeiling:   1000,
		Logf:          func(string, ...any) {},
	})
	defer out.Shutdown()
	if !out.Init(11) {
		t.Fatal("expected Init to succeed")
	}

	var stops atomic.Int32
	out.SetStopAllSounds(func() { stops.Add(1) })

	dev.Pump(48)
	if st := out.SoundTime(); st != 12 {
		t.Errorf("expected sound time 12, got %d", st)
	}

	out.SetPaintedTime(1001)
	dev.Pump(48) // cursor wraps to 16
	if st := out.SoundTime(); st != 8 {
		t.Errorf("expected sound time 8 after reset, got %d", st)
	}
	if stops.Load() != 1 {
		t.Errorf("expected stop hook once, got %d", stops.Load())
	}
	if out.PaintedTime() != 16 {
		t.Errorf("expected painted time 16, got %d", out.PaintedTime())
	}

	// Further polls and wraps stay in the new epoch
	out.SoundTime()
	dev.Pump(48)
	out.SoundTime()
	if stops.Load() != 1 {
		t.Errorf("expected stop hook to stay at 1, got %d", stops.Load())
	}
	if r := out.Stats().Resets; r != 1 {
		t.Errorf("expected 1 reset, got %d", r)
	}
}

func TestConcurrentPaintNeverTears(t *testing.T) {
	out, dev, _ := newTestOutput(t, 64) // 128 samples
	defer out.Shutdown()
	if !out.Init(11) {
		t.Fatal("expected Init to succeed")
	}

	var wg sync.WaitGroup
	done := make(chan struct{})

	// Mixer repaints the whole buffer with one value per pass
	wg.Add(1)
	go func() {
		defer wg.Done()
		value := int16(0)
		for {
			select {
			case <-done:
				return
			default:
			}
			value++
			_ = out.Paint(func(rb *RingBuffer) error {
				for i := 0; i < rb.Samples(); i++ {
					rb.WriteSamples(i, []int16{value})
				}
				return nil
			})
			out.SoundTime()
		}
	}()

	torn := 0
	for i := 0; i < 2000; i++ {
		buf := dev.Pump(40)
		first := binary.LittleEndian.Uint16(buf)
		for j := 2; j < len(buf); j += 2 {
			if binary.LittleEndian.Uint16(buf[j:]) != first {
				torn++
				break
			}
		}
		pos := out.DMAPos()
		if pos < 0 || pos >= out.Samples() {
			t.Fatalf("cursor %d outside buffer", pos)
		}
	}
	close(done)
	wg.Wait()

	if torn != 0 {
		t.Errorf("expected no torn copies, got %d", torn)
	}
}

func TestShutdownDuringCallbacks(t *testing.T) {
	out, dev, _ := newTestOutput(t, 64)
	if !out.Init(11) {
		t.Fatal("expected Init to succeed")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if dev.Pump(64) == nil {
				return
			}
		}
	}()

	out.Shutdown()
	wg.Wait()

	if dev.Closes() != 1 {
		t.Errorf("expected 1 close, got %d", dev.Closes())
	}
}

func TestPrintDeviceName(t *testing.T) {
	out, _, logs := newTestOutput(t, 0)

	out.PrintDeviceName()
	if !logs.contains("Audio: none") {
		t.Error("expected Audio: none before Init")
	}

	if !out.Init(48) {
		t.Fatal("expected Init to succeed")
	}
	defer out.Shutdown()

	out.PrintDeviceName()
	if !logs.contains("Audio: null (48000Hz/2ch/16bit)") {
		t.Errorf("expected device line, got %v", logs.lines)
	}
}

func TestPauseStopsCallbacks(t *testing.T) {
	out, dev, _ := newTestOutput(t, 0)
	defer out.Shutdown()
	if !out.Init(11) {
		t.Fatal("expected Init to succeed")
	}

	if err := out.Pause(true); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if dev.Pump(8) != nil {
		t.Error("expected no callbacks while paused")
	}
	if err := out.Pause(false); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if dev.Pump(8) == nil {
		t.Error("expected callbacks after resume")
	}
}

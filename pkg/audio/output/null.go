// ABOUTME: Null playback device
// ABOUTME: Discards audio on a wall-clock schedule or under manual pumping
package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
)

// Null is a device with no hardware behind it. In realtime mode it invokes
// the callback once per period from its own goroutine; otherwise the caller
// drives it with Pump.
type Null struct {
	// Obtained, when set, replaces the format Open reports
	Obtained *audio.Format
	// OpenErr, when set, makes Open fail
	OpenErr error

	realtime bool
	fill     Callback
	format   audio.Format
	period   int
	open     bool
	paused   bool
	opens    int
	closes   int

	stop chan struct{}
	done chan struct{}
	mu   sync.Mutex
}

// NewNull creates a null device
func NewNull(realtime bool) *Null {
	return &Null{realtime: realtime}
}

// Open records the callback and starts paused
func (n *Null) Open(desired audio.Format, framesPerBuffer int, fill Callback) (audio.Format, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.OpenErr != nil {
		return audio.Format{}, n.OpenErr
	}
	if n.open {
		return audio.Format{}, fmt.Errorf("null device already open")
	}
	if fill == nil {
		return audio.Format{}, fmt.Errorf("null device requires a callback")
	}

	n.format = desired
	if n.Obtained != nil {
		n.format = *n.Obtained
	}
	n.fill = fill
	n.period = framesPerBuffer
	if n.period <= 0 {
		n.period = 512
	}
	n.open = true
	n.paused = true
	n.opens++

	if n.realtime {
		n.stop = make(chan struct{})
		n.done = make(chan struct{})
		go n.run(n.stop, n.done)
	}

	return n.format, nil
}

// run invokes the callback once per period of wall-clock time
func (n *Null) run(stop, done chan struct{}) {
	defer close(done)

	frameBytes := n.format.FrameBytes()
	if frameBytes <= 0 {
		frameBytes = audio.DefaultChannels * audio.BytesPerSample
	}
	interval := time.Duration(n.period) * time.Second / time.Duration(max(n.format.SampleRate, 1))
	buf := make([]byte, n.period*frameBytes)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.mu.Lock()
			if n.open && !n.paused {
				n.fill(buf)
			}
			n.mu.Unlock()
		}
	}
}

// Pump invokes the callback once with a region of size bytes and returns it.
// It returns nil when the device is closed or paused.
func (n *Null) Pump(size int) []byte {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.open || n.paused {
		return nil
	}
	buf := make([]byte, size)
	n.fill(buf)
	return buf
}

// Pause starts or stops callback invocation
func (n *Null) Pause(paused bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.open {
		return fmt.Errorf("null device not open")
	}
	n.paused = paused
	return nil
}

// Close stops the pacing goroutine and drops the callback
func (n *Null) Close() error {
	n.mu.Lock()
	if !n.open {
		n.mu.Unlock()
		return nil
	}
	n.open = false
	n.fill = nil
	n.closes++
	stop, done := n.stop, n.done
	n.stop, n.done = nil, nil
	n.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}

// Opens returns how many times Open succeeded
func (n *Null) Opens() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.opens
}

// Closes returns how many times an open device was closed
func (n *Null) Closes() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closes
}

// DriverName returns the backend name
func (n *Null) DriverName() string {
	return "null"
}

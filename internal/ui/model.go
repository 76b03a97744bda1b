// ABOUTME: Bubbletea model for the sound output TUI
// ABOUTME: Defines display state, key handling and status updates
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Device
	initialized bool
	driver      string
	sampleRate  int
	channels    int
	bitDepth    int

	// Ring buffer and clock
	samples     int
	cursor      int
	soundTime   int64
	paintedTime int64
	wraps       int64
	resets      int64

	// Callbacks
	callbacks int64
	silent    int64

	// Mixer
	voices    int
	underruns int64
	volume    int
	muted     bool
	paused    bool

	// Debug
	showDebug bool

	// Dimensions
	width  int
	height int

	control *Control
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderClock()
	s += m.renderControls()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders device status
func (m Model) renderHeader() string {
	status := "No audio"
	if m.initialized {
		status = fmt.Sprintf("%s %dHz %s %d-bit", m.driver, m.sampleRate, channelName(m.channels), m.bitDepth)
	}
	if m.paused {
		status += " (paused)"
	}

	return fmt.Sprintf(`┌─ snddma ─────────────────────────────────────────────┐
│ Audio:  %-45s │
├──────────────────────────────────────────────────────┤
`, truncate(status, 45))
}

// renderClock renders cursor position and sample clock
func (m Model) renderClock() string {
	cursorBar := renderBar(m.cursor, m.samples, 30)
	ahead := m.paintedTime - m.soundTime

	return fmt.Sprintf("│ Cursor: [%s] %-13d │\n"+
		"│ Sound time:   %-38d │\n"+
		"│ Painted time: %-38d │\n"+
		"│ Ahead: %-6d  Wraps: %-8d  Resets: %-9d │\n",
		cursorBar, m.cursor,
		m.soundTime,
		m.paintedTime,
		ahead, m.wraps, m.resets)
}

// renderControls renders volume and voices
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}

	volumeBar := renderBar(m.volume, 100, 10)

	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume: [%s] %d%%%s%-17s │\n"+
		"│ Voices: %-3d Underruns: %-27d │\n",
		volumeBar, m.volume, muteIcon, "",
		m.voices, m.underruns)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓:Volume m:Mute p:Pause s:Stop all d:Debug q:Quit  │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ DEBUG:                                               │
│   Ring samples: %-36d │
│   Callbacks: %-10d Silent: %-16d │
`, m.samples, m.callbacks, m.silent)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.control.send(ActionQuit)
		return m, tea.Quit
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.control.setVolume(m.volume, m.muted)
		}
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.control.setVolume(m.volume, m.muted)
		}
	case "m":
		m.muted = !m.muted
		m.control.setVolume(m.volume, m.muted)
	case "p":
		m.paused = !m.paused
		if m.paused {
			m.control.send(ActionPause)
		} else {
			m.control.send(ActionResume)
		}
	case "s":
		m.control.send(ActionStopAll)
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	m.initialized = msg.Initialized
	if msg.Driver != "" {
		m.driver = msg.Driver
	}
	if msg.SampleRate != 0 {
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
		m.bitDepth = msg.BitDepth
	}
	m.samples = msg.Samples
	m.cursor = msg.Cursor
	m.soundTime = msg.SoundTime
	m.paintedTime = msg.PaintedTime
	m.wraps = msg.Wraps
	m.resets = msg.Resets
	m.callbacks = msg.Callbacks
	m.silent = msg.SilentCallbacks
	m.voices = msg.Voices
	m.underruns = msg.Underruns
	if msg.Volume != nil {
		m.volume = *msg.Volume
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Initialized     bool
	Driver          string
	SampleRate      int
	Channels        int
	BitDepth        int
	Samples         int
	Cursor          int
	SoundTime       int64
	PaintedTime     int64
	Wraps           int64
	Resets          int64
	Callbacks       int64
	SilentCallbacks int64
	Voices          int
	Underruns       int64
	Volume          *int
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := 0
	if max > 0 {
		filled = (value * width) / max
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}

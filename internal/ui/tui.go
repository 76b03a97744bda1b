// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program and forwards key actions to the player
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Action is a player command issued from the keyboard
type Action int

const (
	ActionQuit Action = iota
	ActionPause
	ActionResume
	ActionStopAll
)

// VolumeChangeMsg carries a volume or mute change
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// Control holds channels for communication from the TUI to the player
type Control struct {
	Volume  chan VolumeChangeMsg
	Actions chan Action
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Volume:  make(chan VolumeChangeMsg, 10),
		Actions: make(chan Action, 10),
	}
}

// setVolume forwards a volume change without blocking the UI
func (c *Control) setVolume(volume int, muted bool) {
	if c == nil {
		return
	}
	select {
	case c.Volume <- VolumeChangeMsg{Volume: volume, Muted: muted}:
	default:
	}
}

// send forwards an action without blocking the UI
func (c *Control) send(a Action) {
	if c == nil {
		return
	}
	select {
	case c.Actions <- a:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(control *Control, volume int) Model {
	return Model{
		volume:  volume,
		control: control,
	}
}

// Run creates the TUI program; the caller starts it with p.Run
func Run(control *Control, volume int) *tea.Program {
	return tea.NewProgram(NewModel(control, volume), tea.WithAltScreen())
}

// ABOUTME: Tests for audio types
// ABOUTME: Tests rate selection, format validation and sample helpers
package audio

import "testing"

func TestRateFromKHz(t *testing.T) {
	tests := []struct {
		khz      int
		expected int
	}{
		{48, 48000},
		{44, 44100},
		{22, 22050},
		{11, 11025},
		{0, 11025},
		{96, 11025},
	}

	for _, tt := range tests {
		result := RateFromKHz(tt.khz)
		if result != tt.expected {
			t.Errorf("khz=%d: expected %d, got %d", tt.khz, tt.expected, result)
		}
	}
}

func TestDesiredFormat(t *testing.T) {
	format := DesiredFormat(22)

	if format.SampleRate != 22050 {
		t.Errorf("expected 22050, got %d", format.SampleRate)
	}
	if format.Channels != 2 {
		t.Errorf("expected 2 channels, got %d", format.Channels)
	}
	if format.BitDepth != 16 {
		t.Errorf("expected 16-bit, got %d", format.BitDepth)
	}
	if format.FrameBytes() != 4 {
		t.Errorf("expected 4 bytes per frame, got %d", format.FrameBytes())
	}
}

func TestFormatValidate(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{"stereo", Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, false},
		{"mono", Format{SampleRate: 11025, Channels: 1, BitDepth: 16}, false},
		{"8bit", Format{SampleRate: 44100, Channels: 2, BitDepth: 8}, true},
		{"24bit", Format{SampleRate: 44100, Channels: 2, BitDepth: 24}, true},
		{"surround", Format{SampleRate: 44100, Channels: 6, BitDepth: 16}, true},
		{"zero rate", Format{SampleRate: 0, Channels: 2, BitDepth: 16}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClampInt16(t *testing.T) {
	tests := []struct {
		input    int32
		expected int16
	}{
		{0, 0},
		{1000, 1000},
		{40000, 32767},
		{-40000, -32768},
		{32767, 32767},
		{-32768, -32768},
	}

	for _, tt := range tests {
		result := ClampInt16(tt.input)
		if result != tt.expected {
			t.Errorf("input=%d: expected %d, got %d", tt.input, tt.expected, result)
		}
	}
}

func TestSampleFromBits(t *testing.T) {
	tests := []struct {
		name     string
		sample   int32
		bits     int
		expected int16
	}{
		{"16bit passthrough", -1234, 16, -1234},
		{"24bit", 0x123456, 24, 0x1234},
		{"24bit negative", -256, 24, -1},
		{"8bit", 0x40, 8, 0x4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromBits(tt.sample, tt.bits)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestBufferFrames(t *testing.T) {
	buf := Buffer{
		Samples: make([]int16, 10),
		Format:  Format{SampleRate: 44100, Channels: 2, BitDepth: 16},
	}
	if buf.Frames() != 5 {
		t.Errorf("expected 5 frames, got %d", buf.Frames())
	}

	var empty Buffer
	if empty.Frames() != 0 {
		t.Errorf("expected 0 frames for empty buffer, got %d", empty.Frames())
	}
}

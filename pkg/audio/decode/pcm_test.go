// ABOUTME: Tests for PCM decoder
// ABOUTME: Tests 16-bit and 24-bit decoding and format validation
package decode

import (
	"bytes"
	"testing"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
)

func TestNewPCM(t *testing.T) {
	tests := []struct {
		name    string
		format  audio.Format
		wantErr bool
	}{
		{"16-bit stereo", audio.Format{SampleRate: 11025, Channels: 2, BitDepth: 16}, false},
		{"24-bit mono", audio.Format{SampleRate: 48000, Channels: 1, BitDepth: 24}, false},
		{"8-bit", audio.Format{SampleRate: 11025, Channels: 2, BitDepth: 8}, true},
		{"surround", audio.Format{SampleRate: 11025, Channels: 6, BitDepth: 16}, true},
		{"no rate", audio.Format{Channels: 2, BitDepth: 16}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder, err := NewPCM(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && decoder == nil {
				t.Fatal("expected decoder to be created")
			}
		})
	}
}

func TestPCMDecode16Bit(t *testing.T) {
	decoder, err := NewPCM(audio.Format{SampleRate: 22050, Channels: 2, BitDepth: 16})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// 1000, -1000, 32767, and a dangling odd byte
	data := []byte{0xE8, 0x03, 0x18, 0xFC, 0xFF, 0x7F, 0x01}
	buf, err := decoder.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	expected := []int16{1000, -1000, 32767}
	if len(buf.Samples) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(buf.Samples))
	}
	for i, s := range expected {
		if buf.Samples[i] != s {
			t.Errorf("sample %d: expected %d, got %d", i, s, buf.Samples[i])
		}
	}
	if buf.Format.SampleRate != 22050 || buf.Format.Channels != 2 {
		t.Errorf("unexpected format %v", buf.Format)
	}
}

func TestPCMDecode24Bit(t *testing.T) {
	decoder, err := NewPCM(audio.Format{SampleRate: 48000, Channels: 1, BitDepth: 24})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// 0x123456 and -0x123456 (0xEDCBAA)
	data := []byte{0x56, 0x34, 0x12, 0xAA, 0xCB, 0xED}
	buf, err := decoder.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(buf.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(buf.Samples))
	}
	if buf.Samples[0] != 0x1234 {
		t.Errorf("expected 0x1234, got %#x", buf.Samples[0])
	}
	if buf.Samples[1] != -0x1235 {
		t.Errorf("expected -0x1235, got %d", buf.Samples[1])
	}
	if buf.Format.BitDepth != 16 {
		t.Errorf("expected 16-bit output, got %d", buf.Format.BitDepth)
	}
}

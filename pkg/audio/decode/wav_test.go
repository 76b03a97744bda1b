// ABOUTME: Tests for WAV decoder
// ABOUTME: Round-trips an encoded PCM file and rejects malformed input
package decode

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWAV(t *testing.T, path string, rate, channels int, data []int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close encoder: %v", err)
	}
}

func TestWAVDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blip.wav")
	writeWAV(t, path, 11025, 2, []int{100, -100, 2000, -2000, 32767, -32768})

	buf, err := File(path, 44100)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if buf.Format.SampleRate != 11025 {
		t.Errorf("expected 11025 Hz, got %d", buf.Format.SampleRate)
	}
	if buf.Format.Channels != 2 {
		t.Errorf("expected 2 channels, got %d", buf.Format.Channels)
	}

	expected := []int16{100, -100, 2000, -2000, 32767, -32768}
	if len(buf.Samples) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(buf.Samples))
	}
	for i, s := range expected {
		if buf.Samples[i] != s {
			t.Errorf("sample %d: expected %d, got %d", i, s, buf.Samples[i])
		}
	}
}

func TestWAVDecodeMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	writeWAV(t, path, 22050, 1, []int{1, 2, 3, 4})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}

	// plain reader without Seek
	buf, err := NewWAV().Decode(bytes.NewBuffer(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if buf.Format.Channels != 1 || len(buf.Samples) != 4 {
		t.Errorf("expected 4 mono samples, got %d channels %d samples", buf.Format.Channels, len(buf.Samples))
	}
}

func TestWAVDecodeInvalid(t *testing.T) {
	_, err := NewWAV().Decode(bytes.NewReader([]byte("RIFF but not really")))
	if err == nil {
		t.Fatal("expected error for malformed wav, got nil")
	}
}

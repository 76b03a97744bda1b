// ABOUTME: Tests for FLAC decoder and extension lookup
// ABOUTME: Tests malformed stream rejection and decoder selection by path
package decode

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFLACDecodeInvalid(t *testing.T) {
	decoder := NewFLAC()

	_, err := decoder.Decode(bytes.NewReader([]byte("not a flac stream")))
	if err == nil {
		t.Fatal("expected error for malformed flac, got nil")
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path  string
		check func(Decoder) bool
	}{
		{"boom.mp3", func(d Decoder) bool { _, ok := d.(*MP3Decoder); return ok }},
		{"BOOM.FLAC", func(d Decoder) bool { _, ok := d.(*FLACDecoder); return ok }},
		{"boom.wav", func(d Decoder) bool { _, ok := d.(*WAVDecoder); return ok }},
		{"boom.pcm", func(d Decoder) bool { _, ok := d.(*PCMDecoder); return ok }},
		{"boom.raw", func(d Decoder) bool { _, ok := d.(*PCMDecoder); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			dec, err := ForPath(tt.path, 11025)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(dec) {
				t.Errorf("unexpected decoder %T for %s", dec, tt.path)
			}
		})
	}

	if _, err := ForPath("boom.ogg", 11025); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestFileRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "click.raw")
	if err := os.WriteFile(path, []byte{0x10, 0x00, 0x20, 0x00}, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	buf, err := File(path, 22050)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(buf.Samples) != 2 || buf.Samples[0] != 16 || buf.Samples[1] != 32 {
		t.Errorf("unexpected samples %v", buf.Samples)
	}
	if buf.Format.SampleRate != 22050 {
		t.Errorf("expected 22050 Hz, got %d", buf.Format.SampleRate)
	}

	if _, err := File(filepath.Join(t.TempDir(), "missing.raw"), 22050); err == nil {
		t.Error("expected error for missing file")
	}
}

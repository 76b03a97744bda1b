// ABOUTME: Tests for MP3 decoder
// ABOUTME: Tests MP3 decoder rejection of malformed streams
package decode

import (
	"bytes"
	"testing"
)

func TestMP3DecodeInvalid(t *testing.T) {
	decoder := NewMP3()

	_, err := decoder.Decode(bytes.NewReader([]byte{0x00, 0x01, 0x02, 0x03}))
	if err == nil {
		t.Fatal("expected error for malformed mp3, got nil")
	}
}

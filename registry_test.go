// SPDX-License-Identifier: EPL-2.0

package audcore

import (
	"bytes"
	"testing"

	"github.com/ik5/audcore/internal/audiotest"
)

func TestDefaultRegistry_Formats(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	for _, tag := range Formats() {
		if _, ok := reg.Get(tag); !ok {
			t.Errorf("DefaultRegistry().Get(%q) ok = false, want true", tag)
		}
	}
}

func TestDefaultRegistry_Detect(t *testing.T) {
	t.Parallel()

	pcm := audiotest.Sine(44100, 2, 16, 64, 440, 0.5)
	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"wav by magic", "track", audiotest.WAV(44100, 2, 16, pcm), "wav"},
		{"aiff by magic", "track.wav", audiotest.AIFF(44100, 2, 16, pcm), "aiff"},
		{"mp3 by sync word", "track", audiotest.MP3(3, false), "mp3"},
		{"mp3 behind id3v2", "track", append(audiotest.ID3v2(32), audiotest.MP3(2, false)...), "mp3"},
		{"adts by sync word", "track", audiotest.ADTSFrame(4, 2, make([]byte, 16)), "aac"},
		{"flac by extension", "track.flac", []byte{0, 0, 0, 0}, "flac"},
		{"ogg alias", "track.oga", []byte{0, 0, 0, 0}, "ogg"},
	}

	reg := DefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tag, _, err := reg.Detect(tt.file, bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if tag != tt.want {
				t.Errorf("Detect() = %q, want %q", tag, tt.want)
			}
		})
	}
}

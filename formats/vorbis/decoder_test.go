// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audcore/audio"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	channels     int
	samples      []float32
	offset       int
	returnErrors bool
}

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := min(len(buf)/m.channels*m.channels, len(m.samples)-m.offset)
	copy(buf, m.samples[m.offset:m.offset+n])
	m.offset += n

	if m.offset >= len(m.samples) {
		return n, io.EOF
	}
	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Open(bytes.NewReader([]byte("This is not Ogg Vorbis data")))
	if !errors.Is(err, ErrNotVorbisFile) {
		t.Errorf("Open() error = %v, want ErrNotVorbisFile", err)
	}
	if !errors.Is(err, audio.ErrCorruptHeader) {
		t.Errorf("Open() error = %v, want audio.ErrCorruptHeader", err)
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Open(bytes.NewReader(nil)); err == nil {
		t.Error("Open() error = nil, want error for empty input")
	}
}

func TestDecoder_Probe(t *testing.T) {
	t.Parallel()

	if !(Decoder{}).Probe([]byte("OggS\x00\x02")) {
		t.Error("Probe(OggS) = false, want true")
	}
	if (Decoder{}).Probe([]byte("fLaC")) {
		t.Error("Probe(fLaC) = true, want false")
	}
	if (Decoder{}).Resync() != audio.ResyncNone {
		t.Error("Resync() != ResyncNone")
	}
}

func TestStream_Conversion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int32
	}{
		{"full positive", 1.0, fullScale},
		{"full negative", -1.0, -fullScale},
		{"half", 0.5, 4194304},
		{"silence", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			format := audio.Format{SampleRate: 44100, Channels: 1, BitDepth: outputBits}
			s := newStream(&mockOggVorbisReader{channels: 1, samples: []float32{tt.input}}, format, 1)

			out, err := s.DecodeNext()
			if err != nil {
				t.Fatalf("DecodeNext() error = %v", err)
			}
			if len(out) != 1 || out[0] != tt.want {
				t.Errorf("DecodeNext() = %v, want [%d]", out, tt.want)
			}
		})
	}
}

func TestStream_Units(t *testing.T) {
	t.Parallel()

	samples := make([]float32, (unitFrames*2+100)*2)
	format := audio.Format{SampleRate: 48000, Channels: 2, BitDepth: outputBits}
	s := newStream(&mockOggVorbisReader{channels: 2, samples: samples}, format, int64(len(samples)/2))

	var sizes []int
	for {
		out, err := s.DecodeNext()
		if errors.Is(err, audio.ErrEndOfStream) {
			break
		}
		if err != nil {
			t.Fatalf("DecodeNext() error = %v", err)
		}
		sizes = append(sizes, len(out))
	}

	want := []int{unitFrames * 2, unitFrames * 2, 200}
	if len(sizes) != len(want) {
		t.Fatalf("units = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("unit %d = %d, want %d", i, sizes[i], want[i])
		}
	}
}

func TestStream_Error(t *testing.T) {
	t.Parallel()

	format := audio.Format{SampleRate: 44100, Channels: 2, BitDepth: outputBits}
	s := newStream(&mockOggVorbisReader{channels: 2, returnErrors: true}, format, 0)

	_, err := s.DecodeNext()
	if !errors.Is(err, audio.ErrCorruptFrame) {
		t.Errorf("DecodeNext() error = %v, want ErrCorruptFrame", err)
	}
	if audio.Recoverable(err, Decoder{}.Resync()) {
		t.Error("Recoverable() = true, want Vorbis errors to be fatal")
	}
}

func TestStream_NegativeLength(t *testing.T) {
	t.Parallel()

	format := audio.Format{SampleRate: 44100, Channels: 2, BitDepth: outputBits}
	s := newStream(&mockOggVorbisReader{channels: 2}, format, -1)
	if s.Length() != 0 {
		t.Errorf("Length() = %d, want 0 for unknown", s.Length())
	}
}

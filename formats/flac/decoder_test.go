// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audcore/audio"
	"github.com/mewkiz/flac/frame"
)

// mockFrameParser simulates the flac.Stream for testing
type mockFrameParser struct {
	frames []*frame.Frame
	err    error
}

func (m *mockFrameParser) ParseNext() (*frame.Frame, error) {
	if len(m.frames) == 0 {
		if m.err != nil {
			return nil, m.err
		}
		return nil, io.EOF
	}
	f := m.frames[0]
	m.frames = m.frames[1:]
	return f, nil
}

func newFrame(channels ...[]int32) *frame.Frame {
	f := &frame.Frame{}
	f.BlockSize = uint16(len(channels[0]))
	for _, samples := range channels {
		f.Subframes = append(f.Subframes, &frame.Subframe{Samples: samples})
	}
	return f
}

func TestDecoder_Probe(t *testing.T) {
	t.Parallel()

	if !(Decoder{}).Probe([]byte("fLaC\x00\x00\x00\x22")) {
		t.Error("Probe(fLaC) = false, want true")
	}
	if (Decoder{}).Probe([]byte("OggS")) {
		t.Error("Probe(OggS) = true, want false")
	}
}

func TestDecoder_Resync(t *testing.T) {
	t.Parallel()

	if got := (Decoder{}).Resync(); got != audio.ResyncNone {
		t.Errorf("Resync() = %v, want ResyncNone", got)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("This is not FLAC data")},
		{"empty", nil},
		{"magic only", []byte("fLaC")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Open(bytes.NewReader(tt.data))
			if !errors.Is(err, audio.ErrCorruptHeader) {
				t.Errorf("Open() error = %v, want audio.ErrCorruptHeader", err)
			}
		})
	}
}

func TestStream_Interleave(t *testing.T) {
	t.Parallel()

	format := audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}
	dec := &mockFrameParser{frames: []*frame.Frame{
		newFrame([]int32{1, 2, 3}, []int32{-1, -2, -3}),
		newFrame([]int32{4}, []int32{-4}),
	}}
	s := newStream(dec, format, 4)

	out, err := s.DecodeNext()
	if err != nil {
		t.Fatalf("DecodeNext() error = %v", err)
	}
	want := []int32{1, -1, 2, -2, 3, -3}
	if len(out) != len(want) {
		t.Fatalf("DecodeNext() = %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}

	out, err = s.DecodeNext()
	if err != nil || len(out) != 2 || out[0] != 4 || out[1] != -4 {
		t.Errorf("DecodeNext() = %v, %v, want [4 -4], nil", out, err)
	}

	if _, err := s.DecodeNext(); !errors.Is(err, audio.ErrEndOfStream) {
		t.Errorf("DecodeNext() error = %v, want ErrEndOfStream", err)
	}
}

func TestStream_LargeBlock(t *testing.T) {
	t.Parallel()

	left := make([]int32, 8192)
	for i := range left {
		left[i] = int32(i)
	}
	format := audio.Format{SampleRate: 96000, Channels: 1, BitDepth: 24}
	s := newStream(&mockFrameParser{frames: []*frame.Frame{newFrame(left)}}, format, 8192)

	out, err := s.DecodeNext()
	if err != nil {
		t.Fatalf("DecodeNext() error = %v", err)
	}
	if len(out) != 8192 || out[8191] != 8191 {
		t.Errorf("DecodeNext() len = %d, last = %d, want 8192, 8191", len(out), out[len(out)-1])
	}
}

func TestStream_CorruptFrame(t *testing.T) {
	t.Parallel()

	format := audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}
	s := newStream(&mockFrameParser{err: errors.New("frame.Frame.Parse: CRC-16 checksum mismatch")}, format, 0)

	_, err := s.DecodeNext()
	if !errors.Is(err, audio.ErrCorruptFrame) {
		t.Errorf("DecodeNext() error = %v, want ErrCorruptFrame", err)
	}
	if audio.Recoverable(err, Decoder{}.Resync()) {
		t.Error("Recoverable() = true, want FLAC errors to be fatal")
	}
}

func TestStream_MissingSubframe(t *testing.T) {
	t.Parallel()

	format := audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}
	s := newStream(&mockFrameParser{frames: []*frame.Frame{newFrame([]int32{1})}}, format, 1)

	if _, err := s.DecodeNext(); !errors.Is(err, audio.ErrCorruptFrame) {
		t.Errorf("DecodeNext() error = %v, want ErrCorruptFrame", err)
	}
}

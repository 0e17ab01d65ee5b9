// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"errors"
	"testing"

	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/formats/wav"
	"github.com/ik5/audcore/internal/audiotest"
	"github.com/ik5/audcore/storage"
)

func newRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{}, "wave")
	return reg
}

// drain decodes s to the end, reading the ring as it fills.
func drain(t *testing.T, s *Slot) ([]audio.Frame, error) {
	t.Helper()

	var out []audio.Frame
	buf := make([]audio.Frame, 700)
	for range 100000 {
		_, err := s.DecodeNext()
		for s.Buffered() > 0 {
			n := s.Read(buf)
			out = append(out, buf[:n]...)
		}
		if errors.Is(err, audio.ErrEndOfStream) {
			return out, nil
		}
		if err != nil && !audio.Recoverable(err, s.Resync()) {
			return out, err
		}
	}
	t.Fatal("DecodeNext() never reached the end of stream")
	return nil, nil
}

func TestOpen_WAV(t *testing.T) {
	t.Parallel()

	samples := audiotest.Sine(44100, 2, 16, 5000, 440, 0.5)
	_, cat := storage.NewImage(512).Add("/music/tone.wav", audiotest.WAV(44100, 2, 16, samples)).Build()
	f, err := cat.Open("/music/tone.wav")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	s, err := Open(newRegistry(), "/music/tone.wav", f, Options{})
	if err != nil {
		t.Fatalf("decoder.Open() error = %v", err)
	}
	defer s.Close()

	if s.Tag != "wav" {
		t.Errorf("Tag = %q, want wav", s.Tag)
	}
	if s.Total() != 5000 || s.Rate() != 44100 || s.Resampled() {
		t.Errorf("Total, Rate, Resampled = %d, %d, %v, want 5000, 44100, false", s.Total(), s.Rate(), s.Resampled())
	}

	frames, err := drain(t, s)
	if err != nil {
		t.Fatalf("drain() error = %v", err)
	}
	if len(frames) != 5000 {
		t.Fatalf("decoded %d frames, want 5000", len(frames))
	}
	for i := 0; i < 5000; i += 997 {
		want := audio.Frame{L: samples[2*i] << 8, R: samples[2*i+1] << 8}
		if frames[i] != want {
			t.Errorf("frame %d = %v, want %v", i, frames[i], want)
		}
	}
	if !s.Drained() || s.Remaining() != 0 {
		t.Errorf("Drained, Remaining = %v, %d, want true, 0", s.Drained(), s.Remaining())
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	good := audiotest.WAV(44100, 2, 16, make([]int32, 2*4096))
	broken := append([]byte("RIFF\x24\x00\x00\x00WAVXfmt "), make([]byte, 64)...)

	tests := []struct {
		name    string
		file    string
		data    []byte
		failAt  int64 // block, -1 for none
		wantErr error
	}{
		{"unknown format", "notes.txt", []byte("just some text"), -1, audio.ErrUnsupportedFormat},
		{"corrupt header", "bad.wav", broken, -1, audio.ErrCorruptHeader},
		{"storage failure", "song.wav", good, 0, audio.ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dev, cat := storage.NewImage(512).Add(tt.file, tt.data).Build()
			if tt.failAt >= 0 {
				dev.FailFrom(uint64(tt.failAt), errors.New("ata: uncorrectable"))
			}
			f, err := cat.Open(tt.file)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			_, err = Open(newRegistry(), tt.file, f, Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("decoder.Open() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlot_StorageFailureMidTrack(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV(44100, 2, 16, make([]int32, 2*44100))
	dev, cat := storage.NewImage(512).Add("long.wav", data).Build()
	f, _ := cat.Open("long.wav")

	s, err := Open(newRegistry(), "long.wav", f, Options{})
	if err != nil {
		t.Fatalf("decoder.Open() error = %v", err)
	}
	dev.FailFrom(100, errors.New("ata: timeout"))

	_, err = drain(t, s)
	if !errors.Is(err, audio.ErrIO) {
		t.Fatalf("drain() error = %v, want audio.ErrIO", err)
	}
	if _, again := s.DecodeNext(); !errors.Is(again, audio.ErrIO) {
		t.Errorf("DecodeNext() after failure = %v, want the same error", again)
	}
	if !errors.Is(s.Err(), audio.ErrIO) {
		t.Errorf("Err() = %v, want audio.ErrIO", s.Err())
	}
}

func TestSlot_RingFull(t *testing.T) {
	t.Parallel()

	s := NewSlot(audiotest.NewRampStream(44100, 10000), audio.ResyncNone, Options{RingFrames: 2048})

	if n, err := s.DecodeNext(); n != 1152 || err != nil {
		t.Fatalf("DecodeNext() = %d, %v, want 1152, nil", n, err)
	}
	if n, err := s.DecodeNext(); n != 896 || err != nil {
		t.Fatalf("DecodeNext() = %d, %v, want 896, nil", n, err)
	}
	if !s.Full() {
		t.Fatal("Full() = false, want true")
	}
	if n, err := s.DecodeNext(); n != 0 || err != nil {
		t.Errorf("DecodeNext() on full ring = %d, %v, want 0, nil", n, err)
	}

	frames, err := drain(t, s)
	if err != nil {
		t.Fatalf("drain() error = %v", err)
	}
	if len(frames) != 10000 {
		t.Fatalf("decoded %d frames, want 10000", len(frames))
	}
	for i, f := range frames {
		if f.L != audiotest.RampValue(i) || f.R != -audiotest.RampValue(i) {
			t.Fatalf("frame %d = %v, want ramp value %d", i, f, audiotest.RampValue(i))
		}
	}
}

func TestSlot_Remaining(t *testing.T) {
	t.Parallel()

	s := NewSlot(audiotest.NewSilentStream(48000, 2, 3000), audio.ResyncNone, Options{})
	if got := s.Remaining(); got != 3000 {
		t.Errorf("Remaining() = %d, want 3000", got)
	}

	s.DecodeNext()
	buf := make([]audio.Frame, 1000)
	s.Read(buf)
	if got := s.Remaining(); got != 2000 {
		t.Errorf("Remaining() after reading 1000 = %d, want 2000", got)
	}
}

func TestSlot_UnknownLength(t *testing.T) {
	t.Parallel()

	s := NewSlot(&unknownLength{audiotest.NewSilentStream(44100, 2, 2000)}, audio.ResyncNone, Options{})
	if got := s.Remaining(); got != -1 {
		t.Errorf("Remaining() = %d, want -1", got)
	}
	if _, err := drain(t, s); err != nil {
		t.Fatalf("drain() error = %v", err)
	}
	if got := s.Remaining(); got != 0 {
		t.Errorf("Remaining() at end = %d, want 0", got)
	}
}

func TestSlot_Resampled(t *testing.T) {
	t.Parallel()

	s := NewSlot(audiotest.NewSineStream(44100, 2, 44100, 440, 0.5), audio.ResyncNone, Options{OutputRate: 48000})
	if !s.Resampled() || s.Rate() != 48000 || s.Total() != 48000 {
		t.Fatalf("Resampled, Rate, Total = %v, %d, %d, want true, 48000, 48000", s.Resampled(), s.Rate(), s.Total())
	}

	frames, err := drain(t, s)
	if err != nil {
		t.Fatalf("drain() error = %v", err)
	}
	if d := len(frames) - 48000; d < -16 || d > 16 {
		t.Errorf("resampled %d frames, want 48000 +-16", len(frames))
	}
}

func TestSlot_CorruptFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		policy    audio.ResyncPolicy
		wantErr   bool
		wantCount int
	}{
		{"resync", audio.ResyncAtSyncWord, false, 4000},
		{"fatal", audio.ResyncNone, true, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			format := audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}
			silent := audiotest.NewMockStream(format, 5000, 1000, func(int, int) int32 { return 0 })
			stream := &flakyStream{MockStream: silent, every: 3}
			s := NewSlot(stream, tt.policy, Options{})
			frames, err := drain(t, s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("drain() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, audio.ErrCorruptFrame) {
				t.Errorf("drain() error = %v, want audio.ErrCorruptFrame", err)
			}
			if len(frames) != tt.wantCount {
				t.Errorf("decoded %d frames, want %d", len(frames), tt.wantCount)
			}
			if tt.policy == audio.ResyncAtSyncWord && s.Corrupt() != 1 {
				t.Errorf("Corrupt() = %d, want 1", s.Corrupt())
			}
		})
	}
}

func TestSlot_Close(t *testing.T) {
	t.Parallel()

	stream := audiotest.NewSilentStream(44100, 2, 5000)
	s := NewSlot(stream, audio.ResyncNone, Options{})
	s.DecodeNext()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !stream.Closed() || s.Buffered() != 0 {
		t.Errorf("Closed, Buffered = %v, %d, want true, 0", stream.Closed(), s.Buffered())
	}
}

type unknownLength struct {
	*audiotest.MockStream
}

func (unknownLength) Length() int64 { return 0 }

// flakyStream replaces every n-th unit with a corrupt frame.
type flakyStream struct {
	*audiotest.MockStream
	every int
	calls int
}

func (f *flakyStream) DecodeNext() ([]int32, error) {
	f.calls++
	out, err := f.MockStream.DecodeNext()
	if f.calls%f.every == 0 && err == nil {
		return nil, audio.ErrCorruptFrame
	}
	return out, err
}

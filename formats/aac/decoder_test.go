// SPDX-License-Identifier: EPL-2.0

package aac

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/internal/audiotest"
)

// mockFrameDecoder simulates the go-aac decoder: the first frame yields no
// samples, later frames yield FrameSamples stereo samples tagged with the
// frame's first payload byte.
type mockFrameDecoder struct {
	calls  int
	fail   map[byte]bool
	closed bool
}

func (m *mockFrameDecoder) DecodeInt16(frame []byte) ([]int16, error) {
	m.calls++
	id := frame[headerSize]
	if m.fail[id] {
		return nil, errors.New("invalid huffman codebook")
	}
	if m.calls == 1 {
		return nil, nil
	}
	out := make([]int16, 2*FrameSamples)
	for i := range out {
		out[i] = int16(id)
	}
	return out, nil
}

func (m *mockFrameDecoder) Close() { m.closed = true }

func openMock(t *testing.T, data []byte, dec *mockFrameDecoder) *stream {
	t.Helper()

	scan := NewScanner(bytes.NewReader(data))
	if _, err := scan.First(); err != nil {
		t.Fatalf("First() error = %v", err)
	}
	return newStream(scan, dec, audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16})
}

func TestDecoder_Resync(t *testing.T) {
	t.Parallel()

	if got := (Decoder{}).Resync(); got != audio.ResyncAtSyncWord {
		t.Errorf("Resync() = %v, want ResyncAtSyncWord", got)
	}
}

func TestDecoder_Probe(t *testing.T) {
	t.Parallel()

	if !(Decoder{}).Probe(audiotest.ADTSFrame(4, 2, make([]byte, 16))) {
		t.Error("Probe(adts) = false, want true")
	}
	if (Decoder{}).Probe(audiotest.MP3Frame(false)) {
		t.Error("Probe(mp3) = true, want false")
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Open(bytes.NewReader([]byte("no adts here")))
	if !errors.Is(err, audio.ErrCorruptHeader) {
		t.Errorf("Open() error = %v, want audio.ErrCorruptHeader", err)
	}
}

func TestStream_Decode(t *testing.T) {
	t.Parallel()

	dec := &mockFrameDecoder{}
	s := openMock(t, adts(4, 40), dec)

	var units, samples int
	for {
		out, err := s.DecodeNext()
		if errors.Is(err, audio.ErrEndOfStream) {
			break
		}
		if err != nil {
			t.Fatalf("DecodeNext() error = %v", err)
		}
		units++
		samples += len(out)
	}

	if units != 4 {
		t.Errorf("units = %d, want 4", units)
	}
	if want := 3 * 2 * FrameSamples; samples != want {
		t.Errorf("samples = %d, want %d (first frame primes the decoder)", samples, want)
	}
	if err := s.Close(); err != nil || !dec.closed {
		t.Errorf("Close() = %v, closed = %v, want nil, true", err, dec.closed)
	}
}

func TestStream_DecodeErrorRecoverable(t *testing.T) {
	t.Parallel()

	dec := &mockFrameDecoder{fail: map[byte]bool{2: true}}
	s := openMock(t, adts(5, 40), dec)

	var corrupt, good int
	for {
		out, err := s.DecodeNext()
		if errors.Is(err, audio.ErrEndOfStream) {
			break
		}
		if err != nil {
			if !audio.Recoverable(err, Decoder{}.Resync()) {
				t.Fatalf("DecodeNext() error = %v, want recoverable", err)
			}
			corrupt++
			continue
		}
		if len(out) > 0 {
			good++
		}
	}
	if corrupt != 1 || good != 3 {
		t.Errorf("corrupt = %d, good = %d, want 1, 3", corrupt, good)
	}
}

func TestStream_PendingFirstFrame(t *testing.T) {
	t.Parallel()

	dec := &mockFrameDecoder{}
	s := openMock(t, adts(3, 40), dec)
	first, err := s.scan.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	s.pending = append([]byte(nil), first...)

	if _, err := s.DecodeNext(); err != nil {
		t.Fatalf("DecodeNext() error = %v", err)
	}
	out, err := s.DecodeNext()
	if err != nil {
		t.Fatalf("DecodeNext() error = %v", err)
	}
	if len(out) == 0 || out[0] != 1 {
		t.Errorf("second unit = frame %v, want frame 1", out[:1])
	}
}

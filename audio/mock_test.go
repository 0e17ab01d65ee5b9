// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
)

// mockStream is a test Stream that emits units of generated samples.
type mockStream struct {
	format    Format
	total     int // frames
	unit      int // frames per DecodeNext
	generated int
	waveform  func(frame, channel int) int32
	buf       []int32

	// errAt makes the DecodeNext call with this index fail with errAtErr.
	calls    int
	errAt    int
	errAtErr error
}

func newMockStream(rate, channels, depth, total, unit int, waveform func(frame, channel int) int32) *mockStream {
	return &mockStream{
		format:   Format{SampleRate: rate, Channels: channels, BitDepth: depth},
		total:    total,
		unit:     unit,
		waveform: waveform,
		errAt:    -1,
	}
}

func newRampStream(rate, channels, total, unit int) *mockStream {
	return newMockStream(rate, channels, 16, total, unit, func(frame, channel int) int32 {
		return int32(frame%30000 + channel)
	})
}

func newSineStream(rate, total int, freq float64) *mockStream {
	return newMockStream(rate, 1, 16, total, 512, func(frame, channel int) int32 {
		return int32(16000 * math.Sin(2*math.Pi*freq*float64(frame)/float64(rate)))
	})
}

func newConstantStream(rate, channels, total int, v int32) *mockStream {
	return newMockStream(rate, channels, 16, total, 256, func(frame, channel int) int32 {
		return v
	})
}

func (m *mockStream) Format() Format { return m.format }
func (m *mockStream) Length() int64  { return int64(m.total) }
func (m *mockStream) Close() error   { return nil }

func (m *mockStream) DecodeNext() ([]int32, error) {
	call := m.calls
	m.calls++
	if call == m.errAt {
		return nil, m.errAtErr
	}
	if m.generated >= m.total {
		return nil, ErrEndOfStream
	}
	frames := min(m.unit, m.total-m.generated)
	ch := m.format.Channels
	if cap(m.buf) < frames*ch {
		m.buf = make([]int32, frames*ch)
	}
	m.buf = m.buf[:frames*ch]
	for f := range frames {
		for c := range ch {
			m.buf[f*ch+c] = m.waveform(m.generated+f, c)
		}
	}
	m.generated += frames
	return m.buf, nil
}

// mockCodec opens a fresh stream from a factory.
type mockCodec struct {
	name   string
	magic  string
	policy ResyncPolicy
}

func (c *mockCodec) Open(rs io.ReadSeeker) (Stream, error) {
	return newConstantStream(44100, 2, 100, 0), nil
}

func (c *mockCodec) Resync() ResyncPolicy { return c.policy }

// probingCodec recognizes files starting with its magic.
type probingCodec struct {
	mockCodec
}

func (c *probingCodec) Probe(head []byte) bool {
	return len(head) >= len(c.magic) && string(head[:len(c.magic)]) == c.magic
}

// readAllFrames drains r.
func readAllFrames(r FrameReader, chunk int) ([]Frame, error) {
	var out []Frame
	buf := make([]Frame, chunk)
	for {
		n, err := r.ReadFrames(buf)
		out = append(out, buf[:n]...)
		if err == ErrEndOfStream {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"math"

	"github.com/ik5/audcore/audio"
)

// MockStream is a test helper that generates PCM for testing. It implements
// audio.Stream and hands out unitFrames frames per DecodeNext.
type MockStream struct {
	format      audio.Format
	totalFrames int // Total frames to generate
	generated   int // Frames generated so far
	unitFrames  int
	waveform    func(frame int, channel int) int32
	buf         []int32
	closed      bool
}

// NewMockStream creates a new mock stream.
// waveform generates sample values at format.BitDepth scale given a frame
// index and channel.
func NewMockStream(format audio.Format, totalFrames, unitFrames int, waveform func(frame int, channel int) int32) *MockStream {
	if unitFrames <= 0 {
		unitFrames = 1152
	}
	return &MockStream{
		format:      format,
		totalFrames: totalFrames,
		unitFrames:  unitFrames,
		waveform:    waveform,
		buf:         make([]int32, unitFrames*format.Channels),
	}
}

// NewSilentStream creates a mock stream that generates silence.
func NewSilentStream(rate, channels, totalFrames int) *MockStream {
	return NewMockStream(audio.Format{SampleRate: rate, Channels: channels, BitDepth: 16}, totalFrames, 0,
		func(int, int) int32 { return 0 })
}

// NewSineStream creates a 16-bit mock stream carrying a sine wave of the
// given amplitude (0..1).
func NewSineStream(rate, channels, totalFrames int, frequency, amplitude float64) *MockStream {
	return NewMockStream(audio.Format{SampleRate: rate, Channels: channels, BitDepth: 16}, totalFrames, 0,
		func(frame int, _ int) int32 {
			return int32(math.Round(amplitude * 32767 * math.Sin(2*math.Pi*frequency*float64(frame)/float64(rate))))
		})
}

// NewRampStream creates a 16-bit stream whose samples encode their own frame
// index: frame%30000 on the left, its negation on the right.
func NewRampStream(rate, totalFrames int) *MockStream {
	return NewMockStream(audio.Format{SampleRate: rate, Channels: 2, BitDepth: 16}, totalFrames, 0,
		func(frame int, channel int) int32 {
			v := int32(frame % 30000)
			if channel == 1 {
				return -v
			}
			return v
		})
}

func (m *MockStream) Format() audio.Format { return m.format }
func (m *MockStream) Length() int64        { return int64(m.totalFrames) }
func (m *MockStream) Closed() bool         { return m.closed }

func (m *MockStream) Close() error {
	m.closed = true
	return nil
}

// Reset resets the generated frame counter to allow re-reading
func (m *MockStream) Reset() {
	m.generated = 0
}

func (m *MockStream) DecodeNext() ([]int32, error) {
	if m.generated >= m.totalFrames {
		return nil, audio.ErrEndOfStream
	}

	frames := min(m.unitFrames, m.totalFrames-m.generated)
	ch := m.format.Channels
	for f := range frames {
		for c := range ch {
			m.buf[f*ch+c] = m.waveform(m.generated+f, c)
		}
	}
	m.generated += frames

	return m.buf[:frames*ch], nil
}

// RampValue is the 24-bit left sample NewRampStream produces for frame.
func RampValue(frame int) int32 {
	return int32(frame%30000) << 8
}

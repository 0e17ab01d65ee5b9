// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audcore/audio"
)

const unitFrames = 1024

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// stream wraps go-audio aiff.Decoder to implement audio.Stream
type stream struct {
	dec    aiffReader
	format audio.Format
	length int64
	intBuf *goaudio.IntBuffer
	out    []int32
	eos    bool
}

func (s *stream) Format() audio.Format { return s.format }
func (s *stream) Length() int64        { return s.length }
func (s *stream) Close() error         { return nil }

func (s *stream) DecodeNext() ([]int32, error) {
	if s.eos {
		return nil, audio.ErrEndOfStream
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil {
		if err != io.EOF {
			return nil, fmt.Errorf("%w: %w", audio.ErrCorruptFrame, err)
		}
		s.eos = true
	}
	n -= n % s.format.Channels
	if n == 0 {
		s.eos = true
		return nil, audio.ErrEndOfStream
	}

	for i := range n {
		s.out[i] = int32(s.intBuf.Data[i])
	}
	return s.out[:n], nil
}

type Decoder struct{}

// Resync reports that AIFF has no sync points.
func (Decoder) Resync() audio.ResyncPolicy { return audio.ResyncNone }

func (Decoder) Probe(head []byte) bool {
	if len(head) < 12 || !bytes.HasPrefix(head, []byte("FORM")) {
		return false
	}
	kind := string(head[8:12])
	return kind == "AIFF" || kind == "AIFC"
}

func (Decoder) Open(rs io.ReadSeeker) (audio.Stream, error) {
	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	// Read file info
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAiffFile, err)
	}

	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels < 1 {
		return nil, ErrUnsupportedAiffLayout
	}

	return newStream(dec, audio.Format{
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		BitDepth:   depth,
	}, int64(dec.NumSampleFrames)), nil
}

func newStream(dec aiffReader, format audio.Format, length int64) *stream {
	size := unitFrames * format.Channels
	return &stream{
		dec:    dec,
		format: format,
		length: length,
		intBuf: &goaudio.IntBuffer{
			Data:           make([]int, size),
			Format:         &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
			SourceBitDepth: format.BitDepth,
		},
		out: make([]int32, size),
	}
}

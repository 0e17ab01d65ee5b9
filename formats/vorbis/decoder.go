// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audcore/audio"
	"github.com/jfreymuth/oggvorbis"
)

const (
	// unitFrames stays below the decoder's block size so one call decodes at
	// most one packet.
	unitFrames = 1024

	outputBits = 24
	fullScale  = 1<<(outputBits-1) - 1
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	Read([]float32) (int, error)
}

type stream struct {
	dec    oggReader
	format audio.Format
	length int64
	buf    []float32
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

	// oggvorbis.Reader.Read returns values (frames * channels), not frames.
	n, err := s.dec.Read(s.buf)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", audio.ErrCorruptFrame, err)
		}
		s.eos = true
	}
	n -= n % s.format.Channels
	if n == 0 {
		if s.eos {
			return nil, audio.ErrEndOfStream
		}
		return s.out[:0], nil
	}

	for i := range n {
		s.out[i] = int32(math.Round(float64(s.buf[i]) * fullScale))
	}
	return s.out[:n], nil
}

type Decoder struct{}

// Resync reports that a damaged Vorbis packet ends the track.
func (Decoder) Resync() audio.ResyncPolicy { return audio.ResyncNone }

func (Decoder) Probe(head []byte) bool {
	return bytes.HasPrefix(head, []byte("OggS"))
}

func (Decoder) Open(rs io.ReadSeeker) (audio.Stream, error) {
	dec, err := oggvorbis.NewReader(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}

	return newStream(dec, audio.Format{
		SampleRate: dec.SampleRate(),
		Channels:   dec.Channels(),
		BitDepth:   outputBits,
	}, dec.Length()), nil
}

func newStream(dec oggReader, format audio.Format, length int64) *stream {
	size := unitFrames * format.Channels
	return &stream{
		dec:    dec,
		format: format,
		length: max(length, 0),
		buf:    make([]float32, size),
		out:    make([]int32, size),
	}
}

// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audcore/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// frameParser is an interface for flac.Stream to allow testing
type frameParser interface {
	ParseNext() (*frame.Frame, error)
}

type stream struct {
	dec    frameParser
	format audio.Format
	length int64
	out    []int32
}

func (s *stream) Format() audio.Format { return s.format }
func (s *stream) Length() int64        { return s.length }
func (s *stream) Close() error         { return nil }

// DecodeNext decodes one FLAC frame (one block of samples).
func (s *stream) DecodeNext() ([]int32, error) {
	f, err := s.dec.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, audio.ErrEndOfStream
		}
		return nil, fmt.Errorf("%w: %w", audio.ErrCorruptFrame, err)
	}

	ch := s.format.Channels
	if len(f.Subframes) < ch {
		return nil, fmt.Errorf("%w: %d subframes for %d channels", audio.ErrCorruptFrame, len(f.Subframes), ch)
	}
	n := int(f.BlockSize)
	for c := range ch {
		n = min(n, len(f.Subframes[c].Samples))
	}

	if cap(s.out) < n*ch {
		s.out = make([]int32, n*ch)
	}
	out := s.out[:n*ch]
	for c := range ch {
		samples := f.Subframes[c].Samples
		for i := range n {
			out[i*ch+c] = samples[i]
		}
	}
	return out, nil
}

type Decoder struct{}

// Resync reports that FLAC frames are not skipped over: a damaged frame ends
// the track.
func (Decoder) Resync() audio.ResyncPolicy { return audio.ResyncNone }

func (Decoder) Probe(head []byte) bool {
	return bytes.HasPrefix(head, []byte("fLaC"))
}

func (Decoder) Open(rs io.ReadSeeker) (audio.Stream, error) {
	dec, err := flac.New(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFlacFile, err)
	}

	info := dec.Info
	if info == nil || info.NChannels == 0 {
		return nil, ErrNotFlacFile
	}
	if info.BitsPerSample > 32 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, info.BitsPerSample)
	}

	return newStream(dec, audio.Format{
		SampleRate: int(info.SampleRate),
		Channels:   int(info.NChannels),
		BitDepth:   int(info.BitsPerSample),
	}, int64(info.NSamples)), nil
}

func newStream(dec frameParser, format audio.Format, length int64) *stream {
	return &stream{
		dec:    dec,
		format: format,
		length: length,
		out:    make([]int32, 4096*format.Channels),
	}
}

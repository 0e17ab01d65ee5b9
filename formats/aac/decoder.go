// SPDX-License-Identifier: EPL-2.0

package aac

import (
	"fmt"
	"io"

	"github.com/ik5/audcore/audio"
	goaac "github.com/llehouerou/go-aac"
)

// frameDecoder is an interface for goaac.Decoder to allow testing
type frameDecoder interface {
	DecodeInt16(frame []byte) ([]int16, error)
	Close()
}

type stream struct {
	scan   *Scanner
	dec    frameDecoder
	format audio.Format

	// The frame used to initialize the decoder, not yet decoded.
	pending []byte

	out []int32
}

func (s *stream) Format() audio.Format { return s.format }

// Length is unknown: ADTS carries no duration.
func (s *stream) Length() int64 { return 0 }

func (s *stream) Close() error {
	s.dec.Close()
	return nil
}

// DecodeNext decodes one ADTS frame. The decoder's first frame only primes
// the overlap-add state and yields an empty unit.
func (s *stream) DecodeNext() ([]int32, error) {
	frame := s.pending
	s.pending = nil
	if frame == nil {
		var err error
		if frame, err = s.scan.Next(); err != nil {
			return nil, err
		}
	}

	pcm, err := s.dec.DecodeInt16(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrCorruptFrame, err)
	}
	if cap(s.out) < len(pcm) {
		s.out = make([]int32, len(pcm))
	}
	out := s.out[:len(pcm)-len(pcm)%s.format.Channels]
	for i := range out {
		out[i] = int32(pcm[i])
	}
	return out, nil
}

type Decoder struct{}

// Resync reports that AAC recovers from damaged frames at the next ADTS
// sync word.
func (Decoder) Resync() audio.ResyncPolicy { return audio.ResyncAtSyncWord }

// Probe recognizes a bare ADTS header. Files starting with an ID3v2 tag are
// claimed by the MP3 codec and found here by extension.
func (Decoder) Probe(head []byte) bool {
	_, ok := ParseHeader(head)
	return ok
}

func (Decoder) Open(rs io.ReadSeeker) (audio.Stream, error) {
	scan := NewScanner(rs)
	h, err := scan.First()
	if err != nil {
		return nil, err
	}
	first, err := scan.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoFrames, err)
	}
	first = append([]byte(nil), first...)

	dec := goaac.NewDecoder()
	res, err := dec.Init(first)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrCorruptHeader, err)
	}

	format := audio.Format{
		SampleRate: int(res.SampleRate),
		Channels:   int(res.Channels),
		BitDepth:   16,
	}
	if format.SampleRate == 0 {
		format.SampleRate = h.SampleRate
	}
	if format.Channels == 0 {
		format.Channels = max(h.Channels, 1)
	}

	s := newStream(scan, dec, format)
	s.pending = first
	return s, nil
}

func newStream(scan *Scanner, dec frameDecoder, format audio.Format) *stream {
	return &stream{
		scan:   scan,
		dec:    dec,
		format: format,
		out:    make([]int32, 2*FrameSamples*format.Channels),
	}
}

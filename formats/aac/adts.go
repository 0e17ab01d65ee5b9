// SPDX-License-Identifier: EPL-2.0

package aac

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audcore/audio"
)

const (
	headerSize    = 7
	crcHeaderSize = 9

	// FrameSamples is the PCM frames per raw data block.
	FrameSamples = 1024

	searchLimit = 64 << 10
	readSize    = 8 << 10
	id3v1Size   = 128
)

var sampleRates = [13]int{96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050, 16000, 12000, 11025, 8000, 7350}

// Header is a decoded ADTS frame header.
type Header struct {
	Profile    int // audio object type minus one
	SampleRate int
	// Channels is the channel configuration; 0 means the layout is carried
	// in-band by a program config element.
	Channels  int
	Size      int // whole frame, header included
	Protected bool
	Blocks    int // raw data blocks in the frame
}

// ParseHeader decodes the ADTS header at the start of b.
func ParseHeader(b []byte) (Header, bool) {
	if len(b) < headerSize || b[0] != 0xFF || b[1]&0xF6 != 0xF0 {
		return Header{}, false
	}

	var h Header
	h.Protected = b[1]&1 == 0
	h.Profile = int(b[2] >> 6)
	si := int(b[2]>>2) & 0xF
	if si >= len(sampleRates) {
		return Header{}, false
	}
	h.SampleRate = sampleRates[si]
	h.Channels = int(b[2]&1)<<2 | int(b[3]>>6)
	h.Size = int(b[3]&3)<<11 | int(b[4])<<3 | int(b[5]>>5)
	h.Blocks = int(b[6]&3) + 1

	if h.Size < h.headerLen() {
		return Header{}, false
	}
	return h, true
}

func (h Header) headerLen() int {
	if h.Protected {
		return crcHeaderSize
	}
	return headerSize
}

// Samples is the PCM frames the frame decodes to.
func (h Header) Samples() int { return h.Blocks * FrameSamples }

func (h Header) compatible(o Header) bool {
	return h.Profile == o.Profile && h.SampleRate == o.SampleRate && h.Channels == o.Channels
}

// Scanner splits an ADTS bitstream into frames and resynchronizes after
// damage on the next sync word followed by another compatible frame.
type Scanner struct {
	r   io.Reader
	buf []byte
	pos int
	end int
	eof bool

	ref     Header
	started bool
	skipped int64
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: r, buf: make([]byte, 2*readSize)}
}

// Skipped is the number of bytes dropped while resynchronizing.
func (s *Scanner) Skipped() int64 { return s.skipped }

func (s *Scanner) avail() int { return s.end - s.pos }

func (s *Scanner) fill(n int) error {
	for s.avail() < n && !s.eof {
		if s.pos > 0 {
			copy(s.buf, s.buf[s.pos:s.end])
			s.end -= s.pos
			s.pos = 0
		}
		if len(s.buf)-s.end < readSize {
			grown := make([]byte, 2*len(s.buf))
			copy(grown, s.buf[:s.end])
			s.buf = grown
		}
		m, err := s.r.Read(s.buf[s.end : s.end+readSize])
		s.end += m
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.eof = true
				break
			}
			return fmt.Errorf("%w: %w", audio.ErrIO, err)
		}
	}
	return nil
}

func (s *Scanner) skip(n int) error {
	for n > 0 {
		if err := s.fill(1); err != nil {
			return err
		}
		if s.avail() == 0 {
			return nil
		}
		k := min(n, s.avail())
		s.pos += k
		n -= k
	}
	return nil
}

func (s *Scanner) trailer() bool {
	return s.eof && s.avail() <= id3v1Size && bytes.HasPrefix(s.buf[s.pos:s.end], []byte("TAG"))
}

// First skips a leading ID3v2 tag and any junk and returns the header of the
// first frame without consuming it.
func (s *Scanner) First() (Header, error) {
	if err := s.fill(10); err != nil {
		return Header{}, err
	}
	if s.avail() >= 10 && audio.HasID3v2(s.buf[s.pos:s.end]) {
		if err := s.skip(audio.ID3v2Size(s.buf[s.pos : s.pos+10])); err != nil {
			return Header{}, err
		}
	}

	for scanned := 0; scanned < searchLimit; scanned++ {
		if err := s.fill(headerSize); err != nil {
			return Header{}, err
		}
		if s.avail() < headerSize {
			break
		}
		h, ok, err := s.candidate(false)
		if err != nil {
			return Header{}, err
		}
		if ok {
			s.ref = h
			s.started = true
			return h, nil
		}
		s.pos++
		s.skipped++
	}
	return Header{}, ErrNoFrames
}

// candidate checks for a frame at pos. Unless inSync, the frame must be
// followed by a compatible header, an ID3v1 tag or the end of the input.
func (s *Scanner) candidate(inSync bool) (Header, bool, error) {
	h, ok := ParseHeader(s.buf[s.pos:s.end])
	if !ok || (s.started && !s.ref.compatible(h)) {
		return h, false, nil
	}
	if err := s.fill(h.Size + headerSize); err != nil {
		return h, false, err
	}
	if s.avail() < h.Size {
		return h, false, nil
	}
	if inSync {
		return h, true, nil
	}

	rest := s.buf[s.pos+h.Size : s.end]
	if len(rest) < headerSize {
		return h, s.eof, nil
	}
	if next, ok := ParseHeader(rest); ok && h.compatible(next) {
		return h, true, nil
	}
	return h, bytes.HasPrefix(rest, []byte("TAG")), nil
}

// Next returns the next frame, header included. The slice is valid until the
// following call. A damaged stretch is reported once as ErrLostSync with the
// scanner positioned on the next good frame.
func (s *Scanner) Next() ([]byte, error) {
	if err := s.fill(id3v1Size + 1); err != nil {
		return nil, err
	}
	if s.avail() < headerSize || s.trailer() {
		return nil, audio.ErrEndOfStream
	}

	h, ok, err := s.candidate(true)
	if err != nil {
		return nil, err
	}
	if ok {
		frame := s.buf[s.pos : s.pos+h.Size]
		s.pos += h.Size
		return frame, nil
	}
	if s.eof {
		if t, valid := ParseHeader(s.buf[s.pos:s.end]); valid && s.ref.compatible(t) && s.avail() < t.Size {
			// Truncated last frame.
			s.pos = s.end
			return nil, audio.ErrEndOfStream
		}
	}
	return nil, s.resync()
}

func (s *Scanner) resync() error {
	for {
		s.pos++
		s.skipped++
		if err := s.fill(id3v1Size + 1); err != nil {
			return err
		}
		if s.avail() < headerSize || s.trailer() {
			s.pos = s.end
			return ErrLostSync
		}
		if s.buf[s.pos] != 0xFF {
			continue
		}
		_, ok, err := s.candidate(false)
		if err != nil {
			return err
		}
		if ok {
			return ErrLostSync
		}
	}
}

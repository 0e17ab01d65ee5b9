// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audcore/audio"
)

const (
	headerSize = 4
	crcSize    = 2

	// searchLimit bounds how far Scanner looks for the first frame.
	searchLimit = 64 << 10

	readSize = 16 << 10

	id3v1Size = 128
)

// Version is the MPEG audio version of a frame.
type Version int

const (
	MPEG2 Version = 2
	MPEG1 Version = 1
)

var (
	bitratesV1 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
	bitratesV2 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}

	sampleRatesV1 = [4]int{44100, 48000, 32000, 0}
	sampleRatesV2 = [4]int{22050, 24000, 16000, 0}
)

// Header is a decoded MPEG audio Layer III frame header.
type Header struct {
	Version    Version
	Bitrate    int // kbit/s
	SampleRate int
	Padding    bool
	Channels   int
	Protected  bool // a CRC-16 follows the header
}

// ParseHeader decodes the 4-byte frame header at the start of b. Only
// MPEG-1 and MPEG-2 Layer III headers are accepted.
func ParseHeader(b []byte) (Header, bool) {
	if len(b) < headerSize || b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return Header{}, false
	}

	var h Header
	switch (b[1] >> 3) & 3 {
	case 3:
		h.Version = MPEG1
	case 2:
		h.Version = MPEG2
	default:
		// MPEG-2.5 and the reserved value
		return Header{}, false
	}
	if (b[1]>>1)&3 != 1 {
		return Header{}, false
	}
	h.Protected = b[1]&1 == 0

	bi := b[2] >> 4
	si := (b[2] >> 2) & 3
	if h.Version == MPEG1 {
		h.Bitrate, h.SampleRate = bitratesV1[bi], sampleRatesV1[si]
	} else {
		h.Bitrate, h.SampleRate = bitratesV2[bi], sampleRatesV2[si]
	}
	if h.Bitrate == 0 || h.SampleRate == 0 {
		return Header{}, false
	}
	h.Padding = (b[2]>>1)&1 == 1

	h.Channels = 2
	if b[3]>>6 == 3 {
		h.Channels = 1
	}
	if b[3]&3 == 2 {
		return Header{}, false
	}
	return h, true
}

func (h Header) coef() int {
	if h.Version == MPEG2 {
		return 72
	}
	return 144
}

// Size is the whole frame length in bytes, header included.
func (h Header) Size() int {
	size := h.coef() * h.Bitrate * 1000 / h.SampleRate
	if h.Padding {
		size++
	}
	return size
}

// FramesIn estimates how many frames at h's bitrate fit in n bytes. Padding
// slots make the average frame slightly longer than an unpadded one, so the
// count is rounded to the nearest frame.
func (h Header) FramesIn(n int64) int64 {
	if n <= 0 {
		return 0
	}
	per := int64(h.coef()) * int64(h.Bitrate) * 1000
	return (n*int64(h.SampleRate) + per/2) / per
}

// Samples is the PCM frames one frame decodes to.
func (h Header) Samples() int {
	if h.Version == MPEG2 {
		return 576
	}
	return 1152
}

func (h Header) sideInfoSize() int {
	switch {
	case h.Version == MPEG1 && h.Channels == 1:
		return 17
	case h.Version == MPEG1:
		return 32
	case h.Channels == 1:
		return 9
	default:
		return 17
	}
}

// compatible reports whether o can follow h in the same stream.
func (h Header) compatible(o Header) bool {
	return h.Version == o.Version && h.SampleRate == o.SampleRate
}

// XingFrames recognizes the Xing or Info tag frame encoders write in place
// of the first audio frame. It decodes to silence. frames is the stream's
// audio frame count, -1 when the tag does not carry one.
func XingFrames(frame []byte, h Header) (frames int64, ok bool) {
	off := headerSize + h.sideInfoSize()
	if h.Protected {
		off += crcSize
	}
	if len(frame) < off+8 {
		return 0, false
	}
	if id := string(frame[off : off+4]); id != "Xing" && id != "Info" {
		return 0, false
	}
	if binary.BigEndian.Uint32(frame[off+4:])&1 == 0 || len(frame) < off+12 {
		return -1, true
	}
	return int64(binary.BigEndian.Uint32(frame[off+8:])), true
}

// checkCRC verifies the CRC-16 of a protected frame.
func (h Header) checkCRC(frame []byte) bool {
	if !h.Protected {
		return true
	}
	end := headerSize + crcSize + h.sideInfoSize()
	if len(frame) < end {
		return false
	}
	want := uint16(frame[4])<<8 | uint16(frame[5])
	return crc16(frame[2:4], frame[6:end]) == want
}

func crc16(parts ...[]byte) uint16 {
	crc := uint16(0xFFFF)
	for _, p := range parts {
		for _, b := range p {
			crc ^= uint16(b) << 8
			for range 8 {
				if crc&0x8000 != 0 {
					crc = crc<<1 ^ 0x8005
				} else {
					crc <<= 1
				}
			}
		}
	}
	return crc
}

// Scanner splits an MPEG audio bitstream into frames. After a damaged frame
// it resynchronizes on the next sync word whose frame is followed by another
// valid header.
type Scanner struct {
	r   io.Reader
	buf []byte
	pos int
	end int
	eof bool

	ref     Header
	started bool
	skipped int64
	offset  int64
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: r, buf: make([]byte, 2*readSize)}
}

// Skipped is the number of bytes dropped while resynchronizing.
func (s *Scanner) Skipped() int64 { return s.skipped }

// Offset is the bytes First passed over before the first frame: a leading
// ID3v2 tag and any junk.
func (s *Scanner) Offset() int64 { return s.offset }

// fill makes at least n bytes available from pos, unless the input ends.
func (s *Scanner) fill(n int) error {
	for s.end-s.pos < n && !s.eof {
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

func (s *Scanner) avail() int { return s.end - s.pos }

// discard drops n bytes, reading past the buffer as needed.
func (s *Scanner) discard(n int) error {
	for n > 0 {
		if s.avail() == 0 {
			if err := s.fill(1); err != nil {
				return err
			}
			if s.avail() == 0 {
				return nil
			}
		}
		k := min(n, s.avail())
		s.pos += k
		n -= k
	}
	return nil
}

// trailer reports whether the rest of the input is an ID3v1 tag. The caller
// must have filled past id3v1Size so that eof is known.
func (s *Scanner) trailer() bool {
	return s.eof && s.avail() <= id3v1Size && bytes.HasPrefix(s.buf[s.pos:s.end], []byte("TAG"))
}

// First skips a leading ID3v2 tag and any junk, and returns the header of
// the first frame without consuming it.
func (s *Scanner) First() (Header, error) {
	if err := s.fill(10); err != nil {
		return Header{}, err
	}
	if s.avail() >= 10 && audio.HasID3v2(s.buf[s.pos:s.end]) {
		tag := audio.ID3v2Size(s.buf[s.pos : s.pos+10])
		if err := s.discard(tag); err != nil {
			return Header{}, err
		}
		s.offset = int64(tag)
	}

	start := s.skipped
	for s.skipped-start < searchLimit {
		if err := s.fill(headerSize); err != nil {
			return Header{}, err
		}
		if s.avail() < headerSize {
			break
		}
		h, ok, err := s.candidate(Header{}, false)
		if err != nil {
			return Header{}, err
		}
		if ok {
			s.ref = h
			s.started = true
			s.offset += s.skipped - start
			return h, nil
		}
		s.pos++
		s.skipped++
	}
	return Header{}, ErrNoFrames
}

// candidate checks whether a frame starts at pos. Unless inSync, the frame
// must be followed by a compatible header or by the end of the input.
func (s *Scanner) candidate(ref Header, inSync bool) (Header, bool, error) {
	h, ok := ParseHeader(s.buf[s.pos:s.end])
	if !ok || (s.started && !ref.compatible(h)) {
		return h, false, nil
	}
	size := h.Size()
	if err := s.fill(size + headerSize); err != nil {
		return h, false, err
	}
	if s.avail() < size {
		return h, false, nil
	}
	if inSync {
		return h, true, nil
	}
	if !h.checkCRC(s.buf[s.pos : s.pos+size]) {
		return h, false, nil
	}

	rest := s.buf[s.pos+size : s.end]
	if len(rest) < headerSize {
		return h, s.eof, nil
	}
	if next, ok := ParseHeader(rest); ok && h.compatible(next) {
		return h, true, nil
	}
	if bytes.HasPrefix(rest, []byte("TAG")) {
		return h, true, nil
	}
	return h, false, nil
}

// Next returns the next frame. The slice is valid until the following call.
//
// A damaged frame is reported as a wrapped audio.ErrCorruptFrame with the
// scanner already positioned on the next good frame; audio.ErrEndOfStream
// follows the last one.
func (s *Scanner) Next() ([]byte, error) {
	if err := s.fill(id3v1Size + 1); err != nil {
		return nil, err
	}
	if s.avail() < headerSize || s.trailer() {
		return nil, audio.ErrEndOfStream
	}

	h, ok, err := s.candidate(s.ref, true)
	if err != nil {
		return nil, err
	}
	if ok {
		size := h.Size()
		frame := s.buf[s.pos : s.pos+size]
		s.pos += size
		if !h.checkCRC(frame) {
			return nil, ErrBadCRC
		}
		return frame, nil
	}
	if t, valid := ParseHeader(s.buf[s.pos:s.end]); valid && s.ref.compatible(t) && s.avail() < t.Size() {
		// Truncated last frame.
		s.pos = s.end
		return nil, audio.ErrEndOfStream
	}

	return nil, s.resync()
}

// resync drops bytes up to the next confirmed frame.
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
		_, ok, err := s.candidate(s.ref, false)
		if err != nil {
			return err
		}
		if ok {
			return ErrLostSync
		}
	}
}

// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audcore/audio"
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
}

// feeder hands go-mp3 exactly the frames the scanner accepted. It is not an
// io.Seeker, so go-mp3 never scans ahead for the stream length.
type feeder struct {
	data []byte
}

func (f *feeder) push(frame []byte) {
	f.data = append(f.data[:0], frame...)
}

func (f *feeder) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

type stream struct {
	scan   *Scanner
	feed   *feeder
	dec    mp3Reader
	format audio.Format
	length int64

	// go-mp3 decodes the first frame while opening.
	pending bool

	pcm []byte
	out []int32
}

func (s *stream) Format() audio.Format { return s.format }
func (s *stream) Length() int64        { return s.length }
func (s *stream) Close() error         { return nil }

func (s *stream) DecodeNext() ([]int32, error) {
	if s.pending {
		s.pending = false
		return s.read()
	}

	frame, err := s.scan.Next()
	if err != nil {
		return nil, err
	}
	s.feed.push(frame)
	return s.read()
}

// read collects the PCM of one frame: go-mp3 always emits 16-bit stereo.
func (s *stream) read() ([]int32, error) {
	got := 0
	for got < len(s.pcm) {
		n, err := s.dec.Read(s.pcm[got:])
		got += n
		if err != nil {
			if got > 0 && errors.Is(err, io.EOF) {
				break
			}
			s.feed.data = s.feed.data[:0]
			return nil, fmt.Errorf("%w: %w", audio.ErrCorruptFrame, err)
		}
		if n == 0 {
			break
		}
	}
	if got == 0 {
		return nil, fmt.Errorf("%w: empty frame", audio.ErrCorruptFrame)
	}

	samples := got / 2
	for i := range samples {
		s.out[i] = int32(int16(binary.LittleEndian.Uint16(s.pcm[2*i:])))
	}
	return s.out[:samples], nil
}

type Decoder struct{}

// Resync reports that MP3 recovers from damaged frames at the next sync word.
func (Decoder) Resync() audio.ResyncPolicy { return audio.ResyncAtSyncWord }

// Probe recognizes a Layer III frame header. A leading ID3v2 tag has already
// been skipped by the registry.
func (Decoder) Probe(head []byte) bool {
	_, ok := ParseHeader(head)
	return ok
}

func (Decoder) Open(rs io.ReadSeeker) (audio.Stream, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	trailer, err := id3v1(rs, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	scan := NewScanner(rs)
	h, err := scan.First()
	if err != nil {
		return nil, err
	}
	first, err := scan.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoFrames, err)
	}

	data := size - scan.Offset() - trailer
	frames := int64(-1)
	if n, ok := XingFrames(first, h); ok {
		data -= int64(len(first))
		frames = n
		if first, err = scan.Next(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoFrames, err)
		}
	}
	if frames < 0 {
		// CBR estimate; VBR files without a Xing tag come out approximate.
		frames = h.FramesIn(data)
	}

	feed := &feeder{}
	feed.push(first)
	dec, err := gomp3.NewDecoder(feed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrCorruptHeader, err)
	}

	s := newStream(scan, feed, dec, h)
	s.pending = true
	s.length = frames * int64(h.Samples())
	return s, nil
}

// id3v1 returns the size of an ID3v1 tag at the end of rs, or 0.
func id3v1(rs io.ReadSeeker, size int64) (int64, error) {
	if size < id3v1Size {
		return 0, nil
	}
	if _, err := rs.Seek(size-id3v1Size, io.SeekStart); err != nil {
		return 0, err
	}
	var tag [3]byte
	if _, err := io.ReadFull(rs, tag[:]); err != nil {
		return 0, err
	}
	if string(tag[:]) != "TAG" {
		return 0, nil
	}
	return id3v1Size, nil
}

func newStream(scan *Scanner, feed *feeder, dec mp3Reader, h Header) *stream {
	return &stream{
		scan:   scan,
		feed:   feed,
		dec:    dec,
		format: audio.Format{SampleRate: h.SampleRate, Channels: 2, BitDepth: 16},
		pcm:    make([]byte, h.Samples()*4),
		out:    make([]int32, h.Samples()*2),
	}
}

// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audcore/audio"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE

	unitFrames = 1024
)

// pcmReader is an interface for wav.Decoder to allow testing
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type stream struct {
	dec      pcmReader
	format   audio.Format
	length   int64
	unsigned bool // 8-bit WAV stores unsigned samples

	intBuf *goaudio.IntBuffer
	out    []int32
}

func (s *stream) Format() audio.Format { return s.format }
func (s *stream) Length() int64        { return s.length }
func (s *stream) Close() error         { return nil }

func (s *stream) DecodeNext() ([]int32, error) {
	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", audio.ErrCorruptFrame, err)
	}
	// Drop a trailing partial frame.
	n -= n % s.format.Channels
	if n == 0 {
		return nil, audio.ErrEndOfStream
	}

	for i := range n {
		v := int32(s.intBuf.Data[i])
		if s.unsigned {
			v -= 128
		}
		s.out[i] = v
	}
	return s.out[:n], nil
}

type Decoder struct{}

// Resync reports that WAV has no sync points: damaged data ends the track.
func (Decoder) Resync() audio.ResyncPolicy { return audio.ResyncNone }

func (Decoder) Probe(head []byte) bool {
	return len(head) >= 12 && bytes.HasPrefix(head, []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE"))
}

func (Decoder) Open(rs io.ReadSeeker) (audio.Stream, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, ErrUnsupportedEncoding
	}
	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}
	if dec.PCMChunk == nil {
		return nil, ErrUnsupportedWavChunks
	}

	channels := int(dec.NumChans)
	format := audio.Format{
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		BitDepth:   depth,
	}

	size := dataSize(rs, int64(dec.PCMSize))
	return newStream(dec, format, size/int64(channels*depth/8)), nil
}

// dataSize is the byte length of the sample data, read from the data chunk
// header that rs has just been positioned past. go-audio pads odd chunk
// sizes to even, which would count a frame that is not there. fallback is
// used when the header cannot be found. The result never runs past the end
// of the file.
func dataSize(rs io.ReadSeeker, fallback int64) int64 {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil || pos < 8 {
		return fallback
	}
	size := fallback
	hdr := make([]byte, 8)
	if _, err := rs.Seek(pos-8, io.SeekStart); err == nil {
		if _, err := io.ReadFull(rs, hdr); err == nil && string(hdr[:4]) == "data" {
			size = int64(binary.LittleEndian.Uint32(hdr[4:]))
		}
	}
	if end, err := rs.Seek(0, io.SeekEnd); err == nil {
		size = min(size, end-pos)
	}
	if _, err := rs.Seek(pos, io.SeekStart); err != nil {
		return fallback
	}
	return max(size, 0)
}

func newStream(dec pcmReader, format audio.Format, length int64) *stream {
	size := unitFrames * format.Channels
	return &stream{
		dec:      dec,
		format:   format,
		length:   length,
		unsigned: format.BitDepth == 8,
		intBuf: &goaudio.IntBuffer{
			Data:           make([]int, size),
			Format:         &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
			SourceBitDepth: format.BitDepth,
		},
		out: make([]int32, size),
	}
}

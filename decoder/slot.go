// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/ring"
	"github.com/ik5/audcore/storage"
)

const (
	// DefaultRingFrames holds a little over 370 ms at 44.1 kHz.
	DefaultRingFrames = 16384

	// resampleChunk is the output frames produced per DecodeNext when
	// resampling, about one codec unit.
	resampleChunk = 1152
)

type Options struct {
	// RingFrames is the slot ring capacity; it must hold at least one
	// codec unit.
	RingFrames int
	// OutputRate is the rate frames leave the slot at. Zero or the stream's
	// own rate disables resampling.
	OutputRate int
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.RingFrames <= 0 {
		o.RingFrames = DefaultRingFrames
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Slot is one open track: its file, the codec stream and the ring the
// stream decodes into. A Slot belongs to the main loop and is not safe for
// concurrent use.
type Slot struct {
	Tag  string
	Name string

	file   storage.File
	stream audio.Stream
	policy audio.ResyncPolicy
	reader audio.FrameReader
	ring   *ring.Buffer
	chunk  []audio.Frame
	rate   int

	eos     bool
	failed  error
	total   int64 // frames at the output rate, 0 if unknown
	corrupt int

	log *slog.Logger
}

// Open detects the codec of f, opens it and returns a slot ready to decode.
// The slot takes ownership of f, closing it on failure. Errors match
// audio.ErrUnsupportedFormat, audio.ErrCorruptHeader or audio.ErrIO.
func Open(reg *audio.Registry, name string, f storage.File, opts Options) (*Slot, error) {
	tag, codec, err := reg.Detect(name, f)
	if err != nil {
		f.Close()
		return nil, err
	}

	stream, err := codec.Open(f)
	if err != nil {
		err = classify(err, f)
		f.Close()
		return nil, fmt.Errorf("decoder: opening %s as %s: %w", name, tag, err)
	}

	format := stream.Format()
	if format.SampleRate <= 0 || format.Channels <= 0 {
		stream.Close()
		f.Close()
		return nil, fmt.Errorf("decoder: %s: %w: %v", name, audio.ErrUnsupportedFormat, format)
	}

	s := NewSlot(stream, codec.Resync(), opts)
	s.Tag = tag
	s.Name = name
	s.file = f
	s.log = s.log.With("track", name, "codec", tag)
	s.log.Debug("track opened", "format", format.String(), "rate", s.rate, "frames", s.total)
	return s, nil
}

// classify maps an open error onto the decoder error taxonomy.
func classify(err error, f storage.File) error {
	if ferr := f.Err(); ferr != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, ferr)
	}
	switch {
	case errors.Is(err, audio.ErrIO),
		errors.Is(err, audio.ErrCorruptHeader),
		errors.Is(err, audio.ErrUnsupportedFormat):
		return err
	}
	return fmt.Errorf("%w: %w", audio.ErrCorruptHeader, err)
}

// NewSlot wraps an already open stream. The slot owns the stream.
func NewSlot(stream audio.Stream, policy audio.ResyncPolicy, opts Options) *Slot {
	opts = opts.withDefaults()
	format := stream.Format()

	s := &Slot{
		stream: stream,
		policy: policy,
		ring:   ring.New(opts.RingFrames),
		rate:   format.SampleRate,
		total:  stream.Length(),
		log:    opts.Logger,
	}

	var reader audio.FrameReader = audio.NewStreamReader(stream)
	if opts.OutputRate > 0 && opts.OutputRate != format.SampleRate {
		reader = audio.NewResampler(reader, format.SampleRate, opts.OutputRate)
		s.rate = opts.OutputRate
		s.total = s.total * int64(opts.OutputRate) / int64(format.SampleRate)
		s.chunk = make([]audio.Frame, resampleChunk)
	} else {
		s.chunk = make([]audio.Frame, opts.RingFrames)
	}
	s.reader = reader
	return s
}

// Format is the stream's native format.
func (s *Slot) Format() audio.Format { return s.stream.Format() }

// Rate is the sample rate of the frames in the ring.
func (s *Slot) Rate() int { return s.rate }

// Resampled reports whether the slot converts the stream's rate.
func (s *Slot) Resampled() bool { return s.rate != s.stream.Format().SampleRate }

func (s *Slot) Resync() audio.ResyncPolicy { return s.policy }

// DecodeNext decodes one codec unit into the ring and returns the frames
// added. It returns 0 with a nil error when the ring has no room.
//
// audio.ErrEndOfStream is returned once the stream is exhausted (frames
// already in the ring stay readable). audio.ErrCorruptFrame is returned for
// a damaged unit; whether decoding may go on is Recoverable(err). Any other
// error is fatal to the track.
func (s *Slot) DecodeNext() (int, error) {
	if s.failed != nil {
		return 0, s.failed
	}
	if s.eos {
		return 0, audio.ErrEndOfStream
	}

	room := min(s.ring.AvailableWrite(), len(s.chunk))
	if room == 0 {
		return 0, nil
	}

	n, err := s.reader.ReadFrames(s.chunk[:room])
	s.ring.Write(s.chunk[:n])

	switch {
	case err == nil:
		return n, nil
	case s.file != nil && s.file.Err() != nil:
		s.failed = fmt.Errorf("decoder: %s: %w: %w", s.Name, audio.ErrIO, s.file.Err())
	case errors.Is(err, audio.ErrEndOfStream):
		s.eos = true
		s.log.Debug("end of stream", "frames", s.ring.Written())
		return n, err
	case audio.Recoverable(err, s.policy):
		s.corrupt++
		s.log.Debug("skipped corrupt frame", "error", err, "count", s.corrupt)
		return n, err
	default:
		s.failed = fmt.Errorf("decoder: %s: %w", s.Name, err)
	}
	s.log.Warn("track decode failed", "error", s.failed)
	return n, s.failed
}

// Read moves up to len(dst) decoded frames out of the ring.
func (s *Slot) Read(dst []audio.Frame) int { return s.ring.Read(dst) }

// Buffered is the decoded frames waiting in the ring.
func (s *Slot) Buffered() int { return s.ring.AvailableRead() }

// Full reports whether the ring has no room for more frames.
func (s *Slot) Full() bool { return s.ring.AvailableWrite() == 0 }

// Consumed is the frames read out of the slot so far.
func (s *Slot) Consumed() uint64 { return s.ring.Consumed() }

// Total is the track length at the output rate, 0 if unknown.
func (s *Slot) Total() int64 { return s.total }

// Remaining is the frames of the track not yet read out of the slot, or -1
// when the length is unknown and the stream has not ended.
func (s *Slot) Remaining() int64 {
	if s.eos {
		return int64(s.ring.AvailableRead())
	}
	if s.total <= 0 {
		return -1
	}
	return max(s.total-int64(s.ring.Consumed()), 0)
}

// EOS reports whether the stream has been decoded to the end.
func (s *Slot) EOS() bool { return s.eos }

// Drained reports whether every decoded frame has been read.
func (s *Slot) Drained() bool { return s.eos && s.ring.AvailableRead() == 0 }

// Err is the fatal error that stopped the slot, if any.
func (s *Slot) Err() error { return s.failed }

// Corrupt counts the damaged units skipped so far.
func (s *Slot) Corrupt() int { return s.corrupt }

// Close releases the stream and the file and drops any buffered frames.
func (s *Slot) Close() error {
	s.ring.Reset()
	err := s.stream.Close()
	if s.file != nil {
		err = errors.Join(err, s.file.Close())
	}
	return err
}

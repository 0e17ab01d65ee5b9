// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// FrameReader is a pull source of stereo frames.
//
// ReadFrames may return n > 0 together with a non-nil error. ErrEndOfStream
// means nothing follows; ErrCorruptFrame means a unit was dropped and the
// reader can be called again.
type FrameReader interface {
	ReadFrames(dst []Frame) (int, error)
}

// StreamReader adapts a Stream to a FrameReader. Each ReadFrames call
// performs at most one Stream.DecodeNext; leftovers of a unit are kept for
// the following calls.
type StreamReader struct {
	stream  Stream
	mapper  *ChannelMapper
	pending []Frame
	pos     int
	eos     bool
}

func NewStreamReader(s Stream) *StreamReader {
	return &StreamReader{
		stream:  s,
		mapper:  NewChannelMapper(s.Format()),
		pending: make([]Frame, 0, 4096),
	}
}

func (r *StreamReader) Stream() Stream { return r.stream }

// Buffered returns decoded frames not yet handed out.
func (r *StreamReader) Buffered() int { return len(r.pending) - r.pos }

func (r *StreamReader) ReadFrames(dst []Frame) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if r.pos == len(r.pending) {
		if r.eos {
			return 0, ErrEndOfStream
		}
		if err := r.decode(); err != nil {
			if errors.Is(err, ErrEndOfStream) {
				r.eos = true
			}
			return 0, err
		}
	}

	n := copy(dst, r.pending[r.pos:])
	r.pos += n
	return n, nil
}

func (r *StreamReader) decode() error {
	samples, err := r.stream.DecodeNext()
	if len(samples) > 0 {
		frames := len(samples) / r.mapper.Channels()
		if cap(r.pending) < frames {
			r.pending = make([]Frame, frames)
		}
		r.pending = r.pending[:frames]
		r.pos = 0
		if _, merr := r.mapper.Map(r.pending, samples[:frames*r.mapper.Channels()]); merr != nil {
			return merr
		}
		if errors.Is(err, ErrEndOfStream) {
			// Hand out the tail first; the next empty read reports the end.
			r.eos = true
			return nil
		}
		return err
	}
	r.pending = r.pending[:0]
	r.pos = 0
	if err == nil {
		// Empty unit (e.g. decoder delay); nothing to hand out this call.
		return nil
	}
	return err
}

// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"

	"github.com/ik5/audcore/utils"
)

// Resampler streams frames from src to a target sample rate using cubic
// interpolation. It includes a one-pole low-pass filter when downsampling.
type Resampler struct {
	src     FrameReader
	srcRate float64
	dstRate float64
	ratio   float64 // srcRate / dstRate - source frames per output frame

	// Four frames for cubic interpolation:
	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4]Frame
	hasFrame [4]bool
	primed   bool

	// Position between frames[1] and frames[2], in source frames.
	pos float64

	// Batch of source frames; in[inPos:inLen] not yet consumed.
	in    []Frame
	inPos int
	inLen int
	eof   bool

	// Error from src that arrived together with frames, reported after them.
	deferred error

	useFilter   bool
	filterInit  bool
	filterAlpha float64
	filterL     float64
	filterR     float64
}

func NewResampler(src FrameReader, srcRate, dstRate int) *Resampler {
	ratio := float64(srcRate) / float64(dstRate)

	useFilter := ratio > 1.0
	var filterAlpha float64
	if useFilter {
		// Cutoff near the destination Nyquist frequency.
		filterAlpha = 0.5
	}

	return &Resampler{
		src:         src,
		srcRate:     float64(srcRate),
		dstRate:     float64(dstRate),
		ratio:       ratio,
		in:          make([]Frame, 1024),
		useFilter:   useFilter,
		filterAlpha: filterAlpha,
	}
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }

// Ratio is source frames per output frame.
func (r *Resampler) Ratio() float64 { return r.ratio }

// next returns one source frame.
func (r *Resampler) next() (Frame, error) {
	for r.inPos == r.inLen {
		if r.eof {
			return Frame{}, ErrEndOfStream
		}
		n, err := r.src.ReadFrames(r.in)
		r.inPos, r.inLen = 0, n
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				r.eof = true
			} else if n > 0 {
				r.deferred = err
			} else {
				return Frame{}, err
			}
		}
	}
	f := r.in[r.inPos]
	r.inPos++

	if r.useFilter {
		if !r.filterInit {
			// Start the filter on the first sample to avoid a warm-up transient.
			r.filterL, r.filterR = float64(f.L), float64(f.R)
			r.filterInit = true
		}
		r.filterL = r.filterAlpha*float64(f.L) + (1-r.filterAlpha)*r.filterL
		r.filterR = r.filterAlpha*float64(f.R) + (1-r.filterAlpha)*r.filterR
		f = Frame{L: int32(r.filterL), R: int32(r.filterR)}
	}
	return f, nil
}

// shift moves the interpolation window one source frame forward.
func (r *Resampler) shift() error {
	f, err := r.next()
	if err != nil && !errors.Is(err, ErrEndOfStream) {
		return err
	}

	r.frames[0], r.frames[1], r.frames[2] = r.frames[1], r.frames[2], r.frames[3]
	r.hasFrame[0], r.hasFrame[1], r.hasFrame[2] = r.hasFrame[1], r.hasFrame[2], r.hasFrame[3]

	if err == nil {
		r.frames[3] = f
		r.hasFrame[3] = true
	} else {
		r.hasFrame[3] = false
	}
	return nil
}

func (r *Resampler) prime() error {
	// frames[0] duplicates the first frame; 1..3 come from the source.
	for i := 1; i < 4; i++ {
		if r.hasFrame[i] {
			continue
		}
		f, err := r.next()
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				break
			}
			return err
		}
		r.frames[i] = f
		r.hasFrame[i] = true
	}
	if !r.hasFrame[1] {
		return ErrEndOfStream
	}
	r.frames[0] = r.frames[1]
	r.hasFrame[0] = true
	for i := 2; i < 4; i++ {
		if !r.hasFrame[i] {
			r.frames[i] = r.frames[i-1]
		}
	}
	r.primed = true
	return nil
}

func (r *Resampler) ReadFrames(dst []Frame) (int, error) {
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	for written < len(dst) {
		for r.pos >= 1.0 {
			if err := r.shift(); err != nil {
				return written, err
			}
			r.pos -= 1.0
		}

		if !r.hasFrame[1] || !r.hasFrame[2] {
			// The last real frame was frames[1]; emit it once then stop.
			if !r.hasFrame[1] {
				return written, ErrEndOfStream
			}
			if r.pos == 0 {
				dst[written] = r.frames[1]
				written++
				r.pos += r.ratio
				continue
			}
			return written, ErrEndOfStream
		}

		alpha := r.pos
		y3 := r.frames[3]
		if !r.hasFrame[3] {
			y3 = r.frames[2]
		}
		dst[written] = Frame{
			L: clampSample(utils.Cubic(float64(r.frames[0].L), float64(r.frames[1].L), float64(r.frames[2].L), float64(y3.L), alpha)),
			R: clampSample(utils.Cubic(float64(r.frames[0].R), float64(r.frames[1].R), float64(r.frames[2].R), float64(y3.R), alpha)),
		}
		written++
		r.pos += r.ratio
	}

	if r.deferred != nil {
		err := r.deferred
		r.deferred = nil
		return written, err
	}
	return written, nil
}

func clampSample(v float64) int32 {
	return int32(utils.Clamp(utils.Round(v), MinSample, MaxSample))
}

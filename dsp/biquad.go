// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"math/cmplx"

	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/utils"
)

// coefBits is the fractional precision of filter coefficients.
const coefBits = 28

const (
	// headroom limits intermediate samples to 24 dB above full scale, which
	// keeps every multiply-accumulate inside int64.
	headroomMax = 1<<(audio.InternalBits+3) - 1
	headroomMin = -1 << (audio.InternalBits + 3)
)

// coefs are normalized biquad coefficients (a0 == 1).
type coefs struct {
	b0, b1, b2, a1, a2 float64
}

// peaking is the RBJ cookbook peaking EQ.
func peaking(rate, freq, gainDb, q float64) coefs {
	a := math.Pow(10, gainDb/40)
	w0 := 2 * math.Pi * freq / rate
	cos := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha/a
	return coefs{
		b0: (1 + alpha*a) / a0,
		b1: -2 * cos / a0,
		b2: (1 - alpha*a) / a0,
		a1: -2 * cos / a0,
		a2: (1 - alpha/a) / a0,
	}
}

// lowShelf is the RBJ cookbook low shelf with a slope of 1.
func lowShelf(rate, freq, gainDb float64) coefs {
	a := math.Pow(10, gainDb/40)
	w0 := 2 * math.Pi * freq / rate
	cos := math.Cos(w0)
	alpha := math.Sin(w0) / 2 * math.Sqrt2
	sq := 2 * math.Sqrt(a) * alpha

	a0 := (a + 1) + (a-1)*cos + sq
	return coefs{
		b0: a * ((a + 1) - (a-1)*cos + sq) / a0,
		b1: 2 * a * ((a - 1) - (a+1)*cos) / a0,
		b2: a * ((a + 1) - (a-1)*cos - sq) / a0,
		a1: -2 * ((a - 1) + (a+1)*cos) / a0,
		a2: ((a + 1) + (a-1)*cos - sq) / a0,
	}
}

// response is the magnitude of the filter at freq.
func (c coefs) response(rate, freq float64) float64 {
	w := 2 * math.Pi * freq / rate
	z1 := complex(math.Cos(-w), math.Sin(-w))
	z2 := z1 * z1
	num := complex(c.b0, 0) + complex(c.b1, 0)*z1 + complex(c.b2, 0)*z2
	den := 1 + complex(c.a1, 0)*z1 + complex(c.a2, 0)*z2
	return cmplx.Abs(num / den)
}

// history is the Direct Form I state of one channel.
type history struct {
	x1, x2, y1, y2 int64
}

// biquad is a stereo second-order section in fixed point.
type biquad struct {
	design             coefs
	b0, b1, b2, a1, a2 int64
	l, r               history
}

func newBiquad(c coefs) *biquad {
	return &biquad{
		design: c,
		b0:     utils.ToFixed(c.b0, coefBits),
		b1:     utils.ToFixed(c.b1, coefBits),
		b2:     utils.ToFixed(c.b2, coefBits),
		a1:     utils.ToFixed(c.a1, coefBits),
		a2:     utils.ToFixed(c.a2, coefBits),
	}
}

func (q *biquad) reset() { q.l, q.r = history{}, history{} }

func (q *biquad) step(h *history, x int64) int64 {
	acc := q.b0*x + q.b1*h.x1 + q.b2*h.x2 - q.a1*h.y1 - q.a2*h.y2
	y := utils.Clamp(utils.ShiftRound(acc, coefBits), headroomMin, headroomMax)
	h.x2, h.x1 = h.x1, x
	h.y2, h.y1 = h.y1, y
	return y
}

func (q *biquad) process(frames []audio.Frame) {
	for i := range frames {
		frames[i].L = int32(q.step(&q.l, int64(frames[i].L)))
		frames[i].R = int32(q.step(&q.r, int64(frames[i].R)))
	}
}

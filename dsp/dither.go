// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math/rand/v2"

	"github.com/ik5/audcore/audio"
)

// dither adds triangular noise of +-1 output LSB ahead of the quantizer.
type dither struct {
	rng *rand.Rand
	lsb uint64 // one output LSB at internal precision
}

func newDither(outputBits int) *dither {
	return &dither{
		rng: rand.New(rand.NewPCG(0x61756463, 0x6f726521)),
		lsb: 1 << (audio.InternalBits - outputBits),
	}
}

func (d *dither) noise() int32 {
	return int32(d.rng.Uint64N(d.lsb)) - int32(d.rng.Uint64N(d.lsb))
}

func (d *dither) process(frames []audio.Frame) {
	for i := range frames {
		frames[i].L += d.noise()
		frames[i].R += d.noise()
	}
}

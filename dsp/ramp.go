// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/utils"
)

const (
	gainBits = 28
	unity    = int64(1) << gainBits
)

// gainOf converts decibels to a fixed-point gain.
func gainOf(db float64) int64 {
	if db <= MuteDb {
		return 0
	}
	return utils.ToFixed(utils.DbToGain(db), gainBits)
}

// ramp moves one channel's gain linearly from start to target over length
// frames. The gain at position pos is start + (target-start)*pos/length,
// so every step has the same sign and the last one lands on target.
type ramp struct {
	start, target int64
	pos, length   int64
}

func (r *ramp) current() int64 {
	if r.pos >= r.length {
		return r.target
	}
	return r.start + (r.target-r.start)*r.pos/r.length
}

func (r *ramp) active() bool { return r.pos < r.length }

func (r *ramp) set(target, length int64) {
	r.start = r.current()
	r.target = target
	r.pos = 0
	r.length = length
	if length <= 0 || r.start == target {
		r.pos, r.length = 0, 0
	}
}

// jump sets the gain to from and ramps to target.
func (r *ramp) jump(from, target, length int64) {
	r.pos, r.length = 0, 0
	r.target = from
	r.set(target, length)
}

func (r *ramp) advance() int64 {
	g := r.current()
	if r.pos < r.length {
		r.pos++
	}
	return g
}

func applyGain(s int32, g int64) int32 {
	if g == unity {
		return s
	}
	return int32(utils.Clamp(utils.ShiftRound(int64(s)*g, gainBits), headroomMin, headroomMax))
}

// volume is the per-channel gain stage.
type volume struct {
	l, r ramp
}

func (v *volume) unity() bool {
	return !v.l.active() && !v.r.active() && v.l.target == unity && v.r.target == unity
}

func (v *volume) ramping() bool { return v.l.active() || v.r.active() }

func (v *volume) process(frames []audio.Frame) {
	if !v.ramping() {
		gl, gr := v.l.target, v.r.target
		for i := range frames {
			frames[i].L = applyGain(frames[i].L, gl)
			frames[i].R = applyGain(frames[i].R, gr)
		}
		return
	}
	for i := range frames {
		frames[i].L = applyGain(frames[i].L, v.l.advance())
		frames[i].R = applyGain(frames[i].R, v.r.advance())
	}
}

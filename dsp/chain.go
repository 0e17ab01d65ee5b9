// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"

	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/utils"
)

// Stage names as reported by Chain.Stages.
const (
	StageEQ     = "eq"
	StageBass   = "bass"
	StageWidth  = "width"
	StageVolume = "volume"
	StageDither = "dither"
)

// nyquistLimit keeps designed filters clear of the Nyquist frequency.
const nyquistLimit = 0.45

type stage struct {
	name string
	run  func([]audio.Frame)
}

// Chain is the ordered DSP pipeline between the decoder rings and the DMA
// buffers. It is not safe for concurrent use.
type Chain struct {
	cfg     Config
	rate    int
	srcBits int

	eq    []*biquad
	bass  *biquad
	width int64 // side gain, gainBits fraction
	vol   volume
	dith  *dither

	stages    []stage
	volStaged bool
	dirty     bool
}

// NewChain builds a chain for rate with the volume at unity.
func NewChain(cfg Config, rate int) (*Chain, error) {
	if rate <= 0 {
		return nil, ErrInvalidRate
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	c := &Chain{
		cfg:     cfg,
		rate:    rate,
		srcBits: audio.InternalBits,
		dith:    newDither(cfg.OutputBits),
	}
	c.vol.l.target, c.vol.r.target = unity, unity
	c.design()
	return c, nil
}

// Configure swaps in a new stage configuration, keeping the volume.
func (c *Chain) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = cfg.withDefaults()
	if cfg.OutputBits != c.cfg.OutputBits {
		c.dith = newDither(cfg.OutputBits)
	}
	c.cfg = cfg
	c.design()
	return nil
}

func (c *Chain) Config() Config    { return c.cfg }
func (c *Chain) SampleRate() int   { return c.rate }
func (c *Chain) OutputBits() int   { return c.cfg.OutputBits }
func (c *Chain) RampFrames() int64 { return int64(math.Round(c.cfg.RampMs * float64(c.rate) / 1000)) }

// SetSampleRate redesigns every filter for rate and clears their history.
// Coefficients designed for one rate are wrong at any other.
func (c *Chain) SetSampleRate(rate int) error {
	if rate <= 0 {
		return ErrInvalidRate
	}
	c.rate = rate
	c.design()
	return nil
}

// SetSourceBits records the bit depth of the track being played, which
// decides whether output truncation needs dither.
func (c *Chain) SetSourceBits(bits int) {
	if bits <= 0 {
		bits = audio.InternalBits
	}
	c.srcBits = bits
	c.dirty = true
}

// SetVolume ramps each channel to its new level.
func (c *Chain) SetVolume(leftDb, rightDb float64) {
	n := c.RampFrames()
	c.vol.l.set(gainOf(leftDb), n)
	c.vol.r.set(gainOf(rightDb), n)
	c.dirty = true
}

// RampIn restarts both channels from silence up to their current target.
func (c *Chain) RampIn() {
	n := c.RampFrames()
	c.vol.l.jump(0, c.vol.l.target, n)
	c.vol.r.jump(0, c.vol.r.target, n)
	c.dirty = true
}

// Gain is the current linear gain per channel.
func (c *Chain) Gain() (l, r float64) {
	return utils.FromFixed(c.vol.l.current(), gainBits), utils.FromFixed(c.vol.r.current(), gainBits)
}

// Ramping reports whether a volume ramp is in progress.
func (c *Chain) Ramping() bool { return c.vol.ramping() }

// Reset clears filter history and finishes any volume ramp.
func (c *Chain) Reset() {
	for _, q := range c.eq {
		q.reset()
	}
	if c.bass != nil {
		c.bass.reset()
	}
	c.vol.l.set(c.vol.l.target, 0)
	c.vol.r.set(c.vol.r.target, 0)
	c.dirty = true
}

// Stages lists the active stages in processing order.
func (c *Chain) Stages() []string {
	c.rebuild()
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.name
	}
	return names
}

// Process runs frames through the active stages in place.
func (c *Chain) Process(frames []audio.Frame) {
	if c.dirty {
		c.rebuild()
	}
	for _, s := range c.stages {
		s.run(frames)
	}
	if c.volStaged && c.vol.unity() {
		// A ramp back to unity just finished.
		c.dirty = true
	}
}

func (c *Chain) design() {
	nyq := float64(c.rate) * nyquistLimit

	c.eq = c.eq[:0]
	for _, b := range c.cfg.EQ {
		if b.GainDb == 0 {
			continue
		}
		c.eq = append(c.eq, newBiquad(peaking(float64(c.rate), math.Min(b.Freq, nyq), b.GainDb, b.Q)))
	}

	c.bass = nil
	if c.cfg.BassGainDb != 0 {
		c.bass = newBiquad(lowShelf(float64(c.rate), math.Min(c.cfg.BassFreq, nyq), c.cfg.BassGainDb))
	}

	c.width = utils.ToFixed(c.cfg.Width, gainBits)
	c.dirty = true
}

// ditherNeeded reports whether output truncation would drop information.
func (c *Chain) ditherNeeded(shaping bool) bool {
	if c.cfg.NoDither || c.cfg.OutputBits >= audio.InternalBits {
		return false
	}
	return shaping || c.srcBits > c.cfg.OutputBits
}

func (c *Chain) rebuild() {
	c.stages = c.stages[:0]
	if len(c.eq) > 0 {
		c.stages = append(c.stages, stage{StageEQ, c.processEQ})
	}
	if c.bass != nil {
		c.stages = append(c.stages, stage{StageBass, c.bass.process})
	}
	if c.width != unity {
		c.stages = append(c.stages, stage{StageWidth, c.processWidth})
	}
	c.volStaged = !c.vol.unity()
	if c.volStaged {
		c.stages = append(c.stages, stage{StageVolume, c.vol.process})
	}
	if c.ditherNeeded(len(c.stages) > 0) {
		c.stages = append(c.stages, stage{StageDither, c.dith.process})
	}
	c.dirty = false
}

func (c *Chain) processEQ(frames []audio.Frame) {
	for _, q := range c.eq {
		q.process(frames)
	}
}

// processWidth scales the side (L-R) signal and keeps the mid.
func (c *Chain) processWidth(frames []audio.Frame) {
	for i := range frames {
		l, r := int64(frames[i].L), int64(frames[i].R)
		mid := l + r
		side := utils.ShiftRound((l-r)*c.width, gainBits)
		frames[i].L = int32(utils.Clamp((mid+side)>>1, headroomMin, headroomMax))
		frames[i].R = int32(utils.Clamp((mid-side)>>1, headroomMin, headroomMax))
	}
}

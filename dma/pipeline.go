// SPDX-License-Identifier: EPL-2.0

package dma

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/dsp"
	"github.com/ik5/audcore/hal"
)

const (
	DefaultBuffers      = 2
	DefaultBufferFrames = 1024

	maxBuffers = 32 // bits in the refill mask
)

// silence marks the silence buffer in the drain index.
const silence = -1

// PullSource supplies the frames played. Pull fills dst as far as it can
// and returns the count; done reports that nothing follows for now. A
// source may start supplying frames again after reporting done, so the
// pipeline keeps asking. Pull with an empty dst only reports done.
type PullSource interface {
	Pull(dst []audio.Frame) (n int, done bool)
}

// PullFunc adapts a function to PullSource.
type PullFunc func(dst []audio.Frame) (int, bool)

func (f PullFunc) Pull(dst []audio.Frame) (int, bool) { return f(dst) }

type Options struct {
	Buffers      int
	BufferFrames int
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Buffers == 0 {
		o.Buffers = DefaultBuffers
	}
	if o.BufferFrames == 0 {
		o.BufferFrames = DefaultBufferFrames
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Stats is a snapshot of the pipeline counters.
type Stats struct {
	// Played frames of real audio the DAC has finished.
	Played uint64
	// DMAUnderruns counts episodes where the interrupt found the next
	// buffer still waiting for refill and played silence instead.
	DMAUnderruns uint32
	// Starvations counts episodes where the source could not fill a buffer.
	Starvations uint32
	// Spurious counts interrupts taken while the pipeline was stopped.
	Spurious uint32
	// EncodeErrors counts buffers that could not be encoded and were
	// played as silence.
	EncodeErrors uint32
	Refills      uint64
}

// Pipeline moves frames from a PullSource through the DSP chain into N DMA
// buffers played in rotation.
//
// The main loop calls Process; the output's interrupt runs fiq. They share
// only the atomic fields below. A buffer whose refill bit is set belongs to
// the main loop, a buffer whose bit is clear belongs to the hardware.
type Pipeline struct {
	out   hal.Output
	chain *dsp.Chain
	opts  Options
	log   *slog.Logger

	bits    int
	bufs    [][]byte
	quiet   []byte
	frames  []audio.Frame
	src     PullSource
	fillRot int // next buffer to refill, main loop only
	pulled  uint64
	done    bool // the last Pull reported done
	hungry  bool // in a starvation episode

	// Shared with the interrupt handler.
	running  atomic.Bool
	refill   atomic.Uint32
	drain    atomic.Int32
	valid    []atomic.Int32
	played   atomic.Uint64
	starved  atomic.Bool
	underrun atomic.Uint32
	starve   atomic.Uint32
	spurious atomic.Uint32
	encode   atomic.Uint32
	refills  atomic.Uint64

	rot int // next buffer to play, interrupt handler only
}

func New(out hal.Output, chain *dsp.Chain, opts Options) (*Pipeline, error) {
	opts = opts.withDefaults()
	if opts.Buffers < 2 || opts.Buffers > maxBuffers {
		return nil, fmt.Errorf("%w: %d", ErrBufferCount, opts.Buffers)
	}
	if opts.BufferFrames <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBufferSize, opts.BufferFrames)
	}

	p := &Pipeline{
		out:    out,
		chain:  chain,
		opts:   opts,
		log:    opts.Logger,
		frames: make([]audio.Frame, opts.BufferFrames),
		valid:  make([]atomic.Int32, opts.Buffers),
	}
	p.drain.Store(silence)
	return p, nil
}

// alloc gets the DMA buffers for the chain's output depth.
func (p *Pipeline) alloc() error {
	bits := p.chain.OutputBits()
	if p.bufs != nil && bits == p.bits {
		return nil
	}
	size := p.opts.BufferFrames * dsp.FrameBytes(bits)

	bufs := make([][]byte, p.opts.Buffers)
	for i := range bufs {
		b, err := p.out.AllocDMA(size)
		if err != nil {
			return fmt.Errorf("dma: allocating buffer %d: %w", i, err)
		}
		bufs[i] = b
	}
	quiet, err := p.out.AllocDMA(size)
	if err != nil {
		return fmt.Errorf("dma: allocating silence buffer: %w", err)
	}
	clear(quiet)
	p.out.FlushCache(quiet)

	p.bufs, p.quiet, p.bits = bufs, quiet, bits
	return nil
}

// Start primes every buffer from src, installs the interrupt handler and
// starts DMA on buffer 0. The output must already be configured.
func (p *Pipeline) Start(src PullSource) error {
	if p.running.Load() {
		return ErrRunning
	}
	if err := p.alloc(); err != nil {
		return err
	}

	p.src = src
	p.pulled, p.done, p.hungry = 0, false, false
	p.played.Store(0)
	p.underrun.Store(0)
	p.starve.Store(0)
	p.encode.Store(0)
	p.starved.Store(false)

	n := p.opts.Buffers
	p.refill.Store(1<<n - 1)
	p.fillRot = 0
	for range n {
		p.fill(p.fillRot)
		p.fillRot = (p.fillRot + 1) % n
	}

	p.drain.Store(0)
	p.rot = 1 % n
	p.running.Store(true)
	p.out.RegisterFIQ(p.fiq)
	p.out.ArmDMA(p.bufs[0])
	p.log.Debug("dma started", "buffers", n, "frames", p.opts.BufferFrames, "bits", p.bits)
	return nil
}

// Process refills every buffer the hardware has handed back, in play order,
// and returns how many it refilled.
func (p *Pipeline) Process() int {
	if !p.running.Load() {
		return 0
	}
	n := 0
	for p.refill.Load()&(1<<p.fillRot) != 0 {
		p.fill(p.fillRot)
		p.fillRot = (p.fillRot + 1) % p.opts.Buffers
		n++
		if n == p.opts.Buffers {
			break
		}
	}
	return n
}

// fill renders the next BufferFrames frames into buffer k and hands it to
// the hardware. Frames the source cannot supply are zero.
func (p *Pipeline) fill(k int) {
	want := len(p.frames)
	got := 0
	for got < want {
		n, done := p.src.Pull(p.frames[got:])
		got += n
		p.done = done
		if n == 0 || done {
			break
		}
	}
	clear(p.frames[got:])

	switch {
	case got == want || p.done:
		p.hungry = false
	case !p.hungry:
		p.hungry = true
		p.starve.Add(1)
	}

	p.chain.Process(p.frames[:got])
	buf := p.bufs[k]
	if _, err := dsp.Encode(buf, p.frames, p.bits); err != nil {
		// The frames are dropped and the buffer plays as silence.
		clear(buf)
		p.encode.Add(1)
		got = 0
	}
	p.pulled += uint64(got)
	p.valid[k].Store(int32(got))

	p.out.FlushCache(buf)
	p.refill.And(^uint32(1 << k))
	p.refills.Add(1)
}

// fiq is the transfer-complete handler. It runs in interrupt context and
// only touches atomics and the hal.
func (p *Pipeline) fiq() {
	p.out.AckInterrupt()
	if !p.running.Load() {
		p.spurious.Add(1)
		return
	}

	if cur := p.drain.Load(); cur != silence {
		p.played.Add(uint64(p.valid[cur].Load()))
		p.refill.Or(1 << cur)
	}

	next := p.rot
	if p.refill.Load()&(1<<next) != 0 {
		if !p.starved.Swap(true) {
			p.underrun.Add(1)
		}
		p.drain.Store(silence)
		p.out.ArmDMA(p.quiet)
		return
	}

	p.starved.Store(false)
	p.drain.Store(int32(next))
	p.rot = (next + 1) % len(p.bufs)
	p.out.ArmDMA(p.bufs[next])
}

// Stop halts DMA, removes the interrupt handler and drops the source.
func (p *Pipeline) Stop() {
	if !p.running.Swap(false) {
		return
	}
	p.out.DisarmDMA()
	p.out.RegisterFIQ(nil)

	p.refill.Store(0)
	p.drain.Store(silence)
	for i := range p.valid {
		p.valid[i].Store(0)
	}
	p.starved.Store(false)
	p.src = nil
	p.log.Debug("dma stopped", "played", p.played.Load())
}

func (p *Pipeline) Pause()  { p.out.PauseDMA() }
func (p *Pipeline) Resume() { p.out.ResumeDMA() }

func (p *Pipeline) Running() bool { return p.running.Load() }

// Played is the frames of real audio the DAC has finished since Start.
func (p *Pipeline) Played() uint64 { return p.played.Load() }

// Pulled is the frames taken from the source and queued for the DAC since
// Start.
func (p *Pipeline) Pulled() uint64 { return p.pulled }

// Underrun reports whether the DAC is playing silence because no buffer
// was ready.
func (p *Pipeline) Underrun() bool { return p.starved.Load() }

// Finished reports that everything pulled has been played and the source
// still has nothing to follow. A source that has frames again, such as a
// queue that was just extended, is not finished.
func (p *Pipeline) Finished() bool {
	if p.src == nil || p.played.Load() < p.pulled {
		return false
	}
	_, p.done = p.src.Pull(p.frames[:0])
	return p.done
}

// Underruns is the DMA and starvation episodes since Start.
func (p *Pipeline) Underruns() uint32 {
	return p.underrun.Load() + p.starve.Load()
}

func (p *Pipeline) Stats() Stats {
	return Stats{
		Played:       p.played.Load(),
		DMAUnderruns: p.underrun.Load(),
		Starvations:  p.starve.Load(),
		Spurious:     p.spurious.Load(),
		EncodeErrors: p.encode.Load(),
		Refills:      p.refills.Load(),
	}
}

// Buffers is the number of DMA buffers in rotation.
func (p *Pipeline) Buffers() int { return p.opts.Buffers }

// BufferFrames is the frames per DMA buffer.
func (p *Pipeline) BufferFrames() int { return p.opts.BufferFrames }

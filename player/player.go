// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"log/slog"

	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/decoder"
	"github.com/ik5/audcore/dma"
	"github.com/ik5/audcore/dsp"
	"github.com/ik5/audcore/gapless"
	"github.com/ik5/audcore/hal"
	"github.com/ik5/audcore/storage"
)

// DefaultFallbackRate is used when the output refuses a track's own rate.
const DefaultFallbackRate = 44100

type Options struct {
	DSP     dsp.Config
	DMA     dma.Options
	Gapless gapless.Options
	// FallbackRate is the rate tracks are resampled to when the output
	// cannot run at their own rate.
	FallbackRate int
	// HardwareVolume sends SetVolume to the codec's control port instead
	// of the DSP chain when one is available.
	HardwareVolume bool
	Logger         *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.FallbackRate <= 0 {
		o.FallbackRate = DefaultFallbackRate
	}
	if o.DSP.OutputBits == 0 {
		o.DSP.OutputBits = 16
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.DMA.Logger == nil {
		o.DMA.Logger = o.Logger
	}
	if o.Gapless.Logger == nil {
		o.Gapless.Logger = o.Logger
	}
	return o
}

// Player is the playback engine's public face. Every method is meant to be
// called from the main loop; Tick must run once per iteration.
type Player struct {
	out  hal.Output
	ctl  hal.CodecControl
	opts Options
	log  *slog.Logger

	chain *dsp.Chain
	pipe  *dma.Pipeline
	coord *gapless.Coordinator

	state   State
	rate    int
	current string
	start   uint64 // played frame at which the current track began
	pending []gapless.Event
	onEvent func(gapless.Event)
	lastErr error

	volL, volR float64
	hwVol      bool
}

// New wires a player to an output. ctl may be nil when the codec has no
// control port.
func New(out hal.Output, ctl hal.CodecControl, reg *audio.Registry, fs storage.FS, opts Options) (*Player, error) {
	opts = opts.withDefaults()

	chain, err := dsp.NewChain(opts.DSP, opts.FallbackRate)
	if err != nil {
		return nil, err
	}
	pipe, err := dma.New(out, chain, opts.DMA)
	if err != nil {
		return nil, err
	}
	coord, err := gapless.New(reg, fs, opts.Gapless)
	if err != nil {
		return nil, err
	}

	return &Player{
		out:   out,
		ctl:   ctl,
		opts:  opts,
		log:   opts.Logger,
		chain: chain,
		pipe:  pipe,
		coord: coord,
	}, nil
}

// LoadAndPlay stops whatever is playing and starts path. Queued tracks
// stay queued and follow it.
func (p *Player) LoadAndPlay(path string) error {
	queue := p.coord.Queue()
	p.Stop()
	for _, q := range queue {
		p.coord.Enqueue(q)
	}

	slot, rate, err := p.open(path)
	if err != nil {
		return p.loadFailed(path, err)
	}

	if err := p.chain.SetSampleRate(rate); err != nil {
		slot.Close()
		return p.loadFailed(path, err)
	}
	p.chain.SetSourceBits(slot.Format().BitDepth)
	p.chain.Reset()
	p.chain.RampIn()

	p.coord.Play(path, slot)
	p.prime()

	if err := p.pipe.Start(p.coord); err != nil {
		p.coord.Stop()
		return p.loadFailed(path, err)
	}

	p.state = Playing
	p.rate = rate
	p.current = path
	p.start = 0
	p.lastErr = nil
	p.dispatch(p.coord.Events())
	return nil
}

// open opens path and sets the output up for it, resampling to the
// fallback rate when the output refuses the track's own rate.
func (p *Player) open(path string) (*decoder.Slot, int, error) {
	slot, err := p.coord.Open(path, 0)
	if err != nil {
		return nil, 0, err
	}
	rate := slot.Rate()
	bits := p.chain.OutputBits()

	err = p.out.Configure(rate, bits, 2)
	if errors.Is(err, hal.ErrRateUnsupported) && rate != p.opts.FallbackRate {
		slot.Close()
		p.log.Info("output refused track rate, resampling", "track", path, "rate", rate, "to", p.opts.FallbackRate)

		rate = p.opts.FallbackRate
		if slot, err = p.coord.Open(path, rate); err != nil {
			return nil, 0, err
		}
		err = p.out.Configure(rate, bits, 2)
	}
	if err != nil {
		slot.Close()
		return nil, 0, err
	}
	return slot, rate, nil
}

// prime decodes until the first track can fill every DMA buffer.
func (p *Player) prime() {
	need := p.pipe.Buffers() * p.pipe.BufferFrames()
	for range 64 {
		s := p.coord.Active()
		if s == nil || s.Buffered() >= need || s.Full() || s.EOS() {
			return
		}
		p.coord.Tick()
	}
}

func (p *Player) loadFailed(path string, err error) error {
	p.lastErr = &LoadError{Path: path, Err: err}
	p.log.Warn("cannot play track", "track", path, "error", err)
	return p.lastErr
}

// Enqueue adds path to the tracks played after the current one.
func (p *Player) Enqueue(path string) { p.coord.Enqueue(path) }

func (p *Player) Pause() {
	if p.state != Playing && p.state != Underrun {
		return
	}
	p.pipe.Pause()
	p.state = Paused
}

func (p *Player) Resume() {
	if p.state != Paused {
		return
	}
	p.pipe.Resume()
	p.state = Playing
}

// Stop halts DMA, masks its interrupt and closes the decoders, in that
// order. The queue is cleared.
func (p *Player) Stop() {
	p.pipe.Stop()
	if err := p.coord.Stop(); err != nil {
		p.log.Warn("closing tracks", "error", err)
	}
	if p.state != Stopped {
		p.log.Info("playback stopped", "track", p.current, "underruns", p.pipe.Underruns())
	}
	p.state = Stopped
	p.pending = p.pending[:0]
}

// SetVolume sets the per-channel level in dB. With hardware volume enabled
// the codec does the work and the chain stays at unity; a codec that
// refuses the level leaves it to the chain.
func (p *Player) SetVolume(leftDb, rightDb float64) {
	p.volL, p.volR = leftDb, rightDb
	if p.opts.HardwareVolume && p.ctl != nil {
		err := p.ctl.SetVolumeHw(leftDb, rightDb)
		if err == nil {
			p.hwVol = true
			p.chain.SetVolume(0, 0)
			return
		}
		p.log.Debug("hardware volume refused, using software", "error", err)
		if p.hwVol {
			// Take the codec back to unity before the chain takes over.
			_ = p.ctl.SetVolumeHw(0, 0)
			p.hwVol = false
		}
	}
	p.chain.SetVolume(leftDb, rightDb)
}

// Volume is the level last requested.
func (p *Player) Volume() (leftDb, rightDb float64) { return p.volL, p.volR }

// PositionMs is how far into the current track the DAC has played.
func (p *Player) PositionMs() uint64 {
	if p.rate == 0 {
		return 0
	}
	played := p.pipe.Played()
	if played < p.start {
		return 0
	}
	return (played - p.start) * 1000 / uint64(p.rate)
}

// UnderrunCount is the DMA underruns and decoder starvations since the
// current playback started.
func (p *Player) UnderrunCount() uint32 { return p.pipe.Underruns() }

func (p *Player) State() State { return p.state }

// Current is the path of the track the DAC is playing.
func (p *Player) Current() string { return p.current }

// LastError is the most recent track failure, nil if the last start
// succeeded and nothing failed since.
func (p *Player) LastError() error { return p.lastErr }

// OnEvent registers fn to receive track events, each delivered from Tick
// once the DAC has reached the frame it refers to.
func (p *Player) OnEvent(fn func(gapless.Event)) { p.onEvent = fn }

// Stats exposes the DMA counters.
func (p *Player) Stats() dma.Stats { return p.pipe.Stats() }

// SetDSP reconfigures the chain. The output depth can only change while
// stopped.
func (p *Player) SetDSP(cfg dsp.Config) error {
	if cfg.OutputBits == 0 {
		cfg.OutputBits = 16
	}
	if cfg.OutputBits != p.chain.OutputBits() && p.state != Stopped {
		return ErrOutputBitsBusy
	}
	return p.chain.Configure(cfg)
}

// Tick drives playback: it decodes, refills DMA buffers, delivers track
// events that have become audible and tracks underrun state. It stops
// playback once the last track has been played out.
func (p *Player) Tick() {
	if p.state == Stopped {
		return
	}

	p.coord.Tick()
	p.pipe.Process()
	p.dispatch(p.coord.Events())

	switch {
	case p.state == Playing && p.pipe.Underrun():
		p.state = Underrun
		p.log.Warn("underrun", "track", p.current, "count", p.pipe.Underruns())
	case p.state == Underrun && !p.pipe.Underrun():
		p.state = Playing
		p.log.Info("recovered from underrun", "track", p.current)
	}

	if p.pipe.Finished() {
		p.dispatch(nil)
		p.log.Info("queue finished", "underruns", p.pipe.Underruns())
		p.Stop()
	}
}

// dispatch queues ev and delivers every pending event the DAC has reached.
func (p *Player) dispatch(ev []gapless.Event) {
	p.pending = append(p.pending, ev...)
	played := p.pipe.Played()

	n := 0
	for _, e := range p.pending {
		if e.Kind != gapless.TrackFailed && e.Frame > played {
			break
		}
		p.apply(e)
		n++
	}
	p.pending = append(p.pending[:0], p.pending[n:]...)
}

func (p *Player) apply(e gapless.Event) {
	switch e.Kind {
	case gapless.TrackStarted:
		p.current, p.start = e.Path, e.Frame
	case gapless.TrackFailed:
		p.lastErr = &LoadError{Path: e.Path, Err: e.Err}
	}
	if p.onEvent != nil {
		p.onEvent(e)
	}
}

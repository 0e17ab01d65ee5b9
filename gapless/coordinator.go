// SPDX-License-Identifier: EPL-2.0

package gapless

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/decoder"
	"github.com/ik5/audcore/storage"
)

type track struct {
	path string
	slot *decoder.Slot
}

// Coordinator owns the active decoder slot, the pre-buffered next one and
// the queue behind them. Tick decodes; Pull hands frames to the DMA layer
// and switches tracks. Both run on the main loop only.
type Coordinator struct {
	reg  *audio.Registry
	fs   storage.FS
	opts Options
	log  *slog.Logger

	active *track
	next   *track
	queue  []string

	rate   int
	pulled uint64
	gap    int64 // silence frames still owed before the next track
	late   int

	events []Event
}

func New(reg *audio.Registry, fs storage.FS, opts Options) (*Coordinator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Coordinator{
		reg:  reg,
		fs:   fs,
		opts: opts,
		log:  opts.Logger,
	}, nil
}

// Open opens path as a decoder slot producing frames at rate, or at the
// track's own rate when rate is 0.
func (c *Coordinator) Open(path string, rate int) (*decoder.Slot, error) {
	if rate < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRate, rate)
	}
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gapless: %s: %w: %w", path, audio.ErrIO, err)
	}
	opts := c.opts.Slot
	opts.OutputRate = rate
	return decoder.Open(c.reg, path, f, opts)
}

// Play makes slot the active track, dropping whatever was playing and any
// pre-buffered next track. The queue is kept. Frame counting restarts at 0.
func (c *Coordinator) Play(path string, slot *decoder.Slot) {
	if err := c.closeSlots(); err != nil {
		c.log.Warn("closing previous tracks", "error", err)
	}
	c.active = &track{path: path, slot: slot}
	c.rate = slot.Rate()
	c.pulled, c.gap = 0, 0
	c.events = append(c.events[:0], Event{Kind: TrackStarted, Path: path})
	c.log.Info("track started", "track", path, "rate", c.rate, "resampled", slot.Resampled())
}

// Enqueue appends path to the tracks played after the active one.
func (c *Coordinator) Enqueue(path string) { c.queue = append(c.queue, path) }

// Queue lists the tracks not yet opened.
func (c *Coordinator) Queue() []string { return slices.Clone(c.queue) }

func (c *Coordinator) ClearQueue() { c.queue = c.queue[:0] }

// Tick decodes into the active slot and, once the active track is close
// enough to its end, opens and pre-buffers the next queued track. Decoding
// is bounded by DecodeCallsPerTick units per slot.
func (c *Coordinator) Tick() {
	if c.rate == 0 {
		return
	}
	if c.active != nil {
		c.decode(c.active, c.opts.DecodeCallsPerTick)
	}
	if c.next == nil && len(c.queue) > 0 && c.due() {
		c.openNext()
	}
	if c.next != nil {
		c.decode(c.next, c.opts.DecodeCallsPerTick)
	}
}

// due reports whether the next track should be pre-buffered now.
func (c *Coordinator) due() bool {
	if c.active == nil {
		return true
	}
	s := c.active.slot
	if s.EOS() {
		return true
	}
	rem := s.Remaining()
	return rem >= 0 && rem < frames(c.opts.Threshold, c.rate)
}

// decode runs up to calls units of t's codec, stopping when the ring is
// full or the stream has ended. A fatal error fails the track.
func (c *Coordinator) decode(t *track, calls int) {
	for range calls {
		if t.slot.Full() || t.slot.EOS() {
			return
		}
		_, err := t.slot.DecodeNext()
		switch {
		case err == nil:
		case errors.Is(err, audio.ErrEndOfStream):
			return
		case audio.Recoverable(err, t.slot.Resync()):
		default:
			c.fail(t, err)
			return
		}
	}
}

// fail drops t and everything left in its ring.
func (c *Coordinator) fail(t *track, err error) {
	c.events = append(c.events, Event{Kind: TrackFailed, Path: t.path, Frame: c.pulled, Err: err})
	c.log.Warn("track failed", "track", t.path, "error", err)
	if cerr := t.slot.Close(); cerr != nil {
		c.log.Debug("closing failed track", "track", t.path, "error", cerr)
	}
	switch t {
	case c.active:
		c.active = nil
	case c.next:
		c.next = nil
	}
}

// openNext opens queued tracks until one succeeds, reporting every one that
// fails.
func (c *Coordinator) openNext() bool {
	for len(c.queue) > 0 {
		path := c.queue[0]
		c.queue = c.queue[1:]

		slot, err := c.Open(path, c.rate)
		if err != nil {
			c.events = append(c.events, Event{Kind: TrackFailed, Path: path, Frame: c.pulled, Err: err})
			c.log.Warn("cannot open queued track", "track", path, "error", err)
			continue
		}
		c.next = &track{path: path, slot: slot}
		c.log.Debug("pre-buffering", "track", path, "resampled", slot.Resampled())
		return true
	}
	return false
}

// Pull fills dst with the frames that play next and reports done once
// nothing will ever follow. When the active track ends inside dst the rest
// of dst comes from the next track, so track boundaries add no frames and
// lose none.
func (c *Coordinator) Pull(dst []audio.Frame) (int, bool) {
	n := 0
	for n < len(dst) {
		if c.gap > 0 {
			k := int(min(c.gap, int64(len(dst)-n)))
			clear(dst[n : n+k])
			n += k
			c.gap -= int64(k)
			c.pulled += uint64(k)
			continue
		}
		if c.active == nil {
			if !c.advance() {
				break
			}
			continue
		}

		k := c.active.slot.Read(dst[n:])
		n += k
		c.pulled += uint64(k)
		if !c.active.slot.Drained() {
			// Decoding is behind, or dst is full.
			break
		}
		c.finish()
	}
	return n, c.idle()
}

// finish ends the active track after its last frame has been pulled.
func (c *Coordinator) finish() {
	t := c.active
	c.active = nil
	c.events = append(c.events, Event{Kind: TrackEnded, Path: t.path, Frame: c.pulled})
	if err := t.slot.Close(); err != nil {
		c.log.Warn("closing finished track", "track", t.path, "error", err)
	}
	if c.next != nil || len(c.queue) > 0 {
		c.gap = frames(c.opts.Gap, c.rate)
	}
}

// advance promotes the next track to active.
func (c *Coordinator) advance() bool {
	if c.next == nil && len(c.queue) > 0 && c.opts.Policy == LateStall {
		c.openNext()
	}
	if c.next == nil {
		return false
	}

	t := c.next
	c.next = nil
	c.active = t
	c.events = append(c.events, Event{Kind: TrackStarted, Path: t.path, Frame: c.pulled})

	if t.slot.Buffered() == 0 && !t.slot.EOS() {
		c.late++
		c.log.Warn("next track not ready at handoff", "track", t.path, "policy", c.opts.Policy.String())
		if c.opts.Policy == LateStall {
			c.decode(t, c.opts.StallDecodeCalls)
		}
	}
	return true
}

func (c *Coordinator) idle() bool {
	return c.active == nil && c.next == nil && len(c.queue) == 0 && c.gap == 0
}

// Events returns the boundaries recorded since the last call, oldest first.
func (c *Coordinator) Events() []Event {
	ev := c.events
	c.events = nil
	return ev
}

// Stop closes every slot and empties the queue.
func (c *Coordinator) Stop() error {
	err := c.closeSlots()
	c.queue = c.queue[:0]
	c.events = nil
	c.rate, c.gap = 0, 0
	return err
}

func (c *Coordinator) closeSlots() error {
	var errs []error
	for _, t := range []*track{c.active, c.next} {
		if t != nil {
			errs = append(errs, t.slot.Close())
		}
	}
	c.active, c.next = nil, nil
	return errors.Join(errs...)
}

// Active is the slot being played, nil between tracks.
func (c *Coordinator) Active() *decoder.Slot {
	if c.active == nil {
		return nil
	}
	return c.active.slot
}

// ActivePath is the path of the track being played.
func (c *Coordinator) ActivePath() string {
	if c.active == nil {
		return ""
	}
	return c.active.path
}

// Next is the pre-buffered slot, nil if none is open yet.
func (c *Coordinator) Next() *decoder.Slot {
	if c.next == nil {
		return nil
	}
	return c.next.slot
}

// Rate is the output rate every track is decoded or resampled to.
func (c *Coordinator) Rate() int { return c.rate }

// Pulled is the frames handed out since Play, gap silence included.
func (c *Coordinator) Pulled() uint64 { return c.pulled }

// Late counts handoffs where the next track had nothing decoded.
func (c *Coordinator) Late() int { return c.late }

// Idle reports whether nothing is playing or waiting to play.
func (c *Coordinator) Idle() bool { return c.idle() }

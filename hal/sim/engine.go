// SPDX-License-Identifier: EPL-2.0

package sim

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/ik5/audcore/hal"
)

// region is one DMA allocation. cpu is what software sees through the data
// cache, mem is what the DMA engine reads.
type region struct {
	cpu []byte
	mem []byte

	// Both views at the time the region was armed.
	snapCPU []byte
	snap    []byte
}

// Stats counts what the simulated hardware observed.
type Stats struct {
	// Completed transfers.
	Completed int
	// Overwrites are CPU writes into the buffer being drained.
	Overwrites int
	// Stale counts buffers armed while their cache lines were dirty, so the
	// DAC played something other than what software wrote.
	Stale int
	// Unacked counts interrupts raised while the previous one was pending.
	Unacked int
}

type Options struct {
	// Rates the DAC accepts; empty accepts any.
	Rates []int
	// MemoryLimit caps AllocDMA, 0 for no limit.
	MemoryLimit int
	// Capture records every drained buffer for Played.
	Capture bool
}

// Engine simulates a DMA controller, a DAC and its control port. Software
// runs against it as on hardware; the test plays the hardware by calling
// Complete, from any goroutine.
type Engine struct {
	opts Options

	// irq is held while the interrupt handler runs. Control calls made from
	// outside the handler take it too, so they never interleave with one,
	// as on a single CPU where the handler preempts everything else.
	irq sync.Mutex

	mu       sync.Mutex
	regions  []*region
	used     int
	armed    *region
	paused   bool
	fiq      func()
	pending  bool
	rate     int
	bits     int
	channels int
	volL     float64
	volR     float64
	stats    Stats
	played   []byte
}

func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

var (
	_ hal.Output       = (*Engine)(nil)
	_ hal.CodecControl = (*Engine)(nil)
)

func (e *Engine) AllocDMA(size int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opts.MemoryLimit > 0 && e.used+size > e.opts.MemoryLimit {
		return nil, fmt.Errorf("%w: %d + %d > %d", hal.ErrNoDMAMemory, e.used, size, e.opts.MemoryLimit)
	}
	// Fresh DMA memory holds garbage, not zeros.
	r := &region{
		cpu:     bytes.Repeat([]byte{0xA5}, size),
		mem:     bytes.Repeat([]byte{0xA5}, size),
		snapCPU: make([]byte, size),
		snap:    make([]byte, size),
	}
	e.regions = append(e.regions, r)
	e.used += size
	return r.cpu, nil
}

func (e *Engine) Configure(rate, bits, channels int) error {
	if err := e.SetSampleRate(rate); err != nil {
		return err
	}
	if bits != 16 && bits != 24 {
		return fmt.Errorf("%w: %d bits", hal.ErrFormatUnsupported, bits)
	}
	if channels != 2 {
		return fmt.Errorf("%w: %d channels", hal.ErrFormatUnsupported, channels)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.bits, e.channels = bits, channels
	return nil
}

func (e *Engine) SetSampleRate(rate int) error {
	if rate <= 0 || (len(e.opts.Rates) > 0 && !slices.Contains(e.opts.Rates, rate)) {
		return fmt.Errorf("%w: %d Hz", hal.ErrRateUnsupported, rate)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rate = rate
	return nil
}

func (e *Engine) SetVolumeHw(leftDb, rightDb float64) error {
	if leftDb > 6 || rightDb > 6 {
		return fmt.Errorf("%w: %g/%g dB", hal.ErrVolumeRange, leftDb, rightDb)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volL, e.volR = leftDb, rightDb
	return nil
}

// find returns the region buf starts in.
func (e *Engine) find(buf []byte) *region {
	if len(buf) == 0 {
		return nil
	}
	for _, r := range e.regions {
		if &r.cpu[0] == &buf[0] {
			return r
		}
	}
	return nil
}

func (e *Engine) ArmDMA(buf []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.find(buf)
	if r == nil {
		panic("sim: ArmDMA on memory not from AllocDMA")
	}
	if !bytes.Equal(r.cpu, r.mem) {
		e.stats.Stale++
	}
	copy(r.snapCPU, r.cpu)
	copy(r.snap, r.mem)
	e.armed = r
}

func (e *Engine) DisarmDMA() {
	e.irq.Lock()
	defer e.irq.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.armed = nil
	e.pending = false
}

func (e *Engine) PauseDMA() {
	e.irq.Lock()
	defer e.irq.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
}

func (e *Engine) ResumeDMA() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = false
}

func (e *Engine) RegisterFIQ(handler func()) {
	e.irq.Lock()
	defer e.irq.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fiq = handler
}

func (e *Engine) AckInterrupt() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = false
}

func (e *Engine) FlushCache(buf []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r := e.find(buf); r != nil {
		copy(r.mem, buf)
	}
}

// Complete finishes the transfer in flight and raises the interrupt. It
// reports false when no transfer was running (disarmed or paused).
func (e *Engine) Complete() bool {
	e.irq.Lock()
	defer e.irq.Unlock()

	e.mu.Lock()
	r := e.armed
	if r == nil || e.paused {
		e.mu.Unlock()
		return false
	}
	if !bytes.Equal(r.cpu, r.snapCPU) || !bytes.Equal(r.mem, r.snap) {
		e.stats.Overwrites++
	}
	if e.opts.Capture {
		e.played = append(e.played, r.snap...)
	}
	e.stats.Completed++
	e.armed = nil
	if e.pending {
		e.stats.Unacked++
	}
	e.pending = true
	handler := e.fiq
	e.mu.Unlock()

	if handler != nil {
		handler()
	}
	return true
}

// Run completes n transfers, stopping early when nothing is armed.
func (e *Engine) Run(n int) int {
	for i := range n {
		if !e.Complete() {
			return i
		}
	}
	return n
}

// Armed reports whether a transfer is in flight.
func (e *Engine) Armed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.armed != nil
}

// Registered reports whether an interrupt handler is installed.
func (e *Engine) Registered() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fiq != nil
}

func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Format is the configured rate, bit depth and channel count.
func (e *Engine) Format() (rate, bits, channels int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate, e.bits, e.channels
}

// Volume is the last hardware volume set.
func (e *Engine) Volume() (leftDb, rightDb float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volL, e.volR
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Played returns a copy of every buffer drained so far, as the DAC saw it.
func (e *Engine) Played() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.played)
}

// ResetCapture drops the recorded output.
func (e *Engine) ResetCapture() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.played = e.played[:0]
}

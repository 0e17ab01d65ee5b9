// SPDX-License-Identifier: EPL-2.0

package otohal

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audcore/hal"
	"github.com/ik5/audcore/utils"
)

// DefaultBufferSize is the latency oto keeps queued in the host driver.
const DefaultBufferSize = 40 * time.Millisecond

type Options struct {
	BufferSize time.Duration
	Logger     *slog.Logger
}

// Device is a host sound card behind the hal interfaces. The oto player
// pulls bytes through Read; when the armed buffer runs out Read raises the
// interrupt handler on the player's goroutine.
type Device struct {
	opts Options
	log  *slog.Logger

	setup  sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	rate   int
	bits   int
	gain   float64

	// fiq is held while the handler runs. Control calls from outside the
	// handler take it first, so they never interleave with one.
	fiq sync.Mutex

	mu      sync.Mutex
	armed   []byte
	pos     int
	paused  bool
	handler func()
	pending bool
	missed  uint64 // interrupts raised while one was pending
}

var (
	_ hal.Output       = (*Device)(nil)
	_ hal.CodecControl = (*Device)(nil)
)

func New(opts Options) *Device {
	if opts.BufferSize == 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Device{opts: opts, log: opts.Logger, bits: 16, gain: 1}
}

func (d *Device) AllocDMA(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d bytes", hal.ErrNoDMAMemory, size)
	}
	return make([]byte, size), nil
}

// Configure opens the host device. oto allows one context per process, so
// the first call fixes the rate and depth for the life of the Device.
func (d *Device) Configure(rate, bits, channels int) error {
	if channels != 2 {
		return fmt.Errorf("%w: %d channels", hal.ErrFormatUnsupported, channels)
	}
	var format oto.Format
	switch bits {
	case 16:
		format = oto.FormatSignedInt16LE
	case 24:
		format = oto.FormatFloat32LE
	default:
		return fmt.Errorf("%w: %d bits", hal.ErrFormatUnsupported, bits)
	}

	d.setup.Lock()
	defer d.setup.Unlock()

	if d.ctx != nil {
		if rate != d.rate {
			return fmt.Errorf("%w: %d Hz, device is open at %d Hz", hal.ErrRateUnsupported, rate, d.rate)
		}
		if bits != d.bits {
			return fmt.Errorf("%w: %d bits, device is open at %d bits", hal.ErrFormatUnsupported, bits, d.bits)
		}
		return nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       format,
		BufferSize:   d.opts.BufferSize,
	})
	if err != nil {
		return fmt.Errorf("otohal: opening device: %w", err)
	}
	<-ready

	d.mu.Lock()
	d.bits = bits
	d.mu.Unlock()

	d.ctx, d.rate = ctx, rate
	d.player = ctx.NewPlayer(d)
	d.player.SetVolume(d.gain)
	d.player.Play()
	d.log.Info("host audio device open", "rate", rate, "bits", bits, "buffer", d.opts.BufferSize)
	return nil
}

// SetSampleRate accepts only the rate the device is open at.
func (d *Device) SetSampleRate(rate int) error {
	d.setup.Lock()
	defer d.setup.Unlock()

	if rate <= 0 || (d.ctx != nil && rate != d.rate) {
		return fmt.Errorf("%w: %d Hz", hal.ErrRateUnsupported, rate)
	}
	return nil
}

// SetVolumeHw sets the player's output level. The host mixer has a single
// gain, so the louder channel wins; levels above 0 dB are refused.
func (d *Device) SetVolumeHw(leftDb, rightDb float64) error {
	db := max(leftDb, rightDb)
	if db > 0 || math.IsNaN(db) {
		return fmt.Errorf("%w: %.1f dB", hal.ErrVolumeRange, db)
	}

	d.setup.Lock()
	defer d.setup.Unlock()
	d.gain = utils.DbToGain(db)
	if d.player != nil {
		d.player.SetVolume(d.gain)
	}
	return nil
}

func (d *Device) ArmDMA(buf []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.armed, d.pos = buf, 0
}

func (d *Device) DisarmDMA() {
	d.fiq.Lock()
	defer d.fiq.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.armed, d.pos, d.pending = nil, 0, false
}

func (d *Device) PauseDMA() {
	d.fiq.Lock()
	defer d.fiq.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
}

func (d *Device) ResumeDMA() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = false
}

func (d *Device) RegisterFIQ(handler func()) {
	d.fiq.Lock()
	defer d.fiq.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = handler
}

func (d *Device) AckInterrupt() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = false
}

// FlushCache does nothing; host memory is coherent.
func (d *Device) FlushCache([]byte) {}

// Read is the oto player's source. It copies out of the armed buffer,
// converting to the device's sample format, and runs the interrupt handler
// each time a buffer has been consumed. It plays silence while nothing is
// armed or the channel is paused.
func (d *Device) Read(p []byte) (int, error) {
	d.fiq.Lock()
	defer d.fiq.Unlock()

	n := 0
	for n < len(p) {
		d.mu.Lock()
		if d.armed == nil || d.paused {
			d.mu.Unlock()
			break
		}
		c := d.copyOut(p[n:])
		n += c
		d.pos += c
		var handler func()
		if d.pos >= len(d.armed) {
			d.armed, d.pos = nil, 0
			if d.pending {
				d.missed++
			}
			d.pending = true
			handler = d.handler
		}
		d.mu.Unlock()

		if handler != nil {
			handler()
		}
		if c == 0 && handler == nil {
			break
		}
	}
	clear(p[n:])
	return len(p), nil
}

// copyOut moves whole frames from the armed buffer into p.
func (d *Device) copyOut(p []byte) int {
	src := d.armed[d.pos:]
	if d.bits == 16 {
		return copy(p, src)
	}

	// Left-justified 24-bit words become float32 of the same size.
	words := min(len(p), len(src)) / 4
	for i := range words {
		s := int32(binary.LittleEndian.Uint32(src[4*i:]))
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(float32(s)/(1<<31)))
	}
	return words * 4
}

// Missed counts transfers that completed before the previous interrupt was
// acknowledged.
func (d *Device) Missed() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.missed
}

// Close stops the player and suspends the host device.
func (d *Device) Close() error {
	d.RegisterFIQ(nil)
	d.DisarmDMA()

	d.setup.Lock()
	defer d.setup.Unlock()
	if d.player == nil {
		return nil
	}
	err := d.player.Close()
	d.player = nil
	if serr := d.ctx.Suspend(); serr != nil && err == nil {
		err = serr
	}
	return err
}

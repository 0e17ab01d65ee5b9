// SPDX-License-Identifier: EPL-2.0

package gapless

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ik5/audcore/decoder"
)

// LatePolicy decides what Pull does when the active track has ended and
// the next one has nothing decoded yet.
type LatePolicy int

const (
	// LateSilence returns what it has. The DMA layer pads the buffer with
	// silence and counts a starvation; the next refill pulls from the new
	// track as soon as it has frames.
	LateSilence LatePolicy = iota
	// LateStall decodes the next track synchronously inside Pull, up to
	// StallDecodeCalls units, before falling back to LateSilence.
	LateStall
)

func (p LatePolicy) String() string {
	switch p {
	case LateSilence:
		return "silence"
	case LateStall:
		return "stall"
	}
	return fmt.Sprintf("LatePolicy(%d)", int(p))
}

// ParseLatePolicy reads a policy name as written in configuration files.
func ParseLatePolicy(s string) (LatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "silence":
		return LateSilence, nil
	case "stall":
		return LateStall, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLate, s)
}

const (
	DefaultThreshold          = 2 * time.Second
	DefaultDecodeCallsPerTick = 4
	DefaultStallDecodeCalls   = 8
)

type Options struct {
	// Threshold is the time left in the active track below which the next
	// queued track is opened and pre-buffered.
	Threshold time.Duration
	// Gap is silence inserted between tracks, zero for gapless playback.
	Gap time.Duration
	// DecodeCallsPerTick bounds the codec units decoded per slot per Tick.
	DecodeCallsPerTick int
	Policy             LatePolicy
	StallDecodeCalls   int
	// Slot configures the decoder slots; OutputRate is set per track.
	Slot   decoder.Options
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.DecodeCallsPerTick <= 0 {
		o.DecodeCallsPerTick = DefaultDecodeCallsPerTick
	}
	if o.StallDecodeCalls <= 0 {
		o.StallDecodeCalls = DefaultStallDecodeCalls
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Slot.Logger == nil {
		o.Slot.Logger = o.Logger
	}
	return o
}

func (o Options) validate() error {
	if o.Threshold < 0 || o.Gap < 0 {
		return ErrNegativeTime
	}
	if o.Policy != LateSilence && o.Policy != LateStall {
		return fmt.Errorf("%w: %d", ErrUnknownLate, o.Policy)
	}
	return nil
}

// frames converts d to frames at rate.
func frames(d time.Duration, rate int) int64 {
	return int64(d) * int64(rate) / int64(time.Second)
}

// SPDX-License-Identifier: EPL-2.0

package dsp

import "fmt"

const (
	// MaxGainDb bounds equalizer and bass gains.
	MaxGainDb = 18
	// MaxWidth is the widest stereo image; 1 leaves it untouched, 0 is mono.
	MaxWidth = 2

	// MuteDb and anything below it silences a channel.
	MuteDb = -96

	DefaultRampMs   = 20
	DefaultBassFreq = 100
)

// Band is one peaking equalizer band.
type Band struct {
	Freq   float64 // center, Hz
	GainDb float64
	Q      float64
}

// Config selects the chain stages. Zero values disable a stage.
type Config struct {
	EQ []Band

	BassGainDb float64
	BassFreq   float64 // shelf corner, Hz

	// Width scales the side signal; 0 is treated as 1 (unchanged). Use
	// Mono to collapse the image.
	Width float64
	Mono  bool

	// RampMs is the volume ramp length.
	RampMs float64

	// OutputBits is the DAC word size, 16 or 24.
	OutputBits int
	// NoDither turns the dither stage off even when output is truncated.
	NoDither bool
}

// DefaultConfig is a transparent chain for a 16-bit DAC.
func DefaultConfig() Config {
	return Config{
		BassFreq:   DefaultBassFreq,
		Width:      1,
		RampMs:     DefaultRampMs,
		OutputBits: 16,
	}
}

func (c Config) withDefaults() Config {
	if c.BassFreq <= 0 {
		c.BassFreq = DefaultBassFreq
	}
	if c.Width == 0 && !c.Mono {
		c.Width = 1
	}
	if c.Mono {
		c.Width = 0
	}
	if c.RampMs < 0 {
		c.RampMs = 0
	}
	if c.OutputBits == 0 {
		c.OutputBits = 16
	}
	return c
}

// Validate checks ranges. Band frequencies above the Nyquist limit of the
// running rate are not an error; they are pulled below it at design time.
func (c Config) Validate() error {
	for i, b := range c.EQ {
		if b.Freq <= 0 || b.Q <= 0 {
			return fmt.Errorf("%w: band %d: freq %g, q %g", ErrInvalidBand, i, b.Freq, b.Q)
		}
		if b.GainDb < -MaxGainDb || b.GainDb > MaxGainDb {
			return fmt.Errorf("%w: band %d: %g dB", ErrInvalidGain, i, b.GainDb)
		}
	}
	if c.BassGainDb < -MaxGainDb || c.BassGainDb > MaxGainDb {
		return fmt.Errorf("%w: bass %g dB", ErrInvalidGain, c.BassGainDb)
	}
	if c.Width < 0 || c.Width > MaxWidth {
		return fmt.Errorf("%w: %g", ErrInvalidWidth, c.Width)
	}
	switch c.OutputBits {
	case 0, 16, 24:
	default:
		return fmt.Errorf("%w: %d", ErrOutputBits, c.OutputBits)
	}
	return nil
}

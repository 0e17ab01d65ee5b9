// SPDX-License-Identifier: EPL-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audcore/decoder"
	"github.com/ik5/audcore/dma"
	"github.com/ik5/audcore/dsp"
	"github.com/ik5/audcore/gapless"
	"github.com/ik5/audcore/player"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Log     Log     `yaml:"log"`
	Output  Output  `yaml:"output"`
	DMA     DMA     `yaml:"dma"`
	Decoder Decoder `yaml:"decoder"`
	Gapless Gapless `yaml:"gapless"`
	DSP     DSP     `yaml:"dsp"`
}

type Log struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
}

type Output struct {
	// BitDepth is the DAC word size, 16 or 24. Dither follows from it.
	BitDepth int `yaml:"bit_depth"`
	// FallbackRate is used when the DAC cannot run at a track's rate.
	FallbackRate   int  `yaml:"fallback_rate"`
	HardwareVolume bool `yaml:"hardware_volume"`
	// HostBufferMs is the host driver latency for the oto output.
	HostBufferMs int `yaml:"host_buffer_ms"`
}

type DMA struct {
	Buffers      int `yaml:"buffers"`
	BufferFrames int `yaml:"buffer_frames"`
}

type Decoder struct {
	RingFrames int `yaml:"ring_frames"`
}

type Gapless struct {
	ThresholdMs        int    `yaml:"threshold_ms"`
	GapMs              int    `yaml:"gap_ms"`
	DecodeCallsPerTick int    `yaml:"decode_calls_per_tick"`
	LatePolicy         string `yaml:"late_policy"`
	StallDecodeCalls   int    `yaml:"stall_decode_calls"`
}

type Band struct {
	Freq   float64 `yaml:"freq"`
	GainDb float64 `yaml:"gain_db"`
	Q      float64 `yaml:"q"`
}

type Bass struct {
	GainDb float64 `yaml:"gain_db"`
	Freq   float64 `yaml:"freq"`
}

type Volume struct {
	LeftDb  float64 `yaml:"left_db"`
	RightDb float64 `yaml:"right_db"`
	RampMs  float64 `yaml:"ramp_ms"`
}

type DSP struct {
	EQ     []Band  `yaml:"eq"`
	Bass   Bass    `yaml:"bass"`
	Width  float64 `yaml:"width"`
	Mono   bool    `yaml:"mono"`
	Volume Volume  `yaml:"volume"`
	Dither bool    `yaml:"dither"`
}

// Default is the configuration used for anything a file leaves out.
func Default() *Config {
	return &Config{
		Log: Log{Level: "info"},
		Output: Output{
			BitDepth:     16,
			FallbackRate: player.DefaultFallbackRate,
			HostBufferMs: 40,
		},
		DMA: DMA{
			Buffers:      dma.DefaultBuffers,
			BufferFrames: dma.DefaultBufferFrames,
		},
		Decoder: Decoder{RingFrames: decoder.DefaultRingFrames},
		Gapless: Gapless{
			ThresholdMs:        int(gapless.DefaultThreshold / time.Millisecond),
			DecodeCallsPerTick: gapless.DefaultDecodeCallsPerTick,
			LatePolicy:         gapless.LateSilence.String(),
			StallDecodeCalls:   gapless.DefaultStallDecodeCalls,
		},
		DSP: DSP{
			Bass:   Bass{Freq: dsp.DefaultBassFreq},
			Width:  1,
			Volume: Volume{RampMs: dsp.DefaultRampMs},
			Dither: true,
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	if c.Output.BitDepth != 16 && c.Output.BitDepth != 24 {
		return fmt.Errorf("%w: output.bit_depth %d, want 16 or 24", ErrInvalid, c.Output.BitDepth)
	}
	if c.Output.FallbackRate <= 0 {
		return fmt.Errorf("%w: output.fallback_rate %d", ErrInvalid, c.Output.FallbackRate)
	}
	if c.Output.HostBufferMs < 0 {
		return fmt.Errorf("%w: output.host_buffer_ms %d", ErrInvalid, c.Output.HostBufferMs)
	}
	if c.DMA.Buffers < 2 || c.DMA.Buffers > 32 {
		return fmt.Errorf("%w: dma.buffers %d, want 2 to 32", ErrInvalid, c.DMA.Buffers)
	}
	if c.DMA.BufferFrames <= 0 {
		return fmt.Errorf("%w: dma.buffer_frames %d", ErrInvalid, c.DMA.BufferFrames)
	}
	if c.Decoder.RingFrames < c.DMA.BufferFrames {
		return fmt.Errorf("%w: decoder.ring_frames %d is smaller than one DMA buffer", ErrInvalid, c.Decoder.RingFrames)
	}
	if c.Gapless.ThresholdMs < 0 || c.Gapless.GapMs < 0 {
		return fmt.Errorf("%w: gapless durations must not be negative", ErrInvalid)
	}
	if _, err := gapless.ParseLatePolicy(c.Gapless.LatePolicy); err != nil {
		return fmt.Errorf("%w: gapless.late_policy: %w", ErrInvalid, err)
	}
	if err := c.DSPConfig().Validate(); err != nil {
		return fmt.Errorf("%w: dsp: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	return l, nil
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	l, err := c.level()
	if err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// DSPConfig is the chain configuration. Volume is applied separately
// through the player.
func (c *Config) DSPConfig() dsp.Config {
	cfg := dsp.Config{
		BassGainDb: c.DSP.Bass.GainDb,
		BassFreq:   c.DSP.Bass.Freq,
		Width:      c.DSP.Width,
		Mono:       c.DSP.Mono,
		RampMs:     c.DSP.Volume.RampMs,
		OutputBits: c.Output.BitDepth,
		NoDither:   !c.DSP.Dither,
	}
	for _, b := range c.DSP.EQ {
		cfg.EQ = append(cfg.EQ, dsp.Band{Freq: b.Freq, GainDb: b.GainDb, Q: b.Q})
	}
	return cfg
}

func (c *Config) DMAOptions(log *slog.Logger) dma.Options {
	return dma.Options{
		Buffers:      c.DMA.Buffers,
		BufferFrames: c.DMA.BufferFrames,
		Logger:       log,
	}
}

func (c *Config) GaplessOptions(log *slog.Logger) (gapless.Options, error) {
	policy, err := gapless.ParseLatePolicy(c.Gapless.LatePolicy)
	if err != nil {
		return gapless.Options{}, err
	}
	return gapless.Options{
		Threshold:          time.Duration(c.Gapless.ThresholdMs) * time.Millisecond,
		Gap:                time.Duration(c.Gapless.GapMs) * time.Millisecond,
		DecodeCallsPerTick: c.Gapless.DecodeCallsPerTick,
		Policy:             policy,
		StallDecodeCalls:   c.Gapless.StallDecodeCalls,
		Slot: decoder.Options{
			RingFrames: c.Decoder.RingFrames,
			Logger:     log,
		},
		Logger: log,
	}, nil
}

// PlayerOptions assembles everything a player.Player needs.
func (c *Config) PlayerOptions(log *slog.Logger) (player.Options, error) {
	g, err := c.GaplessOptions(log)
	if err != nil {
		return player.Options{}, err
	}
	return player.Options{
		DSP:            c.DSPConfig(),
		DMA:            c.DMAOptions(log),
		Gapless:        g,
		FallbackRate:   c.Output.FallbackRate,
		HardwareVolume: c.Output.HardwareVolume,
		Logger:         log,
	}, nil
}

// HostBuffer is the oto driver latency.
func (c *Config) HostBuffer() time.Duration {
	return time.Duration(c.Output.HostBufferMs) * time.Millisecond
}

// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"errors"
	"slices"
	"testing"

	"github.com/ik5/audcore/audio"
)

func TestChain_Transparent(t *testing.T) {
	t.Parallel()

	c, err := NewChain(Config{OutputBits: 24}, 44100)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	if got := c.Stages(); len(got) != 0 {
		t.Fatalf("Stages() = %v, want none", got)
	}

	buf := make([]audio.Frame, 64)
	for i := range buf {
		buf[i] = audio.Frame{L: int32(i * 1000), R: -int32(i * 999)}
	}
	want := slices.Clone(buf)
	c.Process(buf)
	if !slices.Equal(buf, want) {
		t.Error("Process() changed frames with every stage disabled")
	}
}

func TestChain_StageOrder(t *testing.T) {
	t.Parallel()

	c, err := NewChain(Config{
		EQ:         []Band{{Freq: 1000, GainDb: 2, Q: 1}},
		BassGainDb: 3,
		Width:      1.5,
		OutputBits: 16,
	}, 44100)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	c.SetVolume(-3, -3)

	want := []string{StageEQ, StageBass, StageWidth, StageVolume, StageDither}
	if got := c.Stages(); !slices.Equal(got, want) {
		t.Errorf("Stages() = %v, want %v", got, want)
	}
}

func TestChain_DitherTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		srcBits int
		want    bool
	}{
		{"16-bit source, 16-bit dac, flat", Config{OutputBits: 16}, 16, false},
		{"24-bit source, 16-bit dac", Config{OutputBits: 16}, 24, true},
		{"16-bit source, 16-bit dac, bass", Config{OutputBits: 16, BassGainDb: 2}, 16, true},
		{"24-bit dac never dithers", Config{OutputBits: 24, BassGainDb: 2}, 24, false},
		{"disabled", Config{OutputBits: 16, NoDither: true}, 24, false},
		{"8-bit source", Config{OutputBits: 16}, 8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewChain(tt.cfg, 44100)
			if err != nil {
				t.Fatalf("NewChain() error = %v", err)
			}
			c.SetSourceBits(tt.srcBits)
			if got := slices.Contains(c.Stages(), StageDither); got != tt.want {
				t.Errorf("dither active = %v, want %v (stages %v)", got, tt.want, c.Stages())
			}
		})
	}
}

func TestChain_DitherFollowsVolume(t *testing.T) {
	t.Parallel()

	c, err := NewChain(Config{OutputBits: 16, RampMs: 1}, 48000)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	c.SetSourceBits(16)
	c.SetVolume(-10, -10)
	if !slices.Contains(c.Stages(), StageDither) {
		t.Errorf("Stages() = %v, want dither with attenuation on a 16-bit dac", c.Stages())
	}
}

func TestDither_Bounds(t *testing.T) {
	t.Parallel()

	c, err := NewChain(Config{OutputBits: 16}, 44100)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	c.SetSourceBits(24)

	buf := make([]audio.Frame, 20000)
	c.Process(buf)

	var sum int64
	nonzero := 0
	for i, f := range buf {
		for _, v := range []int32{f.L, f.R} {
			if v <= -256 || v >= 256 {
				t.Fatalf("frame %d noise = %d, want within one 16-bit LSB", i, v)
			}
			if v != 0 {
				nonzero++
			}
			sum += int64(v)
		}
	}
	if nonzero < len(buf) {
		t.Errorf("nonzero samples = %d, want most of %d", nonzero, 2*len(buf))
	}
	if mean := float64(sum) / float64(2*len(buf)); mean < -5 || mean > 5 {
		t.Errorf("noise mean = %.2f, want about 0", mean)
	}
}

func TestWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cfg   Config
		in    audio.Frame
		want  audio.Frame
		stage bool
	}{
		{"unchanged", Config{Width: 1}, audio.Frame{L: 1000, R: -200}, audio.Frame{L: 1000, R: -200}, false},
		{"mono", Config{Mono: true}, audio.Frame{L: 1000, R: -200}, audio.Frame{L: 400, R: 400}, true},
		{"wide", Config{Width: 2}, audio.Frame{L: 1000, R: -200}, audio.Frame{L: 1600, R: -800}, true},
		{"mono source stays mono", Config{Width: 2}, audio.Frame{L: 500, R: 500}, audio.Frame{L: 500, R: 500}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.cfg.OutputBits = 24
			c, err := NewChain(tt.cfg, 44100)
			if err != nil {
				t.Fatalf("NewChain() error = %v", err)
			}
			if got := slices.Contains(c.Stages(), StageWidth); got != tt.stage {
				t.Errorf("width stage = %v, want %v", got, tt.stage)
			}
			buf := []audio.Frame{tt.in}
			c.Process(buf)
			if buf[0] != tt.want {
				t.Errorf("Process(%v) = %v, want %v", tt.in, buf[0], tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"default", DefaultConfig(), nil},
		{"zero band freq", Config{EQ: []Band{{Freq: 0, GainDb: 3, Q: 1}}}, ErrInvalidBand},
		{"zero q", Config{EQ: []Band{{Freq: 100, GainDb: 3}}}, ErrInvalidBand},
		{"band gain", Config{EQ: []Band{{Freq: 100, GainDb: 30, Q: 1}}}, ErrInvalidGain},
		{"bass gain", Config{BassGainDb: -40}, ErrInvalidGain},
		{"width", Config{Width: 3}, ErrInvalidWidth},
		{"bits", Config{OutputBits: 20}, ErrOutputBits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := tt.cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := NewChain(DefaultConfig(), 0); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("NewChain(rate 0) error = %v, want ErrInvalidRate", err)
	}
}

func TestChain_ProcessAllocs(t *testing.T) {
	c, err := NewChain(Config{
		EQ:         []Band{{Freq: 1000, GainDb: 3, Q: 1}},
		BassGainDb: 2,
		OutputBits: 16,
	}, 44100)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	c.SetVolume(-3, -3)
	buf := make([]audio.Frame, 512)
	c.Process(buf)

	allocs := testing.AllocsPerRun(100, func() {
		c.Process(buf)
	})
	if allocs != 0 {
		t.Fatalf("Process() allocs/op = %.2f, want 0", allocs)
	}
}

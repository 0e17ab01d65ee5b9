// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"testing"

	"github.com/ik5/audcore/audio"
)

// toneGainDb plays a steady tone through c and returns the measured gain in
// dB, ignoring the first 200 ms while the filters settle.
func toneGainDb(c *Chain, freq float64) float64 {
	rate := c.SampleRate()
	total := rate
	settle := rate / 5
	amp := float64(audio.MaxSample) / 4

	var in, out float64
	buf := make([]audio.Frame, 512)
	for start := 0; start < total; start += len(buf) {
		n := min(len(buf), total-start)
		for i := range n {
			v := int32(math.Round(amp * math.Sin(2*math.Pi*freq*float64(start+i)/float64(rate))))
			buf[i] = audio.Frame{L: v, R: v}
		}
		ref := make([]audio.Frame, n)
		copy(ref, buf[:n])
		c.Process(buf[:n])
		for i := range n {
			if start+i < settle {
				continue
			}
			in += float64(ref[i].L) * float64(ref[i].L)
			out += float64(buf[i].L) * float64(buf[i].L)
		}
	}
	return 10 * math.Log10(out/in)
}

// curveDb is the configured response at freq: the product of the ideal
// band responses.
func curveDb(cfg Config, rate, freq float64) float64 {
	g := 1.0
	for _, b := range cfg.EQ {
		g *= peaking(rate, b.Freq, b.GainDb, b.Q).response(rate, freq)
	}
	if cfg.BassGainDb != 0 {
		g *= lowShelf(rate, cfg.BassFreq, cfg.BassGainDb).response(rate, freq)
	}
	return 20 * math.Log10(g)
}

func TestEQ_RateChange(t *testing.T) {
	t.Parallel()

	cfg := Config{
		EQ: []Band{
			{Freq: 250, GainDb: -3, Q: 0.7},
			{Freq: 1000, GainDb: 6, Q: 1},
			{Freq: 4000, GainDb: 4, Q: 1.4},
		},
		OutputBits: 24,
	}
	c, err := NewChain(cfg, 44100)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	for _, rate := range []int{44100, 48000} {
		if err := c.SetSampleRate(rate); err != nil {
			t.Fatalf("SetSampleRate(%d) error = %v", rate, err)
		}
		got := toneGainDb(c, 1000)
		want := curveDb(cfg, float64(rate), 1000)
		if math.Abs(got-want) > 0.1 {
			t.Errorf("gain at 1 kHz, %d Hz = %.3f dB, want %.3f dB", rate, got, want)
		}
		if math.Abs(want-6) > 1 {
			t.Errorf("curve at 1 kHz = %.2f dB, want about 6 dB", want)
		}
	}
}

func TestEQ_StaleCoefficients(t *testing.T) {
	t.Parallel()

	cfg := Config{EQ: []Band{{Freq: 8000, GainDb: 9, Q: 2}}, OutputBits: 24}
	c, err := NewChain(cfg, 44100)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	before := *c.eq[0]

	if err := c.SetSampleRate(48000); err != nil {
		t.Fatalf("SetSampleRate() error = %v", err)
	}
	after := c.eq[0]
	if before.b1 == after.b1 && before.a2 == after.a2 {
		t.Fatal("SetSampleRate() kept the 44100 Hz coefficients")
	}

	// The 44100 Hz design would be off by a wide margin at 48000 Hz.
	stale := before.design.response(48000, 8000)
	if math.Abs(20*math.Log10(stale)-9) < 0.5 {
		t.Errorf("stale design at 48 kHz = %.2f dB, want clearly off 9 dB", 20*math.Log10(stale))
	}
	if got := toneGainDb(c, 8000); math.Abs(got-9) > 0.15 {
		t.Errorf("gain at 8 kHz after rate change = %.3f dB, want 9 dB", got)
	}
}

func TestEQ_HistoryReset(t *testing.T) {
	t.Parallel()

	c, err := NewChain(Config{EQ: []Band{{Freq: 1000, GainDb: 6, Q: 1}}, OutputBits: 24}, 44100)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	toneGainDb(c, 1000)
	if err := c.SetSampleRate(48000); err != nil {
		t.Fatalf("SetSampleRate() error = %v", err)
	}
	if h := c.eq[0].l; h != (history{}) {
		t.Errorf("history after SetSampleRate = %+v, want zero", h)
	}
}

func TestLowShelf(t *testing.T) {
	t.Parallel()

	cfg := Config{BassGainDb: 6, BassFreq: 100, OutputBits: 24}
	c, err := NewChain(cfg, 48000)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	low := 20 * math.Log10(c.bass.design.response(48000, 20))
	high := 20 * math.Log10(c.bass.design.response(48000, 5000))
	if math.Abs(low-6) > 0.5 {
		t.Errorf("shelf at 20 Hz = %.2f dB, want 6 dB", low)
	}
	if math.Abs(high) > 0.1 {
		t.Errorf("shelf at 5 kHz = %.2f dB, want 0 dB", high)
	}
	if got, want := toneGainDb(c, 5000), curveDb(cfg, 48000, 5000); math.Abs(got-want) > 0.1 {
		t.Errorf("measured shelf at 5 kHz = %.3f dB, want %.3f dB", got, want)
	}
}

func TestEQ_BandAboveNyquist(t *testing.T) {
	t.Parallel()

	c, err := NewChain(Config{EQ: []Band{{Freq: 30000, GainDb: 3, Q: 1}}, OutputBits: 24}, 44100)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	buf := make([]audio.Frame, 1024)
	for i := range buf {
		buf[i] = audio.Frame{L: int32(i%64) << 16, R: -int32(i%64) << 16}
	}
	c.Process(buf)
	for i, f := range buf {
		if f.L > headroomMax || f.L < headroomMin {
			t.Fatalf("frame %d = %v, outside headroom", i, f)
		}
	}
}

func BenchmarkChain_EQ(b *testing.B) {
	c, err := NewChain(Config{
		EQ:         []Band{{Freq: 60, GainDb: 3, Q: 1}, {Freq: 1000, GainDb: -2, Q: 1}, {Freq: 10000, GainDb: 4, Q: 1}},
		BassGainDb: 4,
		OutputBits: 16,
	}, 44100)
	if err != nil {
		b.Fatal(err)
	}
	buf := make([]audio.Frame, 1024)
	for b.Loop() {
		c.Process(buf)
	}
}

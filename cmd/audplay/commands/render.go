// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/dsp"
	"github.com/ik5/audcore/formats/wav"
	"github.com/ik5/audcore/hal/sim"
	"github.com/ik5/audcore/player"
)

// maxTransfers bounds a render so a stuck pipeline cannot loop forever.
const maxTransfers = 1 << 24

var renderCmd = &cobra.Command{
	Use:   "render <file>... <out.wav>",
	Short: "Render files on simulated hardware into a WAV file",
	Long: `Run the files through the whole core on simulated hardware and
write what the DAC would have played to a stereo WAV file at the DAC's
bit depth.

With --rate the simulated DAC only accepts that rate, so tracks at any
other rate go through the fallback path and are resampled.

Example:
  audplay render --rate 48000 a.mp3 b.flac both.wav`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, err := cmd.Flags().GetInt("rate")
		if err != nil {
			return fmt.Errorf("failed to read 'rate' flag: %w", err)
		}
		in, outPath := args[:len(args)-1], args[len(args)-1]

		opts := sim.Options{Capture: true}
		if rate > 0 {
			opts.Rates = []int{rate}
			cfg.Output.FallbackRate = rate
		}
		hw := sim.New(opts)

		out := cmd.OutOrStdout()
		p, err := newPlayer(hw, hw, out)
		if err != nil {
			return err
		}
		if err := start(p, out, in); err != nil {
			return err
		}
		for range maxTransfers {
			p.Tick()
			if p.State() == player.Stopped {
				break
			}
			hw.Complete()
		}
		if p.State() != player.Stopped {
			p.Stop()
			return fmt.Errorf("render did not finish after %d transfers", maxTransfers)
		}

		return writeCapture(hw, outPath)
	},
}

// writeCapture writes what hw played at the DAC's word size.
func writeCapture(hw *sim.Engine, path string) error {
	rate, bits, _ := hw.Format()
	raw := hw.Played()
	frames := make([]audio.Frame, len(raw)/dsp.FrameBytes(bits))
	n, err := dsp.Decode(frames, raw, bits)
	if err != nil {
		return fmt.Errorf("failed to decode capture: %w", err)
	}

	shift := audio.InternalBits - bits
	pcm := make([]int32, 0, 2*n)
	for _, f := range frames[:n] {
		pcm = append(pcm, f.L>>shift, f.R>>shift)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := wav.Encode(f, rate, 2, bits, pcm); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info("rendered", "path", path, "frames", n, "rate", rate, "dac_bits", bits)
	return nil
}

func init() {
	renderCmd.Flags().Int("rate", 0, "only sample rate the simulated DAC accepts")
	rootCmd.AddCommand(renderCmd)
}

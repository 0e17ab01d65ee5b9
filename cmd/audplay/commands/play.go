// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audcore/hal/otohal"
	"github.com/ik5/audcore/player"
)

var playCmd = &cobra.Command{
	Use:   "play <file>...",
	Short: "Play files through the sound card",
	Long: `Play the files in order with no gap between them.

The sound card is opened at the first track's sample rate and stays
there; later tracks at other rates are resampled. Press Ctrl-C to stop.

Example:
  audplay play --volume -6 side-a/*.flac`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tick, err := cmd.Flags().GetDuration("tick")
		if err != nil {
			return fmt.Errorf("failed to read 'tick' flag: %w", err)
		}
		if cmd.Flags().Changed("volume") {
			db, err := cmd.Flags().GetFloat64("volume")
			if err != nil {
				return fmt.Errorf("failed to read 'volume' flag: %w", err)
			}
			cfg.DSP.Volume.LeftDb, cfg.DSP.Volume.RightDb = db, db
		}

		dev := otohal.New(otohal.Options{BufferSize: cfg.HostBuffer(), Logger: log})
		defer dev.Close()

		out := cmd.OutOrStdout()
		p, err := newPlayer(dev, dev, out)
		if err != nil {
			return err
		}
		if err := start(p, out, args); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return loop(ctx, p, tick)
	},
}

// loop ticks the player until playback ends or ctx is done.
func loop(ctx context.Context, p *player.Player, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()

	for p.State() != player.Stopped {
		select {
		case <-ctx.Done():
			p.Stop()
			return nil
		case <-t.C:
			p.Tick()
		}
	}
	log.Info("playback finished",
		"position_ms", p.PositionMs(),
		"underruns", p.UnderrunCount(),
		"starvations", p.Stats().Starvations)
	if err := p.LastError(); err != nil {
		log.Warn("some tracks were skipped", "last_error", err)
	}
	return nil
}

func init() {
	playCmd.Flags().Float64("volume", 0, "volume in dB, overrides the file")
	playCmd.Flags().Duration("tick", 2*time.Millisecond, "main loop period")
	rootCmd.AddCommand(playCmd)
}

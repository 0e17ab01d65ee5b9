// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ik5/audcore/config"
)

var (
	// Global flags
	configPath string
	logLevel   string
	verbose    bool

	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "audplay",
	Short: "Play and render audio through the playback core",
	Long: `audplay - run the audio playback core on a desktop.

Tracks are decoded, processed by the DSP chain and fed through the DMA
buffer ring exactly as on the player hardware. 'play' sends the result
to the sound card, 'render' captures it from simulated hardware into a
WAV file.

Settings come from a YAML file (see 'audplay config' for every key).

Examples:
  # Play an album without gaps
  audplay play 01.flac 02.flac 03.flac

  # Render at 48 kHz through a 24-bit DAC with a bass boost
  audplay -c boost.yaml render --rate 48000 song.mp3 out.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML settings file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides the file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "same as --log-level debug")
}

func loadConfig() error {
	c := config.Default()
	if configPath != "" {
		var err error
		if c, err = config.Load(configPath); err != nil {
			return err
		}
	}
	switch {
	case verbose:
		c.Log.Level = "debug"
	case logLevel != "":
		c.Log.Level = logLevel
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	cfg = c
	log = cfg.Logger(os.Stderr)
	return nil
}

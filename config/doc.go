// SPDX-License-Identifier: EPL-2.0

/*
Package config loads the YAML settings file used by the audplay command
and maps it onto the option structs of the dsp, dma, gapless and player
packages.

A file only needs the keys it changes; everything else keeps the value
from Default. Unknown keys are rejected so typos do not go unnoticed:

	log:
	  level: debug
	output:
	  bit_depth: 24
	  fallback_rate: 48000
	  hardware_volume: true
	dma:
	  buffers: 3
	  buffer_frames: 1024
	decoder:
	  ring_frames: 16384
	gapless:
	  threshold_ms: 2000
	  gap_ms: 0
	  late_policy: silence   # or stall
	dsp:
	  eq:
	    - {freq: 60, gain_db: 2, q: 0.7}
	  bass: {gain_db: 3, freq: 100}
	  width: 1.2
	  volume: {left_db: -6, right_db: -6, ramp_ms: 20}
	  dither: true

Use it like this:

	cfg, err := config.Load("audcore.yaml")
	if err != nil {
		return err
	}
	log := cfg.Logger(os.Stderr)
	opts, err := cfg.PlayerOptions(log)

Every value is checked by Validate; failures wrap ErrInvalid.
*/
package config

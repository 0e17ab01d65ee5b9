// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audcore"
	"github.com/ik5/audcore/gapless"
	"github.com/ik5/audcore/hal"
	"github.com/ik5/audcore/player"
	"github.com/ik5/audcore/storage"
)

// newPlayer builds a player on out from the global configuration and
// reports track changes to w.
func newPlayer(out hal.Output, ctl hal.CodecControl, w io.Writer) (*player.Player, error) {
	opts, err := cfg.PlayerOptions(log)
	if err != nil {
		return nil, err
	}
	p, err := player.New(out, ctl, audcore.DefaultRegistry(), storage.DirFS("."), opts)
	if err != nil {
		return nil, err
	}
	p.SetVolume(cfg.DSP.Volume.LeftDb, cfg.DSP.Volume.RightDb)
	p.OnEvent(func(e gapless.Event) {
		switch e.Kind {
		case gapless.TrackStarted:
			fmt.Fprintf(w, "> %s\n", e.Path)
		case gapless.TrackFailed:
			fmt.Fprintf(w, "! %s: %v\n", e.Path, e.Err)
		}
	})
	return p, nil
}

// start plays the first file that loads and queues the rest behind it.
func start(p *player.Player, w io.Writer, files []string) error {
	var errs []error
	for i, f := range files {
		if err := p.LoadAndPlay(f); err != nil {
			fmt.Fprintf(w, "! %v\n", err)
			errs = append(errs, err)
			continue
		}
		for _, next := range files[i+1:] {
			p.Enqueue(next)
		}
		return nil
	}
	return fmt.Errorf("nothing to play: %w", errors.Join(errs...))
}

// SPDX-License-Identifier: EPL-2.0

// Package player is the playback engine as the rest of the firmware sees
// it: load a track, queue more, pause, resume, stop, set the volume and ask
// where playback is.
//
// A Player ties together the gapless.Coordinator (decoding and track
// changes), the dsp.Chain and the dma.Pipeline that feeds a hal.Output.
// It owns no goroutine. The application's main loop calls Tick once per
// iteration, and Tick does all the decoding, DMA refilling and event
// delivery:
//
//	p, err := player.New(out, codec, registry, files, player.Options{})
//	if err != nil {
//	    return err
//	}
//	p.OnEvent(func(e gapless.Event) { ui.Show(e) })
//	if err := p.LoadAndPlay("/music/01.flac"); err != nil {
//	    ui.CannotPlay(err)
//	}
//	p.Enqueue("/music/02.flac")
//	for {
//	    p.Tick()
//	    ...
//	}
//
// # States
//
//	Stopped --LoadAndPlay--> Playing <--Pause/Resume--> Paused
//	Playing --DMA ran dry--> Underrun --next refill plays--> Playing
//	any     --Stop, or the queue played out--> Stopped
//
// LoadAndPlay is a track skip: it stops, then starts the new track. Queued
// tracks survive it; Stop clears the queue.
//
// # Sample Rates
//
// The output is configured for the first track's rate. If the output
// refuses it with hal.ErrRateUnsupported, the track is reopened resampled
// to Options.FallbackRate. Tracks that follow through the queue are
// resampled to whatever rate the output is running at.
//
// # Errors
//
// A track that cannot start returns a *LoadError wrapping the decoder or
// HAL error, so errors.Is(err, audio.ErrUnsupportedFormat) and friends work
// on it. Tracks that fail later, while queued or mid-play, are skipped;
// their error is available from LastError and as a TrackFailed event.
// Underruns are never errors: UnderrunCount reports them.
package player

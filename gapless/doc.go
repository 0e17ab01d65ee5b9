// SPDX-License-Identifier: EPL-2.0

// Package gapless joins tracks into one uninterrupted frame stream.
//
// A Coordinator holds at most two decoder slots: the active track and the
// next one. Tick, called once per main-loop iteration, decodes a bounded
// number of units into the active slot and, once the active track has
// less than Threshold left (or has already hit its end, for streams of
// unknown length), opens the next queued track and decodes into its ring
// as well. The two decodes interleave on the main loop; nothing runs in
// parallel.
//
// Pull is the DMA layer's source. It reads the active ring and, when that
// track's last frame has been taken, switches to the next ring inside the
// same call, so the frame after the last frame of one track is the first
// frame of the next. An optional Gap inserts silence at the boundary.
//
//	c, _ := gapless.New(registry, catalog, gapless.Options{})
//	slot, err := c.Open("/music/01.flac", 0)
//	...
//	c.Play("/music/01.flac", slot)
//	c.Enqueue("/music/02.flac")
//	pipeline.Start(c) // *Coordinator is a dma.PullSource
//
// Tracks after the first are decoded at the first track's output rate,
// resampling where their own rate differs, since the DAC keeps running
// across the boundary.
//
// # Late Tracks
//
// When the active track ends before anything of the next one has been
// decoded, the Policy decides:
//
//   - LateSilence (the default) returns short. The DMA layer pads the
//     buffer with silence and counts one starvation, and the next refill
//     picks up the new track as soon as Tick has decoded some of it.
//   - LateStall decodes up to StallDecodeCalls units of the next track
//     inside Pull. This keeps the boundary seamless on slow storage at
//     the risk of the refill arriving late, which the DMA layer covers
//     with its silence buffer instead.
//
// # Errors
//
// A fatal decode error drops the failing track, including frames already
// in its ring, and playback moves on to the next track. Tracks that fail to
// open are skipped the same way. Each failure is reported as a TrackFailed
// Event; TrackStarted and TrackEnded events carry the frame index at which
// they become audible, counted in frames handed out by Pull.
package gapless

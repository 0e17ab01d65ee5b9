// SPDX-License-Identifier: EPL-2.0

// Package decoder turns a file into a stream of stereo frames held in a
// ring buffer.
//
// A Slot is one open track. Open sniffs the codec through an
// audio.Registry, opens the codec stream on a storage.File and allocates
// the slot's ring:
//
//	slot, err := decoder.Open(registry, "/music/a.flac", file, decoder.Options{})
//	if err != nil {
//	    // errors.Is(err, audio.ErrUnsupportedFormat), audio.ErrCorruptHeader
//	    // or audio.ErrIO
//	}
//	defer slot.Close()
//
// The main loop then alternates between filling and draining it:
//
//	for !slot.Full() {
//	    _, err := slot.DecodeNext()
//	    ...
//	}
//	n := slot.Read(frames)
//
// Each DecodeNext makes at most one codec call, so the cost of a call is
// bounded by one codec unit: one WAV or AIFF chunk, one MP3 or AAC frame,
// one FLAC block or one batch of Vorbis packets. Codec dispatch happens once
// per call through the audio.Stream interface.
//
// # Sample Format
//
// Frames in the ring are audio.Frame values at audio.InternalBits. Mono
// sources are duplicated to both channels and wider layouts folded to
// stereo by audio.ChannelMapper.
//
// # Resampling
//
// When Options.OutputRate differs from the stream's rate the slot runs the
// stream through audio.Resampler, and Total, Remaining and Rate are all
// expressed at the output rate. A resampling slot produces about one codec
// unit of output per DecodeNext.
//
// # Errors
//
// audio.ErrCorruptFrame from a codec whose Resync policy is
// audio.ResyncAtSyncWord is counted and passed on; the next DecodeNext
// continues after the damage. Corrupt frames from other codecs, and any
// storage failure, stop the slot: every later call returns the same error.
package decoder

// SPDX-License-Identifier: EPL-2.0

// Package vorbis opens Ogg Vorbis files as an audio.Stream, decoding through
// github.com/jfreymuth/oggvorbis.
//
// Any channel count and sample rate is accepted; the audio package folds
// the channels to stereo and the decoder slot resamples when needed.
// Length comes from the last granule position, so it is exact.
//
// oggvorbis produces float32. The stream quantizes it to 24-bit integers,
// the internal precision of the pipeline, and reports a BitDepth of 24.
// One DecodeNext call decodes at most one packet and returns up to 1024
// frames.
//
// A file without an identification header fails Open with ErrNotVorbisFile,
// which wraps audio.ErrCorruptHeader. A packet that fails to decode is an
// audio.ErrCorruptFrame. Ogg page recovery is not attempted, so Resync is
// audio.ResyncNone and such a frame ends the track.
package vorbis

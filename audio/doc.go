// SPDX-License-Identifier: EPL-2.0

// Package audio holds the types every other package agrees on: the stereo
// Frame, the Stream a codec opens, the codec Registry, and the readers that
// turn a Stream into frames at a chosen rate.
//
// # Frames
//
// A Frame is one stereo sample pair in signed fixed point with InternalBits
// (24) bits of precision, held in an int32:
//
//	MinSample = -1 << 23    full scale negative
//	MaxSample = 1<<23 - 1   full scale positive
//
// Codecs hand out interleaved int32 samples at their native bit depth; a
// ChannelMapper scales them to 24 bits and folds any channel layout into
// stereo. Mono is duplicated. Wider layouts average the even channels into
// the left side and the odd ones into the right.
//
// # Streams and Codecs
//
// A Codec opens a Stream from an io.ReadSeeker after checking the header.
// DecodeNext returns one codec unit of samples per call (a WAV chunk, an
// MP3 frame, a FLAC frame) and reports:
//
//	ErrEndOfStream    nothing follows, possibly together with the last samples
//	ErrCorruptFrame   a unit was dropped; call again if the codec resyncs
//	ErrIO             the medium failed
//
// Open reports ErrUnsupportedFormat, ErrCorruptHeader or ErrIO. Recoverable
// tells whether an error can be skipped under the codec's ResyncPolicy.
//
// # Registry
//
// The Registry maps tags to codecs and file extensions to tags:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{}, "wave")
//	reg.Register("mp3", mp3.Decoder{})
//	tag, codec, err := reg.Detect("/music/track", file)
//
// Detect skips a leading ID3v2 tag, asks every codec that implements Prober
// about the first bytes in registration order and falls back to the
// extension.
//
// # Readers
//
// StreamReader adapts a Stream to a FrameReader, decoding at most one unit
// per call. Resampler wraps any FrameReader and converts it to another
// sample rate with cubic interpolation, low-pass filtering the input when
// the rate goes down:
//
//	r := audio.NewResampler(audio.NewStreamReader(stream), 48000, 44100)
//	n, err := r.ReadFrames(frames)
package audio

// SPDX-License-Identifier: EPL-2.0

// Package flac provides FLAC (Free Lossless Audio Codec) decoding.
//
// This package uses github.com/mewkiz/flac for the bitstream: frame headers,
// fixed and LPC prediction, Rice-coded residuals and the per-frame CRCs.
//
// # Decoding FLAC Files
//
//	file, _ := os.Open("audio.flac")
//	stream, err := flac.Decoder{}.Open(file)
//	if err != nil {
//	    // Handle error
//	}
//	samples, err := stream.DecodeNext()
//
// Every DecodeNext call decodes one FLAC frame and returns its block of
// samples interleaved, at the stream's bit depth (anything from 4 to 32
// bits).
//
// # Error Handling
//
//   - ErrNotFlacFile wraps audio.ErrCorruptHeader
//   - ErrUnsupportedBitDepth wraps audio.ErrUnsupportedFormat
//
// A frame that fails to parse or whose CRC does not match is reported as
// audio.ErrCorruptFrame. Resync reports audio.ResyncNone: the pipeline ends
// the track instead of hunting for the next frame header.
package flac

// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to parse AIFF files and
// exposes them as an audio.Stream.
//
// # Supported Formats
//
// Currently supported:
//   - AIFF and uncompressed AIFF-C
//   - 8, 16, 24 and 32 bits per sample
//   - Any channel count and sample rate
//
// # Decoding AIFF Files
//
//	file, _ := os.Open("audio.aif")
//	stream, err := aiff.Decoder{}.Open(file)
//	if err != nil {
//	    // Handle error
//	}
//	samples, err := stream.DecodeNext()
//
// Every DecodeNext call reads one chunk of up to 1024 frames from the SSND
// chunk, interleaved and at the file's native bit depth.
//
// # Error Handling
//
//   - ErrNotAiffFile, ErrUnsupportedAiffLayout wrap audio.ErrCorruptHeader
//   - ErrUnsupportedBitDepth wraps audio.ErrUnsupportedFormat
//
// AIFF has no sync points: Resync reports audio.ResyncNone and a read
// failure in the sound data ends the track.
//
// # AIFF vs. WAV
//
// AIFF is similar to WAV but:
//   - Uses big-endian byte order (WAV uses little-endian)
//   - Stores sample rate as 80-bit float (WAV uses 32-bit int)
//   - Both are uncompressed PCM formats
//
// # File Extensions
//
// AIFF files typically use .aif, .aiff or .aifc.
package aiff

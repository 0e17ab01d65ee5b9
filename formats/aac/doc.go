// SPDX-License-Identifier: EPL-2.0

// Package aac provides AAC decoding from ADTS streams (.aac files).
//
// Framing is done here: Scanner splits the input into ADTS frames, skipping a
// leading ID3v2 tag and a trailing ID3v1 tag, and resynchronizes after a
// damaged stretch on the next sync word that is followed by another
// compatible frame header. Each accepted frame is handed to
// github.com/llehouerou/go-aac, a pure Go AAC-LC decoder.
//
// # Decoding
//
//	stream, err := aac.Decoder{}.Open(file)
//	if err != nil {
//	    // Handle error
//	}
//	for {
//	    samples, err := stream.DecodeNext()
//	    if errors.Is(err, audio.ErrEndOfStream) {
//	        break
//	    }
//	    if audio.Recoverable(err, aac.Decoder{}.Resync()) {
//	        continue
//	    }
//	    ...
//	}
//
// Output is 16-bit interleaved PCM, one ADTS frame (1024 frames per raw
// data block) per DecodeNext call. The decoder's first frame only fills the
// overlap-add history and yields an empty unit.
//
// # Error Handling
//
//   - ErrNoFrames wraps audio.ErrCorruptHeader
//   - ErrLostSync wraps audio.ErrCorruptFrame and is recoverable
//
// ADTS does not record a duration, so Length reports 0.
package aac

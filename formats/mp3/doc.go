// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// Frame synchronization is done by this package's Scanner; the frames it
// accepts are handed one at a time to github.com/hajimehoshi/go-mp3 for
// Huffman decoding, requantization and the IMDCT.
//
// # Supported Formats
//
// The decoder supports:
//   - MPEG-1 and MPEG-2 Audio Layer III
//   - Constant and variable bitrates
//   - Optional CRC-16 protection, verified per frame
//   - Leading ID3v2 and trailing ID3v1 tags
//
// # Decoding MP3 Files
//
//	file, _ := os.Open("audio.mp3")
//	stream, err := mp3.Decoder{}.Open(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	for {
//	    samples, err := stream.DecodeNext()
//	    if errors.Is(err, audio.ErrEndOfStream) {
//	        break
//	    }
//	    if audio.Recoverable(err, mp3.Decoder{}.Resync()) {
//	        continue // one damaged frame was dropped
//	    }
//	    // ...
//	}
//
// Every DecodeNext call decodes exactly one frame: 1152 stereo frames for
// MPEG-1, 576 for MPEG-2.
//
// # Output Format
//
// MP3 decoder output:
//   - Sample format: 16-bit signed, interleaved
//   - Channels: 2 (mono files are duplicated by go-mp3)
//   - Sample rate: from the first frame header
//
// # Resynchronization
//
// A frame whose header is invalid, or whose CRC does not match, is reported
// as a wrapped audio.ErrCorruptFrame (ErrLostSync or ErrBadCRC). The scanner
// then sits on the next sync word whose frame is followed by another valid,
// compatible header, so decoding continues with only the damaged frame lost.
//
// # Limitations
//
//   - MPEG-2.5 and Layers I/II are rejected (go-mp3 only decodes Layer III)
//   - Length is estimated from the first frame, exact only for CBR files
package mp3

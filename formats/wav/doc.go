// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Decoding is built on github.com/go-audio/wav and produces an audio.Stream
// that hands out one chunk of interleaved PCM per DecodeNext call.
//
// # Supported Formats
//
// Currently supported:
//   - Integer PCM (format tag 1, or WAVE_FORMAT_EXTENSIBLE)
//   - 8, 16, 24 and 32 bits per sample
//   - Any channel count and sample rate
//
// # Decoding WAV Files
//
// Use the Decoder to open a WAV file:
//
//	file, _ := os.Open("audio.wav")
//	stream, err := wav.Decoder{}.Open(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	for {
//	    samples, err := stream.DecodeNext()
//	    if errors.Is(err, audio.ErrEndOfStream) {
//	        break
//	    }
//	    // samples are interleaved, at stream.Format().BitDepth scale
//	}
//
// 8-bit WAV data is stored unsigned; the stream re-centres it so all depths
// come out signed.
//
// # Writing WAV Files
//
// Encode writes 16 or 24-bit PCM through github.com/go-audio/wav. It needs
// an io.WriteSeeker because the chunk sizes are patched at the end:
//
//	file, _ := os.Create("capture.wav")
//	err := wav.Encode(file, 44100, 2, 24, samples)
//
// # Error Handling
//
// The package errors wrap the audio package taxonomy so callers can match
// either level:
//   - ErrNotWavFile, ErrUnsupportedWavChunks: audio.ErrCorruptHeader
//   - ErrUnsupportedEncoding, ErrUnsupportedBitDepth: audio.ErrUnsupportedFormat
//
// Read failures inside the data chunk surface as audio.ErrCorruptFrame. WAV
// has no sync points, so Resync reports audio.ResyncNone and the pipeline
// ends the track on such an error.
//
// # File Format
//
// WAV files consist of:
//   - RIFF header (12 bytes)
//   - fmt chunk: audio format, sample rate, channels, bit depth
//   - data chunk: actual audio samples
package wav

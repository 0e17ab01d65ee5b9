// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const encodeChunk = 8192

// Encode writes interleaved PCM samples as a WAV file. Samples are at depth
// bits (16 or 24, the DAC word sizes), right-justified in their int32. The header sizes
// are patched on completion, which is why w must seek.
func Encode(w io.WriteSeeker, rate, channels, depth int, samples []int32) error {
	switch depth {
	case 16, 24:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}
	if channels < 1 || len(samples)%channels != 0 {
		return fmt.Errorf("wav: %d samples do not split into %d channels", len(samples), channels)
	}

	enc := wav.NewEncoder(w, rate, depth, channels, formatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		SourceBitDepth: depth,
		Data:           make([]int, 0, min(len(samples), encodeChunk)),
	}
	// The header goes out with the first write, so even an empty file gets one.
	for start := 0; start == 0 || start < len(samples); start += encodeChunk {
		buf.Data = buf.Data[:0]
		for _, s := range samples[start:min(start+encodeChunk, len(samples))] {
			buf.Data = append(buf.Data, int(s))
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("wav: write: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: finish: %w", err)
	}
	return nil
}

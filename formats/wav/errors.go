// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"

	"github.com/ik5/audcore/audio"
)

var (
	ErrNotWavFile           = fmt.Errorf("%w: not a WAV file", audio.ErrCorruptHeader)
	ErrUnsupportedWavChunks = fmt.Errorf("%w: no WAV data chunk", audio.ErrCorruptHeader)
	ErrUnsupportedEncoding  = fmt.Errorf("%w: only integer PCM WAV is supported", audio.ErrUnsupportedFormat)
	ErrUnsupportedBitDepth  = fmt.Errorf("%w: unsupported WAV bit depth", audio.ErrUnsupportedFormat)
)

// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"

	"github.com/ik5/audcore/audio"
)

var (
	// ErrNotFlacFile indicates the input has no FLAC stream header
	ErrNotFlacFile = fmt.Errorf("%w: not a FLAC file", audio.ErrCorruptHeader)

	// ErrUnsupportedBitDepth indicates a sample size above 32 bits
	ErrUnsupportedBitDepth = fmt.Errorf("%w: unsupported FLAC bit depth", audio.ErrUnsupportedFormat)
)

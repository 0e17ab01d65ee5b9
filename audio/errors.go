// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// Fatal to the track when opening.
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCorruptHeader     = errors.New("corrupt header")
	ErrIO                = errors.New("i/o error")

	// Returned by Stream.DecodeNext.
	ErrCorruptFrame = errors.New("corrupt frame")
	ErrEndOfStream  = errors.New("end of stream")
)

// Recoverable reports whether err may be skipped over under policy p.
func Recoverable(err error, p ResyncPolicy) bool {
	return p == ResyncAtSyncWord && errors.Is(err, ErrCorruptFrame)
}

// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"

	"github.com/ik5/audcore/audio"
)

var (
	// ErrNoFrames indicates no MPEG Layer III frame was found near the
	// start of the input
	ErrNoFrames = fmt.Errorf("%w: no MP3 frames found", audio.ErrCorruptHeader)

	// ErrBadCRC marks a frame whose CRC-16 does not match its header and
	// side info
	ErrBadCRC = fmt.Errorf("%w: CRC mismatch", audio.ErrCorruptFrame)

	// ErrLostSync marks bytes skipped while looking for the next frame
	ErrLostSync = fmt.Errorf("%w: lost frame sync", audio.ErrCorruptFrame)
)

// SPDX-License-Identifier: EPL-2.0

package aac

import (
	"fmt"

	"github.com/ik5/audcore/audio"
)

var (
	// ErrNoFrames indicates no ADTS frame was found near the start of the input
	ErrNoFrames = fmt.Errorf("%w: no ADTS frames found", audio.ErrCorruptHeader)

	// ErrLostSync reports bytes skipped to reach the next ADTS frame
	ErrLostSync = fmt.Errorf("%w: lost ADTS sync", audio.ErrCorruptFrame)
)

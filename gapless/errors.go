// SPDX-License-Identifier: EPL-2.0

package gapless

import "errors"

var (
	ErrNoTrack      = errors.New("gapless: no track playing")
	ErrInvalidRate  = errors.New("gapless: invalid output rate")
	ErrUnknownLate  = errors.New("gapless: unknown late policy")
	ErrNegativeTime = errors.New("gapless: durations must not be negative")
)

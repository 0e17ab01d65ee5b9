// SPDX-License-Identifier: EPL-2.0

package dsp

import "errors"

var (
	ErrInvalidRate   = errors.New("dsp: sample rate must be positive")
	ErrInvalidBand   = errors.New("dsp: invalid equalizer band")
	ErrInvalidGain   = errors.New("dsp: gain out of range")
	ErrInvalidWidth  = errors.New("dsp: stereo width out of range")
	ErrOutputBits    = errors.New("dsp: output bit depth must be 16 or 24")
	ErrShortDst      = errors.New("dsp: destination buffer too small")
	ErrUnalignedData = errors.New("dsp: data is not a whole number of frames")
)

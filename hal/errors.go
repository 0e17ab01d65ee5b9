// SPDX-License-Identifier: EPL-2.0

package hal

import "errors"

var (
	ErrRateUnsupported   = errors.New("hal: sample rate not supported")
	ErrFormatUnsupported = errors.New("hal: sample format not supported")
	ErrNoDMAMemory       = errors.New("hal: out of DMA memory")
	ErrVolumeRange       = errors.New("hal: volume out of range")
)

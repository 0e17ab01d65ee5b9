// SPDX-License-Identifier: EPL-2.0

package dma

import "errors"

var (
	ErrRunning     = errors.New("dma: pipeline already running")
	ErrBufferCount = errors.New("dma: buffer count must be between 2 and 32")
	ErrBufferSize  = errors.New("dma: buffer frames must be positive")
)

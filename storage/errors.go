// SPDX-License-Identifier: EPL-2.0

package storage

import (
	"errors"
	"io"
)

var (
	ErrIO          = errors.New("storage: read failed")
	ErrOutOfRange  = errors.New("storage: block out of range")
	ErrNotFound    = errors.New("storage: file not found")
	ErrClosed      = errors.New("storage: file closed")
	ErrInvalidSeek = errors.New("storage: invalid seek")
)

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
)

var ErrOutputBitsBusy = errors.New("player: output depth cannot change while playing")

// LoadError reports a track that could not be started.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("player: cannot play %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

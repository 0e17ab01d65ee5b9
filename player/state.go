// SPDX-License-Identifier: EPL-2.0

package player

import "fmt"

type State int

const (
	Stopped State = iota
	Playing
	Paused
	// Underrun is Playing while the DAC is fed silence because refills
	// have fallen behind.
	Underrun
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Underrun:
		return "underrun"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// SPDX-License-Identifier: EPL-2.0

package gapless

import "fmt"

type EventKind int

const (
	TrackStarted EventKind = iota
	TrackEnded
	TrackFailed
)

func (k EventKind) String() string {
	switch k {
	case TrackStarted:
		return "started"
	case TrackEnded:
		return "ended"
	case TrackFailed:
		return "failed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a track boundary. Frame is the index, in frames handed out by
// Pull, at which it takes effect: the first frame of a started track, one
// past the last frame of an ended one. Failures take effect immediately.
type Event struct {
	Kind  EventKind
	Path  string
	Frame uint64
	Err   error
}

func (e Event) String() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s at %d: %v", e.Kind, e.Path, e.Frame, e.Err)
	}
	return fmt.Sprintf("%s %s at %d", e.Kind, e.Path, e.Frame)
}

package aveplay

import (
	"fmt"
	"strings"
)

// LoopMode decides what happens when the target position leaves
// the [0, duration) range.
type LoopMode uint8

const (
	// NoLoop stops playback at either end: the player goes to [Stopped]
	// and rewinds to the start.
	NoLoop LoopMode = iota
	// Loop wraps around to the other end of the media.
	Loop
	// LoopBidirectional reflects the position at the boundary and flips
	// the playback direction.
	LoopBidirectional
)

func (m LoopMode) String() string {
	switch m {
	case NoLoop:
		return "none"
	case Loop:
		return "loop"
	case LoopBidirectional:
		return "bidirectional"
	default:
		return "unknown"
	}
}

// ParseLoopMode accepts the names returned by [LoopMode.String].
func ParseLoopMode(name string) (LoopMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "noloop", "once":
		return NoLoop, nil
	case "loop":
		return Loop, nil
	case "bidirectional", "bidi", "pingpong":
		return LoopBidirectional, nil
	default:
		return NoLoop, fmt.Errorf("unknown loop mode %q", name)
	}
}

// Direction is the sign applied to elapsed time while playing.
type Direction int8

const (
	Forward  Direction = 1
	Backward Direction = -1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ParseDirection accepts "forward" or "backward" (and their first letter).
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "forward", "f", "":
		return Forward, nil
	case "backward", "b", "reverse":
		return Backward, nil
	default:
		return Forward, fmt.Errorf("unknown direction %q", name)
	}
}

// normalize maps any value to Forward or Backward by its sign.
func (d Direction) normalize() Direction {
	if d < 0 {
		return Backward
	}
	return Forward
}

package aveplay

import "math"

// timeToFrame returns the index of the frame shown at timeMs. It must stay
// a pure function of its inputs: the fetch cycle uses it to decide whether
// a decode is needed at all.
func timeToFrame(timeMs, fps float64) int64 {
	if fps <= 0 {
		return 0
	}
	return int64(math.Floor(timeMs / 1000.0 * fps))
}

// frameToTime is the inverse of timeToFrame: the start time of the frame.
func frameToTime(frame int64, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frame) / fps * 1000.0
}

// truncMod is a - trunc(a/b)*b. The result takes the sign of a.
func truncMod(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a - math.Trunc(a/b)*b
}

// boundary reports what advanceTarget had to do at the edges of the media.
type boundary uint8

const (
	boundaryNone boundary = iota
	boundaryWrapped
	boundaryReflected
	boundaryEnded
)

// advanceTarget moves target by deltaMs scaled by speed and direction and
// resolves positions outside [0, durationMs) according to mode. It returns
// the new target and direction.
func advanceTarget(target, deltaMs, speed float64, dir Direction, durationMs float64, mode LoopMode) (float64, Direction, boundary) {
	target += deltaMs * math.Abs(speed) * float64(dir.normalize())
	if durationMs <= 0 {
		return 0, dir, boundaryNone
	}
	if target >= 0 && target < durationMs {
		return target, dir, boundaryNone
	}

	switch mode {
	case Loop:
		wrapped := truncMod(target, durationMs)
		if wrapped < 0 {
			wrapped += durationMs
		}
		return clampTarget(wrapped, durationMs), dir, boundaryWrapped
	case LoopBidirectional:
		if target < 0 {
			target = math.Abs(target)
			dir = Forward
		} else {
			target = durationMs + (durationMs - target)
			dir = Backward
		}
		return clampTarget(target, durationMs), dir, boundaryReflected
	default:
		return clampTarget(target, durationMs), dir, boundaryEnded
	}
}

// clampTarget forces target into [0, durationMs). Values past the end land
// just below durationMs so they still map to the last frame.
func clampTarget(target, durationMs float64) float64 {
	if target < 0 {
		return 0
	}
	if target >= durationMs {
		return math.Nextafter(durationMs, 0)
	}
	return target
}

package aveplay

// SeekCapability records whether direct seeks work on the open source.
// It is discovered lazily and only ever moves towards [NotSeekable].
type SeekCapability uint8

const (
	SeekUnknown SeekCapability = iota
	Seekable
	NotSeekable
)

func (c SeekCapability) String() string {
	switch c {
	case SeekUnknown:
		return "unknown"
	case Seekable:
		return "seekable"
	case NotSeekable:
		return "not seekable"
	default:
		return "invalid"
	}
}

// Returns whether a direct seek should still be attempted.
func (c SeekCapability) CanSeek() bool { return c != NotSeekable }

// confirm is applied after a successful seek and decode.
func (c SeekCapability) confirm() SeekCapability {
	if c == SeekUnknown {
		return Seekable
	}
	return c
}

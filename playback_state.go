package aveplay

// Playback state of a [Player]. Transport operations ([Player.Play],
// [Player.Pause], [Player.Stop]) and the update cycle (end of stream,
// fatal decode errors) are the only things that change it.
type PlaybackState uint8

// Returns a string representation of the playback state
// ("Closed", "Opened", "Playing", "Paused", "Stopped", "Eof", "Error", "Unknown").
func (s PlaybackState) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Opened:
		return "Opened"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Stopped:
		return "Stopped"
	case Eof:
		return "Eof"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Returns whether the player holds an open source in this state.
func (s PlaybackState) IsOpen() bool {
	return s != Closed && s != Error
}

const (
	Closed PlaybackState = iota // no source, before Open or after Close
	Opened
	Playing
	Paused
	Stopped
	Eof
	Error
)

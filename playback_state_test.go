package aveplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaybackState_String(t *testing.T) {
	assert.Equal(t, "Closed", PlaybackState(0).String())
	assert.Equal(t, "Playing", Playing.String())
	assert.Equal(t, "Eof", Eof.String())
	assert.Equal(t, "Unknown", PlaybackState(42).String())
}

func TestPlaybackState_IsOpen(t *testing.T) {
	for _, s := range []PlaybackState{Opened, Playing, Paused, Stopped, Eof} {
		assert.True(t, s.IsOpen(), s.String())
	}
	assert.False(t, Closed.IsOpen())
	assert.False(t, Error.IsOpen())
}

func TestParseLoopMode(t *testing.T) {
	tests := map[string]LoopMode{
		"none":          NoLoop,
		"Once":          NoLoop,
		"loop":          Loop,
		" LOOP ":        Loop,
		"bidirectional": LoopBidirectional,
		"pingpong":      LoopBidirectional,
	}
	for name, want := range tests {
		got, err := ParseLoopMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLoopMode("sometimes")
	assert.Error(t, err)

	for _, mode := range []LoopMode{NoLoop, Loop, LoopBidirectional} {
		got, err := ParseLoopMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}
}

func TestParseDirection(t *testing.T) {
	for name, want := range map[string]Direction{"": Forward, "forward": Forward, "b": Backward, "reverse": Backward} {
		got, err := ParseDirection(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestDirection_Normalize(t *testing.T) {
	assert.Equal(t, Forward, Direction(0).normalize())
	assert.Equal(t, Forward, Direction(5).normalize())
	assert.Equal(t, Backward, Direction(-3).normalize())
}

func TestSeekCapability(t *testing.T) {
	assert.True(t, SeekUnknown.CanSeek())
	assert.True(t, Seekable.CanSeek())
	assert.False(t, NotSeekable.CanSeek())
	assert.Equal(t, Seekable, SeekUnknown.confirm())
	assert.Equal(t, NotSeekable, NotSeekable.confirm())
	assert.Equal(t, "not seekable", NotSeekable.String())
}

package aveplay

import "errors"

// Errors returned by [Player.Open]. Backend errors are wrapped, so use
// errors.Is to match them.
var (
	ErrOpenFailed          = errors.New("media could not be opened")
	ErrNoStreamInfo        = errors.New("media stream information not found")
	ErrNoStreams           = errors.New("media has neither a video nor an audio stream")
	ErrDecoderInit         = errors.New("stream decoder could not be initialized")
	ErrFrameBufferTooLarge = errors.New("frame buffer exceeds the configured limit")
)

// Errors returned by the remaining player operations.
var (
	ErrNotOpen           = errors.New("player has no open media")
	ErrRewindFailed      = errors.New("source could not be rewound to the first frame")
	ErrBackgroundRunning = errors.New("background decoding is already running")
)

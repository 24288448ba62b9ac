package aveplay

import "time"

// frame rates above this are treated as bogus codec time bases
const maxPlausibleFps = 100

// MediaInfo describes an open media file. It's derived once when the
// file is opened and doesn't change afterwards.
type MediaInfo struct {
	Width            int
	Height           int
	Fps              float64
	Bitrate          int // kbit/s
	DurationMs       float64
	DurationInFrames int64
	VideoCodec       string
	AudioCodec       string
	AudioSampleRate  int
	HasVideo         bool
	HasAudio         bool
	IsImage          bool
}

// Returns the media duration.
func (m MediaInfo) Duration() time.Duration {
	return time.Duration(m.DurationMs * float64(time.Millisecond))
}

// Returns the video codec name if there's video, otherwise the audio one.
func (m MediaInfo) CodecName() string {
	if m.HasVideo {
		return m.VideoCodec
	}
	return m.AudioCodec
}

func newMediaInfo(streams StreamIndices, src SourceInfo) MediaInfo {
	info := MediaInfo{
		Bitrate:         int(src.Bitrate / 1000),
		DurationMs:      float64(src.Duration) / float64(time.Millisecond),
		AudioCodec:      src.AudioCodec,
		AudioSampleRate: src.AudioSampleRate,
		HasVideo:        streams.HasVideo(),
		HasAudio:        streams.HasAudio(),
	}
	if info.DurationMs < 0 {
		info.DurationMs = 0
	}
	if !info.HasVideo {
		return info
	}

	info.Width = src.Width
	info.Height = src.Height
	info.VideoCodec = src.VideoCodec
	if src.FrameRateNum > 0 && src.FrameRateDen > 0 {
		info.Fps = float64(src.FrameRateNum) / float64(src.FrameRateDen)
	}
	// some codecs report their tick rate instead of the frame rate
	if info.Fps > maxPlausibleFps && src.FrameCount > 0 && info.DurationMs > 0 {
		info.Fps = float64(src.FrameCount) / (info.DurationMs / 1000.0)
	}
	info.DurationInFrames = timeToFrame(info.DurationMs, info.Fps)
	info.IsImage = info.DurationInFrames == 0 || (src.Bitrate == 0 && src.AudioSampleRate == 0)
	return info
}

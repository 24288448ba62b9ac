package ffmpeg

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/erparts/reisen"

	"github.com/erparts/go-aveplay"
)

var _ aveplay.Source = (*source)(nil)

type rewinder interface {
	Rewind(time.Duration) error
}

type source struct {
	// underlying reisen objects
	media *reisen.Media
	video *reisen.VideoStream
	audio *reisen.AudioStream

	// static data
	streams  aveplay.StreamIndices
	fileSize int64

	// open flags, so Close can undo a partial open
	decodeOpen bool
	videoOpen  bool
	audioOpen  bool

	// frames presented before skipUntil are dropped after a seek
	skipUntil   time.Duration
	pendingSkip bool
}

func (s *source) Streams() aveplay.StreamIndices { return s.streams }

func (s *source) Info() (aveplay.SourceInfo, error) {
	var info aveplay.SourceInfo
	var bitrate int64
	var duration time.Duration

	if s.video != nil {
		frNum, frDenom := s.video.FrameRate()
		// still images have no duration, leave it at zero
		videoDuration, err := s.video.Duration()
		if err != nil {
			videoDuration = 0
		}
		info.Width = s.video.Width()
		info.Height = s.video.Height()
		info.FrameRateNum = frNum
		info.FrameRateDen = frDenom
		info.FrameCount = s.video.FrameCount()
		info.VideoCodec = s.video.CodecLongName()
		bitrate += s.video.BitRate()
		duration = videoDuration
	}
	if s.audio != nil {
		audioDuration, err := s.audio.Duration()
		if err != nil {
			return info, fmt.Errorf("audio duration: %w", err)
		}
		info.AudioCodec = s.audio.CodecLongName()
		info.AudioSampleRate = s.audio.SampleRate()
		bitrate += s.audio.BitRate()
		duration = max(duration, audioDuration)
	}

	// containers like matroska leave per-stream bitrates empty
	if bitrate == 0 && duration > 0 && s.fileSize > 0 && info.FrameCount != 1 {
		bitrate = int64(float64(s.fileSize*8) / duration.Seconds())
	}
	info.Bitrate = bitrate
	info.Duration = duration
	return info, nil
}

func (s *source) OpenDecoder(stream int) error {
	if !s.decodeOpen {
		if err := s.media.OpenDecode(); err != nil {
			return err
		}
		s.decodeOpen = true
	}

	switch {
	case s.video != nil && stream == s.video.Index():
		if err := s.video.Open(); err != nil {
			return err
		}
		s.videoOpen = true
	case s.audio != nil && stream == s.audio.Index():
		if err := s.audio.Open(); err != nil {
			return err
		}
		s.audioOpen = true
	default:
		return fmt.Errorf("unknown stream index %d", stream)
	}
	return nil
}

func (s *source) DecodeNext(dst []byte) error {
	if !s.videoOpen {
		return errors.New("video decoder not open")
	}

	for {
		frame, err := s.readVideoFrame()
		if err != nil {
			return err
		}

		if s.pendingSkip {
			presOffset, err := frame.PresentationOffset()
			if err != nil {
				return err
			}
			// seeks land on the previous keyframe, decode up to the target
			if presOffset+s.frameDuration()/2 < s.skipUntil {
				continue
			}
			s.pendingSkip = false
		}

		copy(dst, frame.Data())
		return nil
	}
}

// readVideoFrame reads packets until we come across the next video frame.
// Returns io.EOF when the packets run out.
func (s *source) readVideoFrame() (*reisen.VideoFrame, error) {
	for {
		packet, packetFound, err := s.media.ReadPacket()
		if err != nil {
			return nil, err
		}
		if !packetFound {
			return nil, io.EOF
		}

		if packet.Type() != reisen.StreamVideo || packet.StreamIndex() != s.video.Index() {
			continue
		}
		frame, frameFound, err := s.video.ReadVideoFrame()
		if err != nil {
			return nil, err
		}
		_ = frameFound // frameFound can be true while frame is nil: that's a frame skip
		if frame != nil {
			return frame, nil
		}
	}
}

func (s *source) Seek(stream int, frame int64) error {
	var target rewinder
	switch {
	case s.video != nil && stream == s.video.Index():
		target = s.video
	case s.audio != nil && stream == s.audio.Index():
		target = s.audio
	default:
		return fmt.Errorf("unknown stream index %d", stream)
	}

	position := time.Duration(0)
	if stream == s.streams.Video {
		position = time.Duration(frame) * s.frameDuration()
	}
	if err := target.Rewind(position); err != nil {
		return fmt.Errorf("%w: %w", aveplay.ErrSeekUnsupported, err)
	}
	s.skipUntil = position
	s.pendingSkip = position > 0
	return nil
}

// Close releases everything in reverse allocation order. Steps that were
// never reached are skipped.
func (s *source) Close() error {
	var errs []error
	if s.audioOpen {
		errs = append(errs, s.audio.Close())
		s.audioOpen = false
	}
	if s.videoOpen {
		errs = append(errs, s.video.Close())
		s.videoOpen = false
	}
	if s.decodeOpen {
		errs = append(errs, s.media.CloseDecode())
		s.decodeOpen = false
	}
	if s.media != nil {
		s.media.Close()
		s.media = nil
	}
	return errors.Join(errs...)
}

func (s *source) frameDuration() time.Duration {
	if s.video == nil {
		return 0
	}
	frNum, frDenom := s.video.FrameRate()
	return frameDuration(frNum, frDenom)
}

func frameDuration(frNum, frDenom int) time.Duration {
	if frNum <= 0 || frDenom <= 0 {
		return 0
	}
	return (time.Second * time.Duration(frDenom)) / time.Duration(frNum)
}

package aveplay

import (
	"errors"
	"fmt"
	"io"
)

// preloadedSource serves the video frames of a source from memory. Every
// frame is decoded once on open, so looping and seeking never touch the
// file again. Audio and metadata calls go to the wrapped source.
type preloadedSource struct {
	Source
	video  int
	frames [][]byte
	pos    int
}

// preloadFrames decodes every video frame of src into memory. It gives up
// with errPreloadLimit once the frames would take more than limit bytes.
func preloadFrames(src Source, frameSize int, limit int64) ([][]byte, error) {
	var frames [][]byte
	for {
		if int64(len(frames)+1)*int64(frameSize) > limit {
			return nil, errPreloadLimit
		}
		frame := make([]byte, frameSize)
		err := src.DecodeNext(frame)
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		frames = append(frames, frame)
	}
}

var errPreloadLimit = errors.New("preload limit exceeded")

func (s *preloadedSource) DecodeNext(dst []byte) error {
	if s.pos >= len(s.frames) {
		return io.EOF
	}
	copy(dst, s.frames[s.pos])
	s.pos++
	return nil
}

// Seek never fails for the video stream. Frames past the preloaded ones
// (the stream ended before its declared duration) land on the last one.
func (s *preloadedSource) Seek(stream int, frame int64) error {
	if stream != s.video {
		return s.Source.Seek(stream, frame)
	}
	s.pos = int(min(max(frame, 0), int64(len(s.frames)-1)))
	return nil
}

// noLockPreload replaces the open source with a preloaded one when the
// video fits in the preload limit. Sources that don't fit keep streaming.
func (p *Player) noLockPreload() error {
	size := len(p.buffer)
	if estimate := p.info.DurationInFrames * int64(size); estimate > p.preloadLimit {
		p.log.Warn().
			Int64("estimated_bytes", estimate).
			Int64("limit_bytes", p.preloadLimit).
			Msg("media too large to preload, streaming instead")
		return nil
	}

	frames, err := preloadFrames(p.source, size, p.preloadLimit)
	switch {
	case errors.Is(err, errPreloadLimit):
		p.log.Warn().Int64("limit_bytes", p.preloadLimit).Msg("media too large to preload, streaming instead")
	case err != nil:
		return fmt.Errorf("%w: preloading: %w", ErrOpenFailed, err)
	case len(frames) == 0:
		return fmt.Errorf("%w: preloading: no frames decoded", ErrOpenFailed)
	default:
		p.source = &preloadedSource{Source: p.source, video: p.streams.Video, frames: frames}
		p.seekCap = Seekable
		p.log.Debug().Int("frames", len(frames)).Int("bytes", len(frames)*size).Msg("media preloaded")
		return nil
	}

	// back to the start for streaming
	if err := p.source.Seek(p.streams.Video, 0); err != nil {
		return fmt.Errorf("%w: %w", ErrRewindFailed, err)
	}
	return nil
}

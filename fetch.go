package aveplay

import (
	"errors"
	"fmt"
	"io"
)

// --- frames ---

// Returns the RGBA pixels (width*height*4 bytes) of the frame at the
// current target position, decoding it first if needed. The backend is
// only asked to decode when the target frame differs from the last
// decoded one. Returns nil if the media has no video.
//
// The returned slice is the player's internal buffer: the next fetch
// overwrites it, so copy it out before calling any fetching method again.
// When decoding in the background use [Player.CopyFrame]() instead.
func (p *Player) Frame() ([]byte, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if err := p.noLockFetch(); err != nil {
		return nil, err
	}
	return p.buffer, nil
}

// Like [Player.Frame](), but copies the pixels into dst while the player
// is locked. Returns the number of bytes copied.
func (p *Player) CopyFrame(dst []byte) (int, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if err := p.noLockFetch(); err != nil {
		return 0, err
	}
	return copy(dst, p.buffer), nil
}

// the frame the target time maps to, kept inside the media
func (p *Player) noLockTargetFrame() int64 {
	frame := timeToFrame(p.targetTimeMs, p.info.Fps)
	if last := p.info.DurationInFrames - 1; frame > last {
		frame = last
	}
	return max(frame, 0)
}

// noLockFetch brings the frame buffer to the target frame. Decode and seek
// failures are absorbed: the buffer keeps the last good frame and the seek
// capability is downgraded. Only a failed rewind is returned as an error.
func (p *Player) noLockFetch() error {
	if p.source == nil {
		return ErrNotOpen
	}
	if !p.info.HasVideo {
		return nil
	}
	if p.info.IsImage {
		p.noLockDecodeImage()
		return nil
	}

	target := p.noLockTargetFrame()
	if target == p.currentFrame {
		return nil
	}

	if p.seekCap.CanSeek() {
		if p.noLockDirectSeek(target) {
			return nil
		}
		p.seekCap = NotSeekable
		SeekDowngradesTotal.Inc()
		p.log.Info().Int64("frame", target).Msg("direct seek failed, falling back to forward decoding")
		// the failed attempt left the source at an unknown position
		if err := p.noLockRewind(); err != nil {
			return err
		}
	}
	return p.noLockScan(target)
}

// still images are decoded once and cached for the session
func (p *Player) noLockDecodeImage() {
	if p.imageDecoded {
		return
	}
	if err := p.source.DecodeNext(p.buffer); err != nil {
		DecodeFailuresTotal.WithLabelValues(pathImage).Inc()
		p.log.Warn().Err(err).Msg("decoding image")
		return
	}
	FramesDecodedTotal.WithLabelValues(pathImage).Inc()
	p.imageDecoded = true
	p.currentFrame = 0
	p.currentTimeMs = 0
}

// noLockDirectSeek seeks to target and decodes it. Returns false when
// either step fails.
func (p *Player) noLockDirectSeek(target int64) bool {
	if err := p.source.Seek(p.streams.Video, target); err != nil {
		SeekAttemptsTotal.WithLabelValues("failed").Inc()
		p.log.Debug().Err(err).Int64("frame", target).Msg("seek rejected")
		return false
	}
	if err := p.source.DecodeNext(p.buffer); err != nil {
		SeekAttemptsTotal.WithLabelValues("failed").Inc()
		DecodeFailuresTotal.WithLabelValues(pathDirect).Inc()
		p.log.Debug().Err(err).Int64("frame", target).Msg("decode after seek failed")
		return false
	}
	SeekAttemptsTotal.WithLabelValues("ok").Inc()
	FramesDecodedTotal.WithLabelValues(pathDirect).Inc()
	p.seekCap = p.seekCap.confirm()
	p.currentFrame = target
	p.currentTimeMs = p.targetTimeMs
	return true
}

// noLockScan decodes frames sequentially until target is reached. Going
// backwards means starting over from frame 0: this path is O(target) and
// only used for sources that can't seek.
func (p *Player) noLockScan(target int64) error {
	if target < p.currentFrame {
		if err := p.noLockRewind(); err != nil {
			return err
		}
	}

	for p.currentFrame < target {
		err := p.source.DecodeNext(p.buffer)
		if errors.Is(err, io.EOF) {
			return p.noLockScanEndOfStream()
		}
		if err != nil {
			// keep the last good frame, the next fetch continues from here
			DecodeFailuresTotal.WithLabelValues(pathScan).Inc()
			p.log.Warn().Err(err).Int64("frame", p.currentFrame+1).Msg("decoding frame")
			return nil
		}
		FramesDecodedTotal.WithLabelValues(pathScan).Inc()
		p.currentFrame++
	}
	p.currentTimeMs = p.targetTimeMs
	return nil
}

// noLockScanEndOfStream handles a stream that ended before its declared
// duration. Without looping the player ends on the last decoded frame;
// otherwise it starts over from frame 0.
func (p *Player) noLockScanEndOfStream() error {
	BoundaryEventsTotal.WithLabelValues(p.loopMode.String()).Inc()

	if p.loopMode == NoLoop || p.currentFrame < 0 {
		p.state = Eof
		p.targetTimeMs = max(frameToTime(p.currentFrame, p.info.Fps), 0)
		p.currentTimeMs = p.targetTimeMs
		p.log.Debug().Int64("frame", p.currentFrame).Msg("stream ended before its declared duration")
		return nil
	}

	if err := p.noLockRewind(); err != nil {
		return err
	}
	if err := p.source.DecodeNext(p.buffer); err != nil {
		DecodeFailuresTotal.WithLabelValues(pathScan).Inc()
		p.state = Eof
		p.log.Warn().Err(err).Msg("decoding first frame after wrapping")
		return nil
	}
	FramesDecodedTotal.WithLabelValues(pathScan).Inc()
	p.currentFrame = 0
	p.currentTimeMs = 0
	p.targetTimeMs = 0
	p.log.Debug().Msg("stream ended early, wrapped to the first frame")
	return nil
}

// noLockRewind seeks back to frame 0 and invalidates the position. If even
// that fails the session can't recover and goes to [Error].
func (p *Player) noLockRewind() error {
	if err := p.source.Seek(p.streams.Video, 0); err != nil {
		p.state = Error
		p.log.Error().Err(err).Msg("rewinding source")
		return fmt.Errorf("%w: %w", ErrRewindFailed, err)
	}
	p.currentFrame = -1
	p.currentTimeMs = -1
	return nil
}

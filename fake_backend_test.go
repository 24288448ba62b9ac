package aveplay

import (
	"encoding/binary"
	"errors"
	"io"
	"time"
)

var errNoSuchFile = errors.New("no such file")

// fakeBackend serves scripted sources by path.
type fakeBackend struct {
	sources map[string]*fakeSource
}

func newFakeBackend(sources map[string]*fakeSource) *fakeBackend {
	return &fakeBackend{sources: sources}
}

func (b *fakeBackend) Probe(path string) (Source, error) {
	src, ok := b.sources[path]
	if !ok {
		return nil, errNoSuchFile
	}
	return src, nil
}

// fakeSource decodes frames whose first four bytes hold their index.
type fakeSource struct {
	streams StreamIndices
	info    SourceInfo
	frames  int // frames actually present in the stream

	infoErr       error
	openErr       error
	seekErr       error // returned by every non-zero seek
	seekBreaks    bool  // non-zero seeks succeed but the next decode fails
	rewindErr     error // returned by seeks to frame 0
	failDecodeAt  int   // decoding this index fails once, -1 to disable
	decodeFailErr error

	pos       int
	broken    bool
	decodes   int
	seeks     []int64
	opened    []int
	closed    int
	decodedAt []int
}

// 25 fps, 10 seconds, 4x2 pixels, video and audio
func newVideoSource() *fakeSource {
	return &fakeSource{
		streams: StreamIndices{Video: 0, Audio: 1},
		info: SourceInfo{
			Width:           4,
			Height:          2,
			FrameRateNum:    25,
			FrameRateDen:    1,
			Bitrate:         1_000_000,
			Duration:        10 * time.Second,
			VideoCodec:      "fake video",
			AudioCodec:      "fake audio",
			AudioSampleRate: 48000,
		},
		frames:       250,
		failDecodeAt: -1,
	}
}

func newImageSource() *fakeSource {
	return &fakeSource{
		streams: StreamIndices{Video: 0, Audio: -1},
		info: SourceInfo{
			Width:        4,
			Height:       2,
			FrameRateNum: 25,
			FrameRateDen: 1,
			VideoCodec:   "fake png",
		},
		frames:       1,
		failDecodeAt: -1,
	}
}

func (s *fakeSource) Streams() StreamIndices { return s.streams }

func (s *fakeSource) Info() (SourceInfo, error) { return s.info, s.infoErr }

func (s *fakeSource) OpenDecoder(stream int) error {
	if s.openErr != nil {
		return s.openErr
	}
	s.opened = append(s.opened, stream)
	return nil
}

func (s *fakeSource) DecodeNext(dst []byte) error {
	if s.broken {
		return errors.New("corrupt packet after seek")
	}
	if s.pos >= s.frames {
		return io.EOF
	}
	if s.pos == s.failDecodeAt {
		s.failDecodeAt = -1
		if s.decodeFailErr != nil {
			return s.decodeFailErr
		}
		return errors.New("transient decode error")
	}
	binary.LittleEndian.PutUint32(dst, uint32(s.pos))
	s.decodedAt = append(s.decodedAt, s.pos)
	s.pos++
	s.decodes++
	return nil
}

func (s *fakeSource) Seek(stream int, frame int64) error {
	s.seeks = append(s.seeks, frame)
	if frame == 0 {
		if s.rewindErr != nil {
			return s.rewindErr
		}
		s.pos = 0
		s.broken = false
		return nil
	}
	if s.seekErr != nil {
		return s.seekErr
	}
	if s.seekBreaks {
		s.broken = true
		return nil
	}
	s.pos = int(frame)
	return nil
}

func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

func (s *fakeSource) nonZeroSeeks() int {
	n := 0
	for _, frame := range s.seeks {
		if frame != 0 {
			n++
		}
	}
	return n
}

// frameIndex reads back the index written by fakeSource.DecodeNext.
func frameIndex(buf []byte) int {
	return int(binary.LittleEndian.Uint32(buf))
}

// fakeClock is a manually advanced clock for Player.Update.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Add(d time.Duration) { c.now = c.now.Add(d) }

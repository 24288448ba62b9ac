package aveplay

import (
	"errors"
	"time"
)

// ErrSeekUnsupported is returned (possibly wrapped) by [Source.Seek] when
// the source can't jump to an arbitrary frame.
var ErrSeekUnsupported = errors.New("source does not support seeking")

// A Backend opens media sources. It's the boundary to the underlying
// decoding library: demuxing, decoding and color conversion all happen
// on the other side of it. See the ffmpeg subpackage for the default
// implementation.
type Backend interface {
	// Probes the container at path and returns the unopened source.
	Probe(path string) (Source, error)
}

// Backends that need process-wide setup (global registration, log levels)
// implement Initializer. Init is called once per backend type, lazily,
// when the first [Player] is created.
type Initializer interface {
	Init() error
}

// Backends can implement Describer to report library versions and
// licensing, see [DescribeBackend].
type Describer interface {
	Describe() string
}

// StreamIndices holds the first video and first audio stream of a
// source, or -1 when the source has none of that type.
type StreamIndices struct {
	Video int
	Audio int
}

func (s StreamIndices) HasVideo() bool { return s.Video >= 0 }
func (s StreamIndices) HasAudio() bool { return s.Audio >= 0 }

// SourceInfo holds raw container and codec facts reported by a [Source].
// The player derives a [MediaInfo] from it.
type SourceInfo struct {
	Width           int
	Height          int
	FrameRateNum    int
	FrameRateDen    int
	FrameCount      int64 // 0 when the container doesn't report it
	Bitrate         int64 // bits per second
	Duration        time.Duration
	VideoCodec      string
	AudioCodec      string
	AudioSampleRate int
}

// A Source is a probed media container. Implementations don't need to be
// safe for concurrent use: the [Player] serializes every call.
type Source interface {
	// Returns the first video and first audio stream found.
	Streams() StreamIndices

	// Returns the stream information retrieved while probing.
	Info() (SourceInfo, error)

	// Opens the decoder for the given stream index.
	OpenDecoder(stream int) error

	// Decodes the next video frame and writes it as RGBA pixels into dst,
	// which has room for width*height*4 bytes. dst must not be modified
	// when an error is returned. At the end of the stream io.EOF is returned.
	DecodeNext(dst []byte) error

	// Positions the stream so that the next DecodeNext returns the given
	// frame. Returns [ErrSeekUnsupported] when that's not possible.
	Seek(stream int, frame int64) error

	// Releases every decoder and the container, in reverse allocation
	// order. It must tolerate partially opened sources.
	Close() error
}

// DescribeBackend returns the library description of the backend, or an
// empty string if it doesn't implement [Describer].
func DescribeBackend(backend Backend) string {
	if d, ok := backend.(Describer); ok {
		return d.Describe()
	}
	return ""
}

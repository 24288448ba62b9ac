// Package ffmpeg implements an [aveplay.Backend] over FFmpeg, through the
// cgo bindings in [reisen].
//
// [reisen]: https://github.com/erparts/reisen
package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/erparts/reisen"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/erparts/go-aveplay"
)

var _ aveplay.Backend = Backend{}
var _ aveplay.Describer = Backend{}
var _ aveplay.Initializer = Backend{}

// Backend opens local media files with FFmpeg. The zero value is ready
// to use.
type Backend struct {
	// Logger receives warnings about the probed files. Defaults to the
	// zerolog global logger.
	Logger *zerolog.Logger
}

// Probe opens the container and selects its first video and first audio
// stream. Decoders are opened later through [aveplay.Source.OpenDecoder].
func (b Backend) Probe(path string) (aveplay.Source, error) {
	media, err := reisen.NewMedia(path)
	if err != nil {
		return nil, err
	}

	logger := b.logger().With().Str("file", filepath.Base(path)).Logger()
	videoStreams := media.VideoStreams()
	audioStreams := media.AudioStreams()
	if len(videoStreams) > 1 {
		logger.Warn().Int("streams", len(videoStreams)).Msg("multiple video streams; defaulting to the first")
	}
	if len(audioStreams) > 1 {
		logger.Warn().Int("streams", len(audioStreams)).Msg("multiple audio streams; defaulting to the first")
	}

	src := &source{
		media:    media,
		streams:  aveplay.StreamIndices{Video: -1, Audio: -1},
		fileSize: fileSize(path),
	}
	if len(videoStreams) > 0 {
		src.video = videoStreams[0]
		src.streams.Video = src.video.Index()
	}
	if len(audioStreams) > 0 {
		src.audio = audioStreams[0]
		src.streams.Audio = src.audio.Index()
	}
	return src, nil
}

// Init runs FFmpeg's process-wide setup. Codecs and formats register
// themselves in the FFmpeg versions reisen binds, which leaves the network
// layer as the only global state. Players call it once per process.
func (b Backend) Init() error {
	if err := reisen.NetworkInitialize(); err != nil {
		return fmt.Errorf("ffmpeg network init: %w", err)
	}
	b.logger().Debug().Msg("ffmpeg initialized")
	return nil
}

// Describe returns the banner printed by tools built on this backend.
func (Backend) Describe() string {
	return "FFmpeg via github.com/erparts/reisen (cgo). " +
		"Please regard the license of FFmpeg: LGPL v2.1+ or GPL depending on the enabled codecs and configuration."
}

func (b Backend) logger() *zerolog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return &log.Logger
}

func fileSize(path string) int64 {
	stat, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return stat.Size()
}

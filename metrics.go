package aveplay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels are bounded enums only: no file names.
var (
	// FramesDecodedTotal counts decoded video frames by decode path.
	FramesDecodedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aveplay_frames_decoded_total",
		Help: "Total number of decoded video frames, by path (direct, scan, image).",
	}, []string{"path"})

	// DecodeFailuresTotal counts absorbed decode errors by decode path.
	DecodeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aveplay_decode_failures_total",
		Help: "Total number of failed decode calls, by path (direct, scan, image).",
	}, []string{"path"})

	// SeekAttemptsTotal counts direct seek attempts by result.
	SeekAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aveplay_seek_attempts_total",
		Help: "Total number of direct seek attempts, by result (ok, failed).",
	}, []string{"result"})

	// SeekDowngradesTotal counts sources that fell back to forward scanning.
	SeekDowngradesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aveplay_seek_downgrades_total",
		Help: "Total number of sessions downgraded to forward-scan decoding.",
	})

	// BoundaryEventsTotal counts timeline boundary crossings by loop mode.
	BoundaryEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aveplay_boundary_events_total",
		Help: "Total number of times playback crossed the start or end of the media, by loop mode.",
	}, []string{"mode"})

	// OpenFailuresTotal counts failed opens by reason.
	OpenFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aveplay_open_failures_total",
		Help: "Total number of failed open calls, by reason.",
	}, []string{"reason"})

	// OpenSessions tracks players with an open source.
	OpenSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aveplay_open_sessions",
		Help: "Current number of players with an open media source.",
	})
)

// decode path labels
const (
	pathDirect = "direct"
	pathScan   = "scan"
	pathImage  = "image"
)

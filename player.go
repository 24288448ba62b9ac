package aveplay

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// default limit for the RGBA frame buffer (8K square)
const defaultMaxFrameBytes = 8192 * 8192 * 4

// A [Player] is a playback session over one media file.
//
// The player is a thin layer around a [Backend], which does the actual
// demuxing and decoding. The player itself only keeps the transport state,
// maps playback time to frame indices and decides when the backend needs
// to decode.
//
// Usage:
//   - Create a player with [NewPlayer]() and [Player.Open]() a file.
//   - Call [Player.Play]() to start the playback clock.
//   - Call [Player.Update]() once per host tick to advance the clock.
//   - Get the pixels with [Player.Frame]() or [Player.CopyFrame]().
//   - Use [Player.Pause]() and [Player.Stop]() to control playback.
//
// All methods are safe for concurrent use, but the buffer returned by
// [Player.Frame]() is only valid until the next fetch.
type Player struct {
	// mutex and backend objects
	mutex   sync.Mutex
	backend Backend
	source  Source

	// configuration
	baseLog       zerolog.Logger
	log           zerolog.Logger
	now           func() time.Time
	maxFrameBytes int
	preloadLimit  int64
	openLoopMode  LoopMode

	// static data, derived on open
	fileName string
	streams  StreamIndices
	info     MediaInfo

	// state variables
	state         PlaybackState
	loopMode      LoopMode
	direction     Direction
	speed         float64
	lastTick      time.Time // zero until the first tick
	currentFrame  int64     // last successfully decoded frame, -1 if none
	currentTimeMs float64   // time of currentFrame, -1 if none
	targetTimeMs  float64
	seekCap       SeekCapability
	imageDecoded  bool
	buffer        []byte

	// background decoding
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Option configures a [Player].
type Option func(*Player)

// WithClock replaces the monotonic clock used by [Player.Update].
func WithClock(now func() time.Time) Option {
	return func(p *Player) { p.now = now }
}

// WithLogger sets the logger used for the player's sessions.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Player) { p.baseLog = logger }
}

// WithLoopMode sets the loop mode applied on every [Player.Open]().
// The default is [Loop].
func WithLoopMode(mode LoopMode) Option {
	return func(p *Player) { p.openLoopMode = mode }
}

// WithMaxFrameBytes limits the size of the RGBA frame buffer. Files whose
// frames don't fit fail to open with [ErrFrameBufferTooLarge].
func WithMaxFrameBytes(n int) Option {
	return func(p *Player) { p.maxFrameBytes = n }
}

// WithPreload decodes every video frame into memory on [Player.Open](), as
// long as the frames take at most limit bytes. Preloaded media is always
// seekable and loops without reading the file again. Media that doesn't
// fit is streamed as usual. A limit of 0 disables preloading (the default).
func WithPreload(limit int64) Option {
	return func(p *Player) { p.preloadLimit = limit }
}

// Creates a new [Player] over the given backend. The backend's one-time
// initialization runs here if it hasn't run yet in this process.
func NewPlayer(backend Backend, opts ...Option) (*Player, error) {
	if backend == nil {
		panic("nil backend")
	}

	p := &Player{
		backend:       backend,
		baseLog:       pkgLogger,
		now:           time.Now,
		maxFrameBytes: defaultMaxFrameBytes,
		openLoopMode:  Loop,
		state:         Closed,
		direction:     Forward,
		speed:         1.0,
		currentFrame:  -1,
		currentTimeMs: -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.loopMode = p.openLoopMode
	p.log = p.baseLog

	if err := initBackend(backend); err != nil {
		return nil, fmt.Errorf("backend init: %w", err)
	}
	return p, nil
}

// --- open / close ---

// Opens the given file, closing any previously open one. All playback
// state is reset. On failure the player is left in the [Error] state
// and the returned error wraps one of [ErrOpenFailed], [ErrNoStreamInfo],
// [ErrNoStreams], [ErrDecoderInit], [ErrFrameBufferTooLarge] or, when
// preloading, [ErrRewindFailed].
func (p *Player) Open(path string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.stopCh != nil {
		return ErrBackgroundRunning
	}
	if p.source != nil {
		if err := p.noLockClose(); err != nil {
			p.log.Warn().Err(err).Msg("closing previous media")
		}
	}
	p.noLockReset(path)

	source, err := p.backend.Probe(path)
	if err != nil {
		return p.noLockFailOpen("probe", fmt.Errorf("%w: %w", ErrOpenFailed, err))
	}
	p.source = source

	streams := source.Streams()
	if !streams.HasVideo() && !streams.HasAudio() {
		return p.noLockFailOpen("no_streams", ErrNoStreams)
	}
	raw, err := source.Info()
	if err != nil {
		return p.noLockFailOpen("stream_info", fmt.Errorf("%w: %w", ErrNoStreamInfo, err))
	}
	for _, index := range []int{streams.Video, streams.Audio} {
		if index < 0 {
			continue
		}
		if err := source.OpenDecoder(index); err != nil {
			return p.noLockFailOpen("decoder", fmt.Errorf("%w: stream %d: %w", ErrDecoderInit, index, err))
		}
	}

	info := newMediaInfo(streams, raw)
	if info.HasVideo {
		size, ok := frameBufferSize(info.Width, info.Height)
		if !ok || size > p.maxFrameBytes {
			return p.noLockFailOpen("frame_buffer", fmt.Errorf("%w: %dx%d", ErrFrameBufferTooLarge, info.Width, info.Height))
		}
		p.buffer = make([]byte, size)
	}

	p.streams = streams
	p.info = info
	if p.preloadLimit > 0 && info.HasVideo && !info.IsImage {
		if err := p.noLockPreload(); err != nil {
			return p.noLockFailOpen("preload", err)
		}
	}
	p.state = Opened
	OpenSessions.Inc()
	p.log.Debug().
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.Fps).
		Float64("duration_ms", info.DurationMs).
		Int64("frames", info.DurationInFrames).
		Bool("image", info.IsImage).
		Msg("media opened")
	return nil
}

// Closes the media, releasing every backend resource. Background decoding
// is stopped first. Closing an already closed player does nothing.
//
// Do not confuse with [Player.Stop]().
func (p *Player) Close() error {
	p.StopBackground()

	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.source == nil {
		return nil
	}
	return p.noLockClose()
}

// release in reverse allocation order: frame buffer, then the source
// (which closes its decoders before the container)
func (p *Player) noLockClose() error {
	p.buffer = nil
	var err error
	if p.source != nil {
		err = p.source.Close()
		p.source = nil
		OpenSessions.Dec()
	}
	p.state = Closed
	return err
}

func (p *Player) noLockReset(path string) {
	p.fileName = path
	p.log = p.baseLog.With().Str("file", path).Logger()
	p.streams = StreamIndices{Video: -1, Audio: -1}
	p.info = MediaInfo{}
	p.state = Closed
	p.loopMode = p.openLoopMode
	p.direction = Forward
	p.speed = 1.0
	p.lastTick = time.Time{}
	p.currentFrame = -1
	p.currentTimeMs = -1
	p.targetTimeMs = 0
	p.seekCap = SeekUnknown
	p.imageDecoded = false
	p.buffer = nil
}

func (p *Player) noLockFailOpen(reason string, err error) error {
	OpenFailuresTotal.WithLabelValues(reason).Inc()
	p.log.Warn().Err(err).Str("reason", reason).Msg("open failed")
	if p.source != nil {
		if closeErr := p.source.Close(); closeErr != nil {
			p.log.Warn().Err(closeErr).Msg("closing partially opened media")
		}
		p.source = nil
	}
	p.streams = StreamIndices{Video: -1, Audio: -1}
	p.info = MediaInfo{}
	p.buffer = nil
	p.state = Error
	return err
}

func frameBufferSize(width, height int) (int, bool) {
	if width <= 0 || height <= 0 {
		return 0, false
	}
	if width > math.MaxInt/4/height {
		return 0, false
	}
	return width * height * 4, true
}

// ---- transport ----

// Starts or resumes the playback clock. Still images can't be played, and
// for them this does nothing. Playing after the stream ran out restarts from
// the start. Playing backwards from the start (after a stop, for example)
// starts from the end.
func (p *Player) Play() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.source == nil {
		return ErrNotOpen
	}
	if p.info.IsImage || p.state == Playing {
		return nil
	}

	switch {
	case p.state == Eof && p.direction == Forward:
		p.targetTimeMs = 0
	case (p.state == Eof || p.state == Stopped) && p.direction == Backward && p.targetTimeMs <= 0:
		p.targetTimeMs = clampTarget(p.info.DurationMs, p.info.DurationMs)
	}
	p.lastTick = p.now()
	p.state = Playing
	return nil
}

// Pauses the playback clock.
func (p *Player) Pause() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.source == nil {
		return ErrNotOpen
	}
	p.state = Paused
	return nil
}

// Stops playback and rewinds to the start. The source is sought back to
// frame 0 so even sources without seek support restart cleanly.
func (p *Player) Stop() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.source == nil {
		return ErrNotOpen
	}
	p.noLockStop()
	return nil
}

func (p *Player) noLockStop() {
	p.targetTimeMs = 0
	p.currentFrame = -1
	p.currentTimeMs = -1
	p.state = Stopped

	stream := p.streams.Video
	if stream < 0 {
		stream = p.streams.Audio
	}
	if err := p.source.Seek(stream, 0); err != nil {
		// the next fetch rewinds again if it needs to
		p.log.Warn().Err(err).Msg("rewinding on stop")
	}
}

// --- timing ---

// Advances the playback clock by the time elapsed since the previous
// update. The first update after opening advances nothing. Does nothing
// unless [Playing].
func (p *Player) Update() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.noLockUpdate()
}

func (p *Player) noLockUpdate() {
	now := p.now()
	var delta time.Duration
	if !p.lastTick.IsZero() {
		delta = now.Sub(p.lastTick)
	}
	p.lastTick = now
	p.noLockAdvance(delta)
}

// Advances the playback clock by the given delta. Hosts that keep their
// own clock can use this instead of [Player.Update]().
func (p *Player) Advance(delta time.Duration) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.noLockAdvance(delta)
}

func (p *Player) noLockAdvance(delta time.Duration) {
	if p.state != Playing {
		return
	}
	if delta < 0 {
		p.log.Warn().Dur("delta", delta).Msg("time inconsistency, negative clock delta")
		delta = 0
	}

	deltaMs := float64(delta) / float64(time.Millisecond)
	target, dir, crossed := advanceTarget(p.targetTimeMs, deltaMs, p.speed, p.direction, p.info.DurationMs, p.loopMode)
	p.targetTimeMs = target
	p.direction = dir
	if crossed == boundaryNone {
		return
	}

	BoundaryEventsTotal.WithLabelValues(p.loopMode.String()).Inc()
	if crossed == boundaryEnded {
		p.log.Debug().Float64("target_ms", target).Msg("end of media reached, stopping")
		p.noLockStop()
	}
}

// Moves the target position to the given frame.
func (p *Player) SetFramePosition(frame int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.targetTimeMs = frameToTime(frame, p.info.Fps)
}

// Moves the target position to the given time in milliseconds.
func (p *Player) SetTimePositionInMs(ms float64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.targetTimeMs = ms
}

// Moves the target position to a fraction of the duration, between 0
// (start) and 1 (end). Values outside that range are clamped.
func (p *Player) SetPosition(fraction float64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	fraction = min(max(fraction, 0), 1)
	p.targetTimeMs = fraction * p.info.DurationMs
}

// Sets the speed multiplier. Negative values are taken as positive, use
// [Player.SetDirection]() to play backwards.
func (p *Player) SetSpeed(speed float64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.speed = math.Abs(speed)
}

// Returns the speed multiplier (1.0 by default).
func (p *Player) Speed() float64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.speed
}

// Sets the playback direction. Negative values play backwards, anything
// else forward.
func (p *Player) SetDirection(dir Direction) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.direction = dir.normalize()
}

// Returns the playback direction. Bidirectional looping flips it at each
// boundary.
func (p *Player) Direction() Direction {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.direction
}

// Sets what happens when playback reaches either end of the media. It
// lasts until the next [Player.Open](), which restores the default.
func (p *Player) SetLoopMode(mode LoopMode) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.loopMode = mode
}

// Returns the current loop mode.
func (p *Player) LoopMode() LoopMode {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.loopMode
}

// ---- queries ----

// Returns the current playback state.
func (p *Player) State() PlaybackState {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.state
}

// Returns the information of the open media.
func (p *Player) Info() MediaInfo {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.info
}

func (p *Player) Width() int { return p.Info().Width }
func (p *Player) Height() int { return p.Info().Height }
func (p *Player) Fps() float64 { return p.Info().Fps }
func (p *Player) Bitrate() int { return p.Info().Bitrate }
func (p *Player) DurationInFrames() int64 { return p.Info().DurationInFrames }
func (p *Player) DurationInMs() float64 { return p.Info().DurationMs }
func (p *Player) CodecName() string { return p.Info().CodecName() }

func (p *Player) HasVideo() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.source != nil && p.info.HasVideo
}

func (p *Player) HasAudio() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.source != nil && p.info.HasAudio
}

func (p *Player) IsImage() bool { return p.Info().IsImage }

// Returns the path given to the last [Player.Open]().
func (p *Player) FileName() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.fileName
}

// Returns the index of the last decoded frame, or -1 if nothing has been
// decoded since the last open or stop.
func (p *Player) CurrentFrameNumber() int64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.currentFrame
}

// Returns the playback position in milliseconds. This is the target
// position, which may be ahead of the last decoded frame.
func (p *Player) CurrentTimeInMs() float64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.targetTimeMs
}

// Returns the position of the last decoded frame in milliseconds, or -1
// if nothing has been decoded since the last open or stop.
func (p *Player) DecodedTimeInMs() float64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.currentTimeMs
}

// Returns what is known about the source's seek support.
func (p *Player) SeekCapability() SeekCapability {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.seekCap
}

// Returns whether the next fetch would decode a new frame.
func (p *Player) IsNewFrame() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.source == nil || !p.info.HasVideo {
		return false
	}
	if p.info.IsImage {
		return !p.imageDecoded
	}
	return p.noLockTargetFrame() != p.currentFrame
}

// Package player runs the render loop: it pulls packets from the video
// service, decodes them, renders every frame to the display and paces output
// to the stream's frame rate.
package player

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/user/asciiplay/pkg/metrics"
	"github.com/user/asciiplay/pkg/pipeline"
	"github.com/user/asciiplay/pkg/ports"
	"github.com/user/asciiplay/pkg/stages/colormap"
	"github.com/user/asciiplay/pkg/stages/glyph"
	"github.com/user/asciiplay/pkg/stages/pace"
	"github.com/user/asciiplay/pkg/stages/render"
	"github.com/user/asciiplay/pkg/stages/sample"
)

// Stage names reported in failed outcomes.
const (
	StageOpen       = "open"
	StageDimensions = "dimensions"
	StageGrid       = "grid"
	StagePalette    = "palette"
	StageDemux      = "next_packet"
	StageFeed       = "feed"
	StageReceive    = "receive_frame"
	StageDrain      = "drain"
	StageRender     = "render"
)

// State is a render loop state.
type State int

const (
	StateStarting State = iota
	StateAwaitingPacket
	StateDecoding
	StateRendering
	StatePaced
	StateDraining
	StateSuccess
	StateError
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateAwaitingPacket:
		return "awaiting-packet"
	case StateDecoding:
		return "decoding"
	case StateRendering:
		return "rendering"
	case StatePaced:
		return "paced"
	case StateDraining:
		return "draining"
	case StateSuccess:
		return "terminal-success"
	case StateError:
		return "terminal-error"
	default:
		return "unknown"
	}
}

// Options configures a playback session.
type Options struct {
	Rows int // 0 = use display dimensions
	Cols int // 0 = use display dimensions

	ColorMode ports.PaletteMode
	Ramp      *glyph.Ramp

	Pacing          bool
	DefaultInterval time.Duration // Used when the stream declares no frame rate
	MaxDuration     time.Duration // Stop at this stream time (0 = whole stream)
}

// DefaultOptions returns Options with default values.
func DefaultOptions() Options {
	ramp, _ := glyph.NewRamp(glyph.ShortRamp)
	return Options{
		ColorMode:       ports.PaletteCube,
		Ramp:            ramp,
		Pacing:          true,
		DefaultInterval: 33 * time.Millisecond,
	}
}

// Player coordinates the video service, the render stages and the display.
type Player struct {
	video   ports.VideoService
	display ports.Display
	clock   pace.Clock
	logger  ports.Logger

	observer func(from, to State)
}

// New creates a new Player.
func New(video ports.VideoService, display ports.Display, clock pace.Clock, logger ports.Logger) *Player {
	if clock == nil {
		clock = pace.SystemClock{}
	}
	return &Player{
		video:   video,
		display: display,
		clock:   clock,
		logger:  logger.WithComponent("player"),
	}
}

// OnTransition registers fn to be called on every state change.
func (p *Player) OnTransition(fn func(from, to State)) {
	p.observer = fn
}

// session holds the per-run state of the loop.
type session struct {
	p     *Player
	state State

	media    ports.Media
	decoder  ports.Decoder
	renderer *render.Stage
	pacer    *pace.Pacer
	opts     Options

	frame     *ports.Frame
	workStart time.Time
	draining  bool

	outcome      pipeline.Outcome
	resizeWarned bool
}

// Run plays source until end of stream, an unrecoverable error, or
// cancellation of ctx. Cancellation is only observed between frames.
func (p *Player) Run(ctx context.Context, source string, opts Options) pipeline.Outcome {
	id := uuid.NewString()
	p.logger.Debug("Session %s: playing %s", id, source)

	s := &session{p: p, state: StateStarting, opts: opts}
	outcome := s.run(ctx, source)

	metrics.SessionsTotal.WithLabelValues(outcome.Status.String()).Inc()
	if outcome.Status == pipeline.StatusError {
		p.logger.Error("Playback failed at %s: %s", outcome.Stage, outcome.Err)
	} else {
		p.logger.Info("Playback finished: %d frames, %d behind schedule", outcome.Frames, outcome.Behind)
	}
	p.logger.Debug("Session %s ended in state %s", id, s.state)
	return outcome
}

func (s *session) run(ctx context.Context, source string) pipeline.Outcome {
	defer func() {
		if s.media != nil {
			s.media.Close()
		}
	}()
	if err := s.start(ctx, source); err != nil {
		return s.fail(err)
	}

	s.transition(StateAwaitingPacket)
	for {
		var err *pipeline.StageError
		switch s.state {
		case StateAwaitingPacket:
			err = s.awaitPacket()
		case StateDecoding:
			err = s.decode()
		case StateDraining:
			err = s.drain()
		case StateRendering:
			err = s.render(ctx)
		case StatePaced:
			s.paced(ctx)
		case StateSuccess:
			s.outcome.Status = pipeline.StatusSuccess
			s.outcome.Behind = s.pacer.Behind()
			s.outcome.Overrun = s.pacer.Overrun()
			return s.outcome
		}
		if err != nil {
			return s.fail(err)
		}
	}
}

// start opens the source and prepares the grid, palette and pacer.
func (s *session) start(ctx context.Context, source string) *pipeline.StageError {
	p := s.p

	media, err := p.video.Open(ctx, source)
	if err != nil {
		return pipeline.NewStageError(StageOpen, pipeline.KindDecode, err)
	}
	s.media = media
	s.decoder = media.Decoder()
	info := media.Info()
	s.outcome.Codec = info.Codec
	p.logger.Debug("Stream %dx%d, codec %s, frame interval %s", info.Width, info.Height, info.Codec, info.FrameInterval)

	rows, cols := s.opts.Rows, s.opts.Cols
	if rows <= 0 || cols <= 0 {
		r, c, err := p.display.Dimensions()
		if err != nil {
			return pipeline.NewStageError(StageDimensions, pipeline.KindConfiguration, err)
		}
		if rows <= 0 {
			rows = r
		}
		if cols <= 0 {
			cols = c
		}
	}

	grid, err := pipeline.NewGrid(rows, cols)
	if err != nil {
		return pipeline.NewStageError(StageGrid, pipeline.KindResource, err)
	}
	s.outcome.Rows, s.outcome.Cols = rows, cols

	if s.opts.Ramp == nil {
		return pipeline.NewStageError(StagePalette, pipeline.KindConfiguration, glyph.ErrEmptyRamp)
	}

	palette, err := colormap.NewPalette(s.opts.ColorMode)
	if err != nil {
		return pipeline.NewStageError(StagePalette, pipeline.KindConfiguration, err)
	}
	mapper := colormap.NewMapper(palette)
	mapping := palette.Mapping()
	if err := colormap.Verify(mapper, mapping); err != nil {
		return pipeline.NewStageError(StagePalette, pipeline.KindConfiguration, err)
	}
	if err := p.display.RegisterPalette(mapping); err != nil {
		return pipeline.NewStageError(StagePalette, pipeline.KindConfiguration, err)
	}

	var interval time.Duration
	if s.opts.Pacing {
		interval = info.FrameInterval
		if interval <= 0 {
			interval = s.opts.DefaultInterval
			p.logger.Warn("Stream declares no frame rate, using %s", interval)
		}
	}

	s.pacer = pace.New(interval, p.clock)
	s.outcome.Interval = s.pacer.Interval()
	s.renderer = render.NewStage(grid, mapper, s.opts.Ramp, p.display)
	p.logger.Info("Rendering %dx%d grid, %s palette, %s per frame", rows, cols, palette.Mode(), interval)
	return nil
}

func (s *session) awaitPacket() *pipeline.StageError {
	pkt, err := s.media.NextPacket()
	if errors.Is(err, ports.ErrEndOfStream) {
		return s.enterDraining()
	}
	if err != nil {
		return pipeline.NewStageError(StageDemux, pipeline.KindDecode, err)
	}

	if pkt.Kind != ports.KindVideo {
		s.outcome.Discarded++
		metrics.PacketsDiscarded.WithLabelValues(pkt.Kind.String()).Inc()
		return nil
	}

	if s.opts.MaxDuration > 0 && pkt.PTS >= s.opts.MaxDuration {
		s.p.logger.Info("Reached playback limit at %s", pkt.PTS)
		return s.enterDraining()
	}

	s.workStart = s.p.clock.Now()
	if err := s.decoder.Feed(pkt); err != nil {
		return pipeline.NewStageError(StageFeed, pipeline.KindDecode, err)
	}
	s.transition(StateDecoding)
	return nil
}

func (s *session) decode() *pipeline.StageError {
	frame, err := s.decoder.ReceiveFrame()
	switch {
	case err == nil:
		s.frame = frame
		s.transition(StateRendering)
	case errors.Is(err, ports.ErrNeedMoreInput):
		s.transition(StateAwaitingPacket)
	case errors.Is(err, ports.ErrEndOfStream):
		return s.enterDraining()
	default:
		return pipeline.NewStageError(StageReceive, pipeline.KindDecode, err)
	}
	return nil
}

func (s *session) enterDraining() *pipeline.StageError {
	s.transition(StateDraining)
	if s.draining {
		return nil
	}
	s.draining = true
	if err := s.decoder.Drain(); err != nil {
		return pipeline.NewStageError(StageDrain, pipeline.KindDecode, err)
	}
	return nil
}

// drain pulls the frames still buffered in the decoder.
func (s *session) drain() *pipeline.StageError {
	s.workStart = s.p.clock.Now()
	frame, err := s.decoder.ReceiveFrame()
	switch {
	case err == nil:
		s.frame = frame
		s.transition(StateRendering)
	case errors.Is(err, ports.ErrEndOfStream), errors.Is(err, ports.ErrNeedMoreInput):
		s.transition(StateSuccess)
	default:
		return pipeline.NewStageError(StageReceive, pipeline.KindDecode, err)
	}
	return nil
}

func (s *session) render(ctx context.Context) *pipeline.StageError {
	frame := s.frame
	s.frame = nil
	if _, err := s.renderer.Execute(ctx, frame); err != nil {
		kind := pipeline.KindDisplay
		if errors.Is(err, sample.ErrEmptyFrame) || errors.Is(err, sample.ErrShortPlane) {
			kind = pipeline.KindDecode
		}
		return pipeline.NewStageError(StageRender, kind, err)
	}
	s.outcome.Frames++
	metrics.FramesRendered.Inc()
	s.transition(StatePaced)
	return nil
}

func (s *session) paced(ctx context.Context) {
	end := s.p.clock.Now()
	metrics.FrameProcessingDuration.Observe(end.Sub(s.workStart).Seconds())

	behind := s.pacer.Behind()
	slept := s.pacer.Wait(ctx, s.workStart, end)
	if s.pacer.Enabled() {
		metrics.PacingSleepDuration.Observe(slept.Seconds())
	}
	if s.pacer.Behind() > behind {
		metrics.FramesBehind.Inc()
	}

	s.checkResize()

	if ctx.Err() != nil {
		s.p.logger.Info("Playback interrupted")
		s.outcome.Interrupted = true
		s.transition(StateSuccess)
		return
	}
	if s.draining {
		s.transition(StateDraining)
		return
	}
	s.transition(StateAwaitingPacket)
}

// checkResize warns once when the display size changes; the grid keeps
// the size it was created with.
func (s *session) checkResize() {
	if s.resizeWarned {
		return
	}
	w, ok := s.p.display.(ports.ResizeWatcher)
	if !ok {
		return
	}
	if rows, cols, changed := w.Resized(); changed {
		s.resizeWarned = true
		grid := s.renderer.Grid()
		s.p.logger.Warn("Terminal resized to %dx%d; playback keeps the %dx%d grid", rows, cols, grid.Rows, grid.Cols)
	}
}

func (s *session) transition(to State) {
	from := s.state
	s.state = to
	s.p.logger.Debug("State %s -> %s", from, to)
	if s.p.observer != nil {
		s.p.observer(from, to)
	}
}

func (s *session) fail(err *pipeline.StageError) pipeline.Outcome {
	s.transition(StateError)
	out := s.outcome
	failed := pipeline.Failed(err)
	out.Status, out.Stage, out.Err = failed.Status, failed.Stage, failed.Err
	if s.pacer != nil {
		out.Behind = s.pacer.Behind()
		out.Overrun = s.pacer.Overrun()
	}
	return out
}

// ExitCode maps an outcome to the process exit status.
func ExitCode(o pipeline.Outcome) int {
	if o.Status == pipeline.StatusSuccess {
		return 0
	}
	return 1
}

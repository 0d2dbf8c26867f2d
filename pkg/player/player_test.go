package player

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/asciiplay/pkg/adapters/logger"
	"github.com/user/asciiplay/pkg/mocks"
	"github.com/user/asciiplay/pkg/pipeline"
	"github.com/user/asciiplay/pkg/ports"
	"github.com/user/asciiplay/pkg/stages/sample"
)

const frameInterval = 33 * time.Millisecond

func videoPackets(n int) []ports.Packet {
	pkts := make([]ports.Packet, n)
	for i := range pkts {
		pkts[i] = ports.Packet{Kind: ports.KindVideo, PTS: time.Duration(i) * frameInterval}
	}
	return pkts
}

type fixture struct {
	video   *mocks.VideoService
	media   *mocks.Media
	display *mocks.Display
	clock   *mocks.Clock
	player  *Player
	states  []State
}

func newFixture(packets ...ports.Packet) *fixture {
	f := &fixture{
		media:   mocks.NewMedia(ports.StreamInfo{Width: 8, Height: 4, FrameInterval: frameInterval}, packets...),
		display: mocks.NewDisplay(2, 4),
		clock:   mocks.NewClock(),
	}
	f.video = &mocks.VideoService{Media: f.media}
	f.player = New(f.video, f.display, f.clock, logger.NewNoop())
	f.player.OnTransition(func(from, to State) {
		f.states = append(f.states, to)
	})
	return f
}

func (f *fixture) run(ctx context.Context, opts Options) pipeline.Outcome {
	return f.player.Run(ctx, "video.mp4", opts)
}

func TestRun_ThreeFrames(t *testing.T) {
	f := newFixture(videoPackets(3)...)

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusSuccess, out.Status)
	assert.NoError(t, out.Err)
	assert.Equal(t, 3, out.Frames)
	assert.False(t, out.Interrupted)
	assert.Equal(t, 3, f.display.FrameCount())
	assert.Len(t, f.display.Palettes, 1)
	assert.Equal(t, ports.PaletteCube, f.display.Palettes[0].Mode)
	assert.Equal(t, 1, f.media.Dec.DrainCalls)
	assert.Equal(t, 1, f.media.CloseCalls)
	assert.Equal(t, []string{"video.mp4"}, f.video.OpenCalls)
	assert.Equal(t, []time.Duration{frameInterval, frameInterval, frameInterval}, f.clock.Sleeps)
	assert.Equal(t, 2, out.Rows)
	assert.Equal(t, 4, out.Cols)
	assert.Equal(t, frameInterval, out.Interval)
	assert.Equal(t, 0, ExitCode(out))
}

func TestRun_StateSequence(t *testing.T) {
	f := newFixture(videoPackets(1)...)

	out := f.run(context.Background(), DefaultOptions())
	require.Equal(t, pipeline.StatusSuccess, out.Status)

	assert.Equal(t, []State{
		StateAwaitingPacket,
		StateDecoding,
		StateRendering,
		StatePaced,
		StateAwaitingPacket,
		StateDraining,
		StateSuccess,
	}, f.states)
}

func TestRun_EmptyStream(t *testing.T) {
	f := newFixture()

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusSuccess, out.Status)
	assert.Equal(t, 0, out.Frames)
	assert.Equal(t, 0, f.display.FrameCount())
	assert.Equal(t, 1, f.media.Dec.DrainCalls)
}

func TestRun_NonVideoPacketsDiscarded(t *testing.T) {
	f := newFixture(
		ports.Packet{Kind: ports.KindAudio},
		ports.Packet{Kind: ports.KindVideo},
		ports.Packet{Kind: ports.KindOther},
		ports.Packet{Kind: ports.KindAudio},
	)

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusSuccess, out.Status)
	assert.Equal(t, 1, out.Frames)
	assert.Equal(t, 3, out.Discarded)
	assert.Len(t, f.media.Dec.Fed, 1)
}

func TestRun_DrainsBufferedFrames(t *testing.T) {
	f := newFixture(videoPackets(3)...)
	f.media.Dec.Delay = 2

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusSuccess, out.Status)
	assert.Equal(t, 3, out.Frames)
	assert.Equal(t, 3, f.display.FrameCount())
	assert.Equal(t, 1, f.media.Dec.DrainCalls)
	assert.Contains(t, f.states, StateDraining)
}

func TestRun_DecoderFeedError(t *testing.T) {
	f := newFixture(videoPackets(3)...)
	codecErr := errors.New("corrupt slice header")
	fed := 0
	f.media.Dec.FeedFunc = func(ports.Packet) error {
		fed++
		if fed == 2 {
			return codecErr
		}
		return nil
	}
	f.media.Dec.ReceiveFunc = func() (*ports.Frame, error) {
		return nil, ports.ErrNeedMoreInput
	}

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusError, out.Status)
	assert.Equal(t, StageFeed, out.Stage)
	assert.ErrorIs(t, out.Err, pipeline.ErrDecode)
	assert.ErrorIs(t, out.Err, codecErr)
	assert.Equal(t, 0, out.Frames)
	assert.Equal(t, StateError, f.states[len(f.states)-1])
	assert.Equal(t, 1, f.media.CloseCalls)
	assert.Equal(t, 1, ExitCode(out))
}

func TestRun_ReceiveError(t *testing.T) {
	f := newFixture(videoPackets(1)...)
	f.media.Dec.ReceiveFunc = func() (*ports.Frame, error) {
		return nil, errors.New("decode failed")
	}

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusError, out.Status)
	assert.Equal(t, StageReceive, out.Stage)
	assert.ErrorIs(t, out.Err, pipeline.ErrDecode)
}

func TestRun_DemuxError(t *testing.T) {
	f := newFixture(videoPackets(2)...)
	f.media.PacketErr = errors.New("truncated file")

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusError, out.Status)
	assert.Equal(t, StageDemux, out.Stage)
	assert.Equal(t, 2, out.Frames)
}

func TestRun_OpenError(t *testing.T) {
	f := newFixture()
	f.video.OpenFunc = func(context.Context, string) (ports.Media, error) {
		return nil, errors.New("no such file")
	}

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusError, out.Status)
	assert.Equal(t, StageOpen, out.Stage)
	assert.ErrorIs(t, out.Err, pipeline.ErrDecode)
	assert.Empty(t, f.display.Palettes)
}

func TestRun_PaletteRejected(t *testing.T) {
	f := newFixture(videoPackets(3)...)
	f.display.RegisterPaletteFunc = func(ports.PaletteMapping) error {
		return errors.New("terminal supports 8 colours")
	}

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusError, out.Status)
	assert.Equal(t, StagePalette, out.Stage)
	assert.ErrorIs(t, out.Err, pipeline.ErrConfiguration)
	assert.Equal(t, 0, f.display.FrameCount())
	assert.Equal(t, 0, f.media.NextPacketCalls)
	assert.Equal(t, 1, f.media.CloseCalls)
}

func TestRun_UnknownColorMode(t *testing.T) {
	f := newFixture(videoPackets(1)...)
	opts := DefaultOptions()
	opts.ColorMode = "truecolor"

	out := f.run(context.Background(), opts)

	assert.Equal(t, StagePalette, out.Stage)
	assert.ErrorIs(t, out.Err, pipeline.ErrConfiguration)
}

func TestRun_MissingRamp(t *testing.T) {
	f := newFixture(videoPackets(1)...)
	opts := DefaultOptions()
	opts.Ramp = nil

	out := f.run(context.Background(), opts)

	assert.ErrorIs(t, out.Err, pipeline.ErrConfiguration)
}

func TestRun_DimensionsError(t *testing.T) {
	f := newFixture(videoPackets(1)...)
	f.display.DimensionsFunc = func() (int, int, error) {
		return 0, 0, errors.New("not a terminal")
	}

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, StageDimensions, out.Stage)
	assert.ErrorIs(t, out.Err, pipeline.ErrConfiguration)
}

func TestRun_ZeroSizedDisplay(t *testing.T) {
	f := newFixture(videoPackets(1)...)
	f.display.Rows, f.display.Cols = 0, 0

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, StageGrid, out.Stage)
	assert.ErrorIs(t, out.Err, pipeline.ErrResource)
}

func TestRun_FixedGridSkipsDimensions(t *testing.T) {
	f := newFixture(videoPackets(1)...)
	f.display = mocks.NewDisplay(3, 5)
	f.display.DimensionsFunc = func() (int, int, error) {
		t.Error("Dimensions called with a fixed grid")
		return 0, 0, nil
	}
	f.player = New(f.video, f.display, f.clock, logger.NewNoop())
	opts := DefaultOptions()
	opts.Rows, opts.Cols = 3, 5

	out := f.run(context.Background(), opts)

	require.Equal(t, pipeline.StatusSuccess, out.Status)
	assert.Len(t, f.display.Frames[0], 15)
}

func TestRun_RenderError(t *testing.T) {
	f := newFixture(videoPackets(3)...)
	flushes := 0
	f.display.FlushFunc = func() error {
		flushes++
		if flushes == 2 {
			return errors.New("broken pipe")
		}
		return nil
	}

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusError, out.Status)
	assert.Equal(t, StageRender, out.Stage)
	assert.ErrorIs(t, out.Err, pipeline.ErrDisplay)
	assert.Equal(t, 1, out.Frames)
}

func TestRun_MalformedFrameIsDecodeError(t *testing.T) {
	f := newFixture(videoPackets(2)...)
	f.media.Dec.FrameFunc = func(ports.Packet) *ports.Frame {
		frame := mocks.GrayFrame(4, 4, 128)
		frame.Y = frame.Y[:3]
		return frame
	}

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusError, out.Status)
	assert.Equal(t, StageRender, out.Stage)
	assert.ErrorIs(t, out.Err, pipeline.ErrDecode)
	assert.ErrorIs(t, out.Err, sample.ErrShortPlane)
	assert.Equal(t, 0, out.Frames)
	assert.Empty(t, f.display.Frames)
}

func TestRun_Cancellation(t *testing.T) {
	f := newFixture(videoPackets(10)...)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.clock.SleepFunc = func(context.Context, time.Duration) {
		if len(f.clock.Sleeps) == 1 {
			cancel()
		}
	}

	out := f.run(ctx, DefaultOptions())

	assert.Equal(t, pipeline.StatusSuccess, out.Status)
	assert.True(t, out.Interrupted)
	assert.Equal(t, 2, out.Frames)
	assert.Equal(t, 2, f.display.FrameCount())
	assert.Equal(t, 1, f.media.CloseCalls)
	assert.Equal(t, 0, ExitCode(out))
}

func TestRun_MaxDuration(t *testing.T) {
	f := newFixture(videoPackets(5)...)
	opts := DefaultOptions()
	opts.MaxDuration = 50 * time.Millisecond

	out := f.run(context.Background(), opts)

	assert.Equal(t, pipeline.StatusSuccess, out.Status)
	assert.Equal(t, 2, out.Frames)
	assert.Len(t, f.media.Dec.Fed, 2)
}

func TestRun_PacingDisabled(t *testing.T) {
	f := newFixture(videoPackets(3)...)
	opts := DefaultOptions()
	opts.Pacing = false

	out := f.run(context.Background(), opts)

	assert.Equal(t, 3, out.Frames)
	assert.Equal(t, time.Duration(0), out.Interval)
	assert.Empty(t, f.clock.Sleeps)
}

func TestRun_DefaultIntervalWhenUndeclared(t *testing.T) {
	f := newFixture(videoPackets(2)...)
	f.media.StreamInfo.FrameInterval = 0
	opts := DefaultOptions()
	opts.DefaultInterval = 40 * time.Millisecond

	f.run(context.Background(), opts)

	assert.Equal(t, []time.Duration{40 * time.Millisecond, 40 * time.Millisecond}, f.clock.Sleeps)
}

func TestRun_SlowFramesCountedBehind(t *testing.T) {
	f := newFixture(videoPackets(3)...)
	// Every Now call advances the clock, so each frame takes 40ms.
	f.clock.Step = 40 * time.Millisecond

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, pipeline.StatusSuccess, out.Status)
	assert.Equal(t, 3, out.Behind)
	assert.Equal(t, 21*time.Millisecond, out.Overrun)
	assert.Empty(t, f.clock.Sleeps)
}

func TestRun_ResizeWarnedOnce(t *testing.T) {
	f := newFixture(videoPackets(4)...)
	f.display.ResizeAfter = 1
	f.display.ResizedRows, f.display.ResizedCols = 9, 9
	var buf bytes.Buffer
	f.player = New(f.video, f.display, f.clock, logger.NewWriter(ports.LevelWarn, &buf))

	out := f.run(context.Background(), DefaultOptions())

	assert.Equal(t, 4, out.Frames)
	assert.Equal(t, 1, strings.Count(buf.String(), "9x9"))
}

func TestRun_PaletteModes(t *testing.T) {
	for _, mode := range []ports.PaletteMode{ports.PaletteCube, ports.PaletteBase8, ports.PaletteMono} {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(videoPackets(1)...)
			opts := DefaultOptions()
			opts.ColorMode = mode

			out := f.run(context.Background(), opts)

			require.Equal(t, pipeline.StatusSuccess, out.Status)
			mapping := f.display.Palettes[0]
			for _, c := range f.display.Frames[0] {
				assert.True(t, mapping.Has(c.Color), "colour %d not registered", c.Color)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "awaiting-packet", StateAwaitingPacket.String())
	assert.Equal(t, "terminal-error", StateError.String())
	assert.Equal(t, "unknown", State(99).String())
}

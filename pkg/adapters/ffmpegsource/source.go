// Package ffmpegsource implements the video decoding service on top of
// YUV4MPEG2 streams. .y4m files and stdin ("-") are read directly; any other
// source is decoded by an ffmpeg child process writing YUV4MPEG2 to a pipe.
package ffmpegsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/user/asciiplay/pkg/adapters/probe"
	"github.com/user/asciiplay/pkg/adapters/y4m"
	"github.com/user/asciiplay/pkg/adapters/yuvdecoder"
	"github.com/user/asciiplay/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when ffmpeg is not found in PATH.
	ErrFFmpegNotFound = errors.New("ffmpegsource: ffmpeg not found in PATH")

	// ErrFFmpegFailed is returned when the ffmpeg process exits with an error.
	ErrFFmpegFailed = errors.New("ffmpegsource: ffmpeg failed")
)

// Options configures the service.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
}

// Service opens sources as YUV4MPEG2 streams.
type Service struct {
	opts   Options
	logger ports.Logger
	stdin  io.Reader
}

// New creates a new Service.
func New(opts Options, logger ports.Logger) *Service {
	return &Service{
		opts:   opts,
		logger: logger.WithComponent("ffmpeg"),
		stdin:  os.Stdin,
	}
}

// Open prepares source for packet retrieval.
func (s *Service) Open(ctx context.Context, source string) (ports.Media, error) {
	switch {
	case source == "-":
		return s.openReader(io.NopCloser(s.stdin), "stdin")
	case strings.EqualFold(filepath.Ext(source), ".y4m"):
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return s.openReader(f, source)
	default:
		return s.openFFmpeg(ctx, source)
	}
}

func (s *Service) openReader(rc io.ReadCloser, name string) (*Media, error) {
	r, err := y4m.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	s.logger.Debug("Reading YUV4MPEG2 stream from %s", name)
	return newMedia(r, rc, nil, nil, probe.Info{Codec: "rawvideo"}), nil
}

func (s *Service) openFFmpeg(_ context.Context, source string) (*Media, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var meta probe.Info
	if probe.IsMP4(source) {
		info, err := probe.FromFile(source)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", source, err)
		}
		meta = info
		s.logger.Debug("Probed %s: %s %dx%d", source, info.Codec, info.Width, info.Height)
	}

	ffmpegPath, err := findFFmpeg(s.opts.FFmpegPath)
	if err != nil {
		return nil, err
	}

	// Not bound to ctx; Close kills the process.
	cmd := exec.Command(ffmpegPath, ffmpegArgs(source)...)
	stderr := &limitedBuffer{max: 4096}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	s.logger.Debug("Started %s for %s", ffmpegPath, source)

	r, err := y4m.NewReader(stdout)
	if err != nil {
		killAndWait(cmd)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrFFmpegFailed, msg)
		}
		return nil, fmt.Errorf("read ffmpeg output: %w", err)
	}

	return newMedia(r, stdout, cmd, stderr, meta), nil
}

// Media is an opened YUV4MPEG2 stream.
type Media struct {
	reader  *y4m.Reader
	closer  io.Closer
	cmd     *exec.Cmd
	stderr  *limitedBuffer
	decoder *yuvdecoder.Decoder
	info    ports.StreamInfo
	waited  bool
}

func newMedia(r *y4m.Reader, closer io.Closer, cmd *exec.Cmd, stderr *limitedBuffer, meta probe.Info) *Media {
	h := r.Header()
	interval := h.FrameInterval()
	if interval == 0 {
		interval = meta.FrameInterval
	}
	return &Media{
		reader: r,
		closer: closer,
		cmd:    cmd,
		stderr: stderr,
		decoder: yuvdecoder.New(yuvdecoder.Format{
			Width:         h.Width,
			Height:        h.Height,
			Mono:          h.Mono(),
			FrameInterval: interval,
		}),
		info: ports.StreamInfo{
			Width:         h.Width,
			Height:        h.Height,
			FrameInterval: interval,
			Codec:         string(meta.Codec),
		},
	}
}

// Info returns the properties of the video stream.
func (m *Media) Info() ports.StreamInfo {
	return m.info
}

// Decoder returns the decoder bound to the stream.
func (m *Media) Decoder() ports.Decoder {
	return m.decoder
}

// NextPacket returns the next frame packet. At the end of an ffmpeg stream
// the process exit status decides between end of stream and failure.
func (m *Media) NextPacket() (ports.Packet, error) {
	pkt, err := m.reader.NextPacket()
	if m.cmd == nil {
		return pkt, err
	}
	if errors.Is(err, ports.ErrEndOfStream) || errors.Is(err, y4m.ErrTruncated) {
		if werr := m.wait(); werr != nil {
			return ports.Packet{}, werr
		}
	}
	return pkt, err
}

func (m *Media) wait() error {
	if m.waited {
		return nil
	}
	m.waited = true
	if err := m.cmd.Wait(); err != nil {
		return fmt.Errorf("%w: %v: %s", ErrFFmpegFailed, err, strings.TrimSpace(m.stderr.String()))
	}
	return nil
}

// Close stops ffmpeg if it is still running and releases the stream.
func (m *Media) Close() error {
	if m.cmd == nil {
		return m.closer.Close()
	}
	if !m.waited {
		m.waited = true
		_ = m.closer.Close()
		killAndWait(m.cmd)
	}
	return nil
}

func killAndWait(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	_ = cmd.Wait()
}

var (
	_ ports.VideoService = (*Service)(nil)
	_ ports.Media        = (*Media)(nil)
)

// Package y4m reads and writes YUV4MPEG2 streams, the raw video format
// ffmpeg emits with -f yuv4mpegpipe.
package y4m

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/user/asciiplay/pkg/ports"
)

const (
	streamMagic = "YUV4MPEG2"
	frameMagic  = "FRAME"

	// maxLine bounds header and frame header lines.
	maxLine = 1024

	// MaxDimension bounds the width and height a header may declare, so a
	// corrupt header cannot request an unbounded frame buffer.
	MaxDimension = 16384
)

var (
	// ErrBadHeader is returned for a missing or malformed stream header.
	ErrBadHeader = errors.New("y4m: bad stream header")

	// ErrBadFrame is returned when a frame does not start with FRAME.
	ErrBadFrame = errors.New("y4m: bad frame header")

	// ErrTruncated is returned when the stream ends inside a frame.
	ErrTruncated = errors.New("y4m: truncated frame")

	// ErrUnsupportedChroma is returned for colour spaces other than 4:2:0 and mono.
	ErrUnsupportedChroma = errors.New("y4m: unsupported chroma subsampling")
)

// Rational is a frame rate as numerator/denominator.
type Rational struct {
	Num int
	Den int
}

// Header holds the stream parameters.
type Header struct {
	Width     int
	Height    int
	FrameRate Rational // 0:0 when unknown
	Chroma    string   // "420jpeg", "420mpeg2", "420paldv", "mono"
}

// Mono reports whether the stream carries luma only.
func (h Header) Mono() bool {
	return h.Chroma == "mono"
}

// FrameSize returns the payload size of one frame in bytes.
func (h Header) FrameSize() int {
	luma := h.Width * h.Height
	if h.Mono() {
		return luma
	}
	cw, ch := (h.Width+1)/2, (h.Height+1)/2
	return luma + 2*cw*ch
}

// FrameInterval returns the duration of one frame, or 0 if the rate is unknown.
func (h Header) FrameInterval() time.Duration {
	if h.FrameRate.Num <= 0 || h.FrameRate.Den <= 0 {
		return 0
	}
	return time.Duration(int64(time.Second) * int64(h.FrameRate.Den) / int64(h.FrameRate.Num))
}

// Reader demuxes a YUV4MPEG2 stream into video packets.
type Reader struct {
	r      *bufio.Reader
	header Header
	frames int64
}

// NewReader parses the stream header from r.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	line, err := readLine(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	h, err := ParseHeader(line)
	if err != nil {
		return nil, err
	}
	return &Reader{r: br, header: h}, nil
}

// Header returns the stream parameters.
func (r *Reader) Header() Header {
	return r.header
}

// NextPacket reads the next frame as a video packet.
// It returns ports.ErrEndOfStream when the stream ends on a frame boundary.
func (r *Reader) NextPacket() (ports.Packet, error) {
	line, err := readLine(r.r)
	if err == io.EOF && line == "" {
		return ports.Packet{}, ports.ErrEndOfStream
	}
	if err != nil && err != io.EOF {
		return ports.Packet{}, fmt.Errorf("read frame header: %w", err)
	}
	if !strings.HasPrefix(line, frameMagic) {
		return ports.Packet{}, fmt.Errorf("%w: %q", ErrBadFrame, truncate(line))
	}

	data := make([]byte, r.header.FrameSize())
	if _, err := io.ReadFull(r.r, data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ports.Packet{}, fmt.Errorf("%w: frame %d", ErrTruncated, r.frames)
		}
		return ports.Packet{}, fmt.Errorf("read frame %d: %w", r.frames, err)
	}

	pkt := ports.Packet{
		Kind: ports.KindVideo,
		Data: data,
		PTS:  time.Duration(r.frames) * r.header.FrameInterval(),
	}
	r.frames++
	return pkt, nil
}

// ParseHeader parses a stream header line without the trailing newline.
func ParseHeader(line string) (Header, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != streamMagic {
		return Header{}, fmt.Errorf("%w: missing %s signature", ErrBadHeader, streamMagic)
	}

	h := Header{Chroma: "420jpeg"}
	for _, f := range fields[1:] {
		tag, val := f[0], f[1:]
		var err error
		switch tag {
		case 'W':
			h.Width, err = strconv.Atoi(val)
		case 'H':
			h.Height, err = strconv.Atoi(val)
		case 'F':
			h.FrameRate, err = parseRatio(val)
		case 'C':
			h.Chroma = val
		case 'I', 'A', 'X':
			// Interlacing, aspect ratio and extensions do not affect sampling.
		default:
			err = fmt.Errorf("unknown tag %q", f)
		}
		if err != nil {
			return Header{}, fmt.Errorf("%w: %v", ErrBadHeader, err)
		}
	}

	if h.Width <= 0 || h.Height <= 0 || h.Width > MaxDimension || h.Height > MaxDimension {
		return Header{}, fmt.Errorf("%w: invalid size %dx%d", ErrBadHeader, h.Width, h.Height)
	}
	switch h.Chroma {
	case "420", "420jpeg", "420mpeg2", "420paldv", "mono":
	default:
		return Header{}, fmt.Errorf("%w: %s", ErrUnsupportedChroma, h.Chroma)
	}
	return h, nil
}

func parseRatio(s string) (Rational, error) {
	num, den, ok := strings.Cut(s, ":")
	if !ok {
		return Rational{}, fmt.Errorf("invalid ratio %q", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return Rational{}, fmt.Errorf("invalid ratio %q", s)
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return Rational{}, fmt.Errorf("invalid ratio %q", s)
	}
	return Rational{Num: n, Den: d}, nil
}

func readLine(r *bufio.Reader) (string, error) {
	var buf bytes.Buffer
	for buf.Len() <= maxLine {
		b, err := r.ReadByte()
		if err != nil {
			return buf.String(), err
		}
		if b == '\n' {
			return buf.String(), nil
		}
		buf.WriteByte(b)
	}
	return "", fmt.Errorf("line longer than %d bytes", maxLine)
}

func truncate(s string) string {
	if len(s) > 16 {
		return s[:16]
	}
	return s
}

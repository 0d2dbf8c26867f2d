package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEndOfStream is returned when the input or the decoder has nothing more to deliver.
	ErrEndOfStream = errors.New("end of stream")

	// ErrNeedMoreInput is returned by ReceiveFrame when the decoder must be fed
	// another packet before it can produce a frame.
	ErrNeedMoreInput = errors.New("decoder needs more input")
)

// StreamKind identifies the elementary stream a packet belongs to.
type StreamKind int

const (
	KindVideo StreamKind = iota
	KindAudio
	KindOther
)

// String returns the string representation of the stream kind.
func (k StreamKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return "other"
	}
}

// Packet is one demuxed unit of compressed (or raw) stream data.
type Packet struct {
	Kind StreamKind
	Data []byte
	PTS  time.Duration // Presentation timestamp relative to stream start
}

// StreamInfo describes the selected video stream.
type StreamInfo struct {
	Width         int
	Height        int
	FrameInterval time.Duration // Declared average frame interval (0 = unknown)
	Codec         string
}

// Frame is a decoded 4:2:0 picture.
// U and V are subsampled 2x in both axes. Plane slices belong to the decoder
// and are only valid until the next call into it.
type Frame struct {
	Width   int
	Height  int
	Y       []byte
	U       []byte
	V       []byte
	YStride int
	UStride int
	VStride int

	PTS           time.Duration
	FrameInterval time.Duration // Declared average frame interval (0 = unknown)
}

// ChromaSize returns the dimensions of the U and V planes.
func (f *Frame) ChromaSize() (width, height int) {
	return (f.Width + 1) / 2, (f.Height + 1) / 2
}

// VideoService opens media sources for decoding.
type VideoService interface {
	// Open prepares the source for packet retrieval.
	Open(ctx context.Context, source string) (Media, error)
}

// Media is an opened source with its video decoder.
type Media interface {
	// Info returns the properties of the video stream.
	Info() StreamInfo

	// NextPacket returns the next demuxed packet or ErrEndOfStream.
	NextPacket() (Packet, error)

	// Decoder returns the decoder bound to the video stream.
	Decoder() Decoder

	// Close releases the source and any helper process.
	Close() error
}

// Decoder turns video packets into frames.
type Decoder interface {
	// Feed submits one packet to the decoder.
	Feed(pkt Packet) error

	// ReceiveFrame returns the next decoded frame.
	// It returns ErrNeedMoreInput when a packet must be fed first, and
	// ErrEndOfStream once Drain was called and no frames remain.
	ReceiveFrame() (*Frame, error)

	// Drain signals end of input. Frames already buffered stay receivable.
	Drain() error
}

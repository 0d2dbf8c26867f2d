// Package yuvdecoder decodes raw planar 4:2:0 (or luma-only) packets into frames.
package yuvdecoder

import (
	"errors"
	"fmt"
	"time"

	"github.com/user/asciiplay/pkg/ports"
)

var (
	// ErrBadPacket is returned when a packet does not hold exactly one frame.
	ErrBadPacket = errors.New("yuvdecoder: packet size does not match frame geometry")

	// ErrDrained is returned when Feed is called after Drain.
	ErrDrained = errors.New("yuvdecoder: decoder already drained")

	// ErrNotVideo is returned for packets of other streams.
	ErrNotVideo = errors.New("yuvdecoder: not a video packet")
)

// Format describes the frames carried by the packets.
type Format struct {
	Width         int
	Height        int
	Mono          bool
	FrameInterval time.Duration
}

// Decoder splits packet payloads into planes. Frames reference the packet
// data and are queued until received.
type Decoder struct {
	format   Format
	queue    []*ports.Frame
	draining bool
	neutral  []byte // Shared chroma plane for mono input
}

// New creates a decoder for format.
func New(format Format) *Decoder {
	d := &Decoder{format: format}
	if format.Mono {
		cw, ch := (format.Width+1)/2, (format.Height+1)/2
		d.neutral = make([]byte, cw*ch)
		for i := range d.neutral {
			d.neutral[i] = 128
		}
	}
	return d
}

// Feed splits pkt into a frame and queues it.
func (d *Decoder) Feed(pkt ports.Packet) error {
	if d.draining {
		return ErrDrained
	}
	if pkt.Kind != ports.KindVideo {
		return fmt.Errorf("%w: %s", ErrNotVideo, pkt.Kind)
	}

	w, h := d.format.Width, d.format.Height
	cw, ch := (w+1)/2, (h+1)/2
	luma := w * h
	want := luma + 2*cw*ch
	if d.format.Mono {
		want = luma
	}
	if len(pkt.Data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBadPacket, len(pkt.Data), want)
	}

	f := &ports.Frame{
		Width:         w,
		Height:        h,
		Y:             pkt.Data[:luma],
		YStride:       w,
		UStride:       cw,
		VStride:       cw,
		PTS:           pkt.PTS,
		FrameInterval: d.format.FrameInterval,
	}
	if d.format.Mono {
		f.U, f.V = d.neutral, d.neutral
	} else {
		f.U = pkt.Data[luma : luma+cw*ch]
		f.V = pkt.Data[luma+cw*ch:]
	}
	d.queue = append(d.queue, f)
	return nil
}

// ReceiveFrame returns the oldest queued frame.
func (d *Decoder) ReceiveFrame() (*ports.Frame, error) {
	if len(d.queue) == 0 {
		if d.draining {
			return nil, ports.ErrEndOfStream
		}
		return nil, ports.ErrNeedMoreInput
	}
	f := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]
	return f, nil
}

// Drain marks the end of input.
func (d *Decoder) Drain() error {
	d.draining = true
	return nil
}

// Buffered returns the number of frames waiting to be received.
func (d *Decoder) Buffered() int {
	return len(d.queue)
}

var _ ports.Decoder = (*Decoder)(nil)

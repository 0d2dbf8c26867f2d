package mocks

import (
	"context"

	"github.com/user/asciiplay/pkg/ports"
)

// VideoService is a mock implementation of ports.VideoService.
type VideoService struct {
	OpenFunc func(ctx context.Context, source string) (ports.Media, error)

	// Media is returned by Open when OpenFunc is nil.
	Media *Media

	// Recorded calls for verification
	OpenCalls []string
}

func (m *VideoService) Open(ctx context.Context, source string) (ports.Media, error) {
	m.OpenCalls = append(m.OpenCalls, source)
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, source)
	}
	return m.Media, nil
}

// Media is a mock implementation of ports.Media serving scripted packets.
type Media struct {
	StreamInfo ports.StreamInfo
	Packets    []ports.Packet
	Dec        *Decoder

	// PacketErr is returned once all packets were served (nil = ErrEndOfStream).
	PacketErr error

	// Recorded calls for verification
	NextPacketCalls int
	CloseCalls      int

	pos int
}

// NewMedia creates a media with a pass-through decoder.
func NewMedia(info ports.StreamInfo, packets ...ports.Packet) *Media {
	return &Media{StreamInfo: info, Packets: packets, Dec: &Decoder{}}
}

func (m *Media) Info() ports.StreamInfo {
	return m.StreamInfo
}

func (m *Media) NextPacket() (ports.Packet, error) {
	m.NextPacketCalls++
	if m.pos >= len(m.Packets) {
		if m.PacketErr != nil {
			return ports.Packet{}, m.PacketErr
		}
		return ports.Packet{}, ports.ErrEndOfStream
	}
	pkt := m.Packets[m.pos]
	m.pos++
	return pkt, nil
}

func (m *Media) Decoder() ports.Decoder {
	return m.Dec
}

func (m *Media) Close() error {
	m.CloseCalls++
	return nil
}

// Decoder is a mock implementation of ports.Decoder.
// By default each fed packet yields the frame built by FrameFunc after
// Delay further packets were fed, which models codec reordering buffers.
type Decoder struct {
	FeedFunc    func(pkt ports.Packet) error
	ReceiveFunc func() (*ports.Frame, error)
	DrainFunc   func() error

	// FrameFunc builds the frame for a packet (nil = GrayFrame 4x4).
	FrameFunc func(pkt ports.Packet) *ports.Frame

	// Delay holds this many frames back until more packets arrive or Drain is called.
	Delay int

	// Recorded calls for verification
	Fed          []ports.Packet
	DrainCalls   int
	ReceiveCalls int

	queue    []*ports.Frame
	draining bool
}

func (m *Decoder) Feed(pkt ports.Packet) error {
	m.Fed = append(m.Fed, pkt)
	if m.FeedFunc != nil {
		return m.FeedFunc(pkt)
	}
	var f *ports.Frame
	if m.FrameFunc != nil {
		f = m.FrameFunc(pkt)
	} else {
		f = GrayFrame(4, 4, 128)
		f.PTS = pkt.PTS
	}
	m.queue = append(m.queue, f)
	return nil
}

func (m *Decoder) ReceiveFrame() (*ports.Frame, error) {
	m.ReceiveCalls++
	if m.ReceiveFunc != nil {
		return m.ReceiveFunc()
	}
	if len(m.queue) == 0 || (!m.draining && len(m.queue) <= m.Delay) {
		if m.draining {
			return nil, ports.ErrEndOfStream
		}
		return nil, ports.ErrNeedMoreInput
	}
	f := m.queue[0]
	m.queue = m.queue[1:]
	return f, nil
}

func (m *Decoder) Drain() error {
	m.DrainCalls++
	m.draining = true
	if m.DrainFunc != nil {
		return m.DrainFunc()
	}
	return nil
}

// GrayFrame returns a w x h 4:2:0 frame with uniform luma and neutral chroma.
func GrayFrame(w, h int, luma uint8) *ports.Frame {
	return SolidFrame(w, h, luma, 128, 128)
}

// SolidFrame returns a w x h 4:2:0 frame filled with one YUV value.
func SolidFrame(w, h int, y, u, v uint8) *ports.Frame {
	cw, ch := (w+1)/2, (h+1)/2
	f := &ports.Frame{
		Width:   w,
		Height:  h,
		Y:       make([]byte, w*h),
		U:       make([]byte, cw*ch),
		V:       make([]byte, cw*ch),
		YStride: w,
		UStride: cw,
		VStride: cw,
	}
	fill(f.Y, y)
	fill(f.U, u)
	fill(f.V, v)
	return f
}

func fill(b []byte, v uint8) {
	for i := range b {
		b[i] = v
	}
}

var (
	_ ports.VideoService = (*VideoService)(nil)
	_ ports.Media        = (*Media)(nil)
	_ ports.Decoder      = (*Decoder)(nil)
)

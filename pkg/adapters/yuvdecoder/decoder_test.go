package yuvdecoder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/asciiplay/pkg/ports"
)

func packet(size int, fill byte, pts time.Duration) ports.Packet {
	data := make([]byte, size)
	for i := range data {
		data[i] = fill
	}
	return ports.Packet{Kind: ports.KindVideo, Data: data, PTS: pts}
}

func TestDecoder_FeedReceive(t *testing.T) {
	d := New(Format{Width: 4, Height: 2, FrameInterval: 40 * time.Millisecond})

	_, err := d.ReceiveFrame()
	assert.ErrorIs(t, err, ports.ErrNeedMoreInput)

	pkt := packet(4*2+2*2*1, 0, 80*time.Millisecond)
	for i := 8; i < 10; i++ {
		pkt.Data[i] = 100
	}
	for i := 10; i < 12; i++ {
		pkt.Data[i] = 200
	}
	require.NoError(t, d.Feed(pkt))
	assert.Equal(t, 1, d.Buffered())

	f, err := d.ReceiveFrame()
	require.NoError(t, err)
	assert.Equal(t, 4, f.Width)
	assert.Equal(t, 2, f.Height)
	assert.Equal(t, 4, f.YStride)
	assert.Equal(t, 2, f.UStride)
	assert.Len(t, f.Y, 8)
	assert.Equal(t, []byte{100, 100}, f.U)
	assert.Equal(t, []byte{200, 200}, f.V)
	assert.Equal(t, 80*time.Millisecond, f.PTS)
	assert.Equal(t, 40*time.Millisecond, f.FrameInterval)

	_, err = d.ReceiveFrame()
	assert.ErrorIs(t, err, ports.ErrNeedMoreInput)
}

func TestDecoder_Mono(t *testing.T) {
	d := New(Format{Width: 3, Height: 3, Mono: true})

	require.NoError(t, d.Feed(packet(9, 50, 0)))
	f, err := d.ReceiveFrame()
	require.NoError(t, err)

	cw, ch := f.ChromaSize()
	assert.Len(t, f.U, cw*ch)
	for _, v := range f.U {
		assert.Equal(t, byte(128), v)
	}
	assert.Equal(t, f.U, f.V)
}

func TestDecoder_Drain(t *testing.T) {
	d := New(Format{Width: 2, Height: 2})
	require.NoError(t, d.Feed(packet(6, 1, 0)))
	require.NoError(t, d.Feed(packet(6, 2, 0)))
	require.NoError(t, d.Drain())

	f, err := d.ReceiveFrame()
	require.NoError(t, err)
	assert.Equal(t, byte(1), f.Y[0])
	f, err = d.ReceiveFrame()
	require.NoError(t, err)
	assert.Equal(t, byte(2), f.Y[0])

	_, err = d.ReceiveFrame()
	assert.ErrorIs(t, err, ports.ErrEndOfStream)

	assert.ErrorIs(t, d.Feed(packet(6, 3, 0)), ErrDrained)
}

func TestDecoder_Errors(t *testing.T) {
	d := New(Format{Width: 2, Height: 2})

	assert.ErrorIs(t, d.Feed(packet(5, 0, 0)), ErrBadPacket)
	assert.ErrorIs(t, d.Feed(ports.Packet{Kind: ports.KindAudio, Data: make([]byte, 6)}), ErrNotVideo)
	assert.Equal(t, 0, d.Buffered())
}

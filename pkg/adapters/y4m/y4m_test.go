package y4m

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/asciiplay/pkg/ports"
)

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader("YUV4MPEG2 W320 H240 F30000:1001 Ip A1:1 C420jpeg XYSCSS=420JPEG")
	require.NoError(t, err)

	assert.Equal(t, 320, h.Width)
	assert.Equal(t, 240, h.Height)
	assert.Equal(t, Rational{Num: 30000, Den: 1001}, h.FrameRate)
	assert.Equal(t, "420jpeg", h.Chroma)
	assert.False(t, h.Mono())
	assert.Equal(t, 320*240+2*160*120, h.FrameSize())
	assert.Equal(t, 33366666*time.Nanosecond, h.FrameInterval())
}

func TestParseHeader_Defaults(t *testing.T) {
	h, err := ParseHeader("YUV4MPEG2 W3 H3")
	require.NoError(t, err)

	assert.Equal(t, "420jpeg", h.Chroma)
	assert.Equal(t, time.Duration(0), h.FrameInterval())
	// Odd sizes round the chroma planes up.
	assert.Equal(t, 9+2*4, h.FrameSize())
}

func TestParseHeader_Mono(t *testing.T) {
	h, err := ParseHeader("YUV4MPEG2 W4 H2 F25:1 Cmono")
	require.NoError(t, err)

	assert.True(t, h.Mono())
	assert.Equal(t, 8, h.FrameSize())
	assert.Equal(t, 40*time.Millisecond, h.FrameInterval())
}

func TestParseHeader_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"no signature", "RIFF W4 H4", ErrBadHeader},
		{"empty", "", ErrBadHeader},
		{"missing size", "YUV4MPEG2 F25:1", ErrBadHeader},
		{"bad width", "YUV4MPEG2 Wx H4", ErrBadHeader},
		{"bad rate", "YUV4MPEG2 W4 H4 F25", ErrBadHeader},
		{"unknown tag", "YUV4MPEG2 W4 H4 Z1", ErrBadHeader},
		{"too wide", "YUV4MPEG2 W200000 H4 F30:1", ErrBadHeader},
		{"too tall", "YUV4MPEG2 W4 H16385 F30:1", ErrBadHeader},
		{"444", "YUV4MPEG2 W4 H4 C444", ErrUnsupportedChroma},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.line)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewReader_OversizedHeader(t *testing.T) {
	_, err := NewReader(strings.NewReader("YUV4MPEG2 W200000 H200000 F30:1\nFRAME\nxx"))
	assert.ErrorIs(t, err, ErrBadHeader)

	h, err := ParseHeader("YUV4MPEG2 W16384 H16384 F30:1")
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, h.Width)
}

func TestReader_RoundTrip(t *testing.T) {
	h := Header{Width: 4, Height: 2, FrameRate: Rational{Num: 25, Den: 1}, Chroma: "420jpeg"}
	var buf bytes.Buffer
	w, err := NewWriter(&buf, h)
	require.NoError(t, err)

	frames := [][]byte{
		bytes.Repeat([]byte{1}, h.FrameSize()),
		bytes.Repeat([]byte{2}, h.FrameSize()),
		bytes.Repeat([]byte{3}, h.FrameSize()),
	}
	for _, f := range frames {
		require.NoError(t, w.WriteFrame(f))
	}

	r, err := NewReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, h, r.Header())

	for i, want := range frames {
		pkt, err := r.NextPacket()
		require.NoError(t, err)
		assert.Equal(t, ports.KindVideo, pkt.Kind)
		assert.Equal(t, want, pkt.Data)
		assert.Equal(t, time.Duration(i)*40*time.Millisecond, pkt.PTS)
	}

	_, err = r.NextPacket()
	assert.ErrorIs(t, err, ports.ErrEndOfStream)
}

func TestReader_FrameParameters(t *testing.T) {
	stream := "YUV4MPEG2 W2 H2 Cmono\nFRAME Ixyz\n\x01\x02\x03\x04"
	r, err := NewReader(strings.NewReader(stream))
	require.NoError(t, err)

	pkt, err := r.NextPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, pkt.Data)
}

func TestReader_Truncated(t *testing.T) {
	stream := "YUV4MPEG2 W2 H2 Cmono\nFRAME\n\x01\x02"
	r, err := NewReader(strings.NewReader(stream))
	require.NoError(t, err)

	_, err = r.NextPacket()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReader_BadFrameHeader(t *testing.T) {
	stream := "YUV4MPEG2 W2 H2 Cmono\nFRAMX\n\x01\x02\x03\x04"
	r, err := NewReader(strings.NewReader(stream))
	require.NoError(t, err)

	_, err = r.NextPacket()
	assert.ErrorIs(t, err, ErrBadFrame)
}

func TestNewReader_Empty(t *testing.T) {
	_, err := NewReader(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestNewReader_LongHeader(t *testing.T) {
	_, err := NewReader(strings.NewReader("YUV4MPEG2 " + strings.Repeat("X", 2000) + "\n"))
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestWriter_WrongSize(t *testing.T) {
	w, err := NewWriter(&bytes.Buffer{}, Header{Width: 2, Height: 2, Chroma: "mono"})
	require.NoError(t, err)

	assert.Error(t, w.WriteFrame([]byte{1, 2, 3}))
}

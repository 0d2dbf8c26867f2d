package y4m

import (
	"fmt"
	"io"
)

// Writer produces a YUV4MPEG2 stream.
type Writer struct {
	w      io.Writer
	header Header
}

// NewWriter writes the stream header for h to w.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	line := fmt.Sprintf("%s W%d H%d F%d:%d Ip A1:1", streamMagic, h.Width, h.Height, h.FrameRate.Num, h.FrameRate.Den)
	if h.Chroma != "" {
		line += " C" + h.Chroma
	}
	if _, err := io.WriteString(w, line+"\n"); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &Writer{w: w, header: h}, nil
}

// WriteFrame writes one frame. data holds the Y plane followed by U and V
// (Y only for mono streams), without padding.
func (w *Writer) WriteFrame(data []byte) error {
	if len(data) != w.header.FrameSize() {
		return fmt.Errorf("y4m: frame is %d bytes, want %d", len(data), w.header.FrameSize())
	}
	if _, err := io.WriteString(w.w, frameMagic+"\n"); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

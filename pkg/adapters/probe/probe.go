// Package probe reads video stream properties from MP4 files.
package probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// ErrNoVideoTrack is returned when the file has no video track.
var ErrNoVideoTrack = errors.New("probe: no video track found")

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecVP9     Codec = "vp9"
	CodecUnknown Codec = "unknown"
)

// Info describes the first video track of a file.
type Info struct {
	Codec         Codec
	Width         int
	Height        int
	FrameInterval time.Duration // Average sample duration, 0 if unknown
}

// IsMP4 reports whether path has an ISO BMFF extension.
func IsMP4(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return true
	}
	return false
}

// FromFile probes an MP4 file.
func FromFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return FromReader(f)
}

// FromBytes probes MP4 data held in memory.
func FromBytes(data []byte) (Info, error) {
	return FromReader(bytes.NewReader(data))
}

// FromReader probes MP4 data from an io.ReadSeeker. Media data is skipped,
// not read.
func FromReader(reader io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(reader, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("seek: %w", err)
	}

	return fromMP4File(mp4File)
}

func fromMP4File(mp4File *mp4.File) (Info, error) {
	var moov *mp4.MoovBox
	if mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	} else {
		moov = mp4File.Moov
	}
	if moov == nil {
		return Info{}, fmt.Errorf("no moov box found")
	}

	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		info := trackInfo(trak)
		if info.FrameInterval == 0 && moov.Mvex != nil && trak.Tkhd != nil {
			info.FrameInterval = trexInterval(moov.Mvex, trak)
		}
		return info, nil
	}

	return Info{}, ErrNoVideoTrack
}

func trackInfo(trak *mp4.TrakBox) Info {
	info := Info{Codec: CodecUnknown}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return info
	}
	stbl := trak.Mdia.Minf.Stbl

	if stbl.Stsd != nil {
		for _, child := range stbl.Stsd.Children {
			if codec := codecFromType(child.Type()); codec != CodecUnknown {
				info.Codec = codec
				if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
					info.Width = int(vse.Width)
					info.Height = int(vse.Height)
				}
				break
			}
		}
	}

	if stbl.Stts != nil && trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale > 0 {
		var samples, ticks uint64
		for i, count := range stbl.Stts.SampleCount {
			samples += uint64(count)
			ticks += uint64(count) * uint64(stbl.Stts.SampleTimeDelta[i])
		}
		if samples > 0 {
			info.FrameInterval = ticksToDuration(ticks/samples, trak.Mdia.Mdhd.Timescale)
		}
	}

	return info
}

// trexInterval uses the default sample duration of a fragmented track.
func trexInterval(mvex *mp4.MvexBox, trak *mp4.TrakBox) time.Duration {
	if trak.Mdia.Mdhd == nil || trak.Mdia.Mdhd.Timescale == 0 {
		return 0
	}
	for _, trex := range mvex.Trexs {
		if trex.TrackID == trak.Tkhd.TrackID {
			return ticksToDuration(uint64(trex.DefaultSampleDuration), trak.Mdia.Mdhd.Timescale)
		}
	}
	return 0
}

func codecFromType(boxType string) Codec {
	switch boxType {
	case "avc1", "avc3":
		return CodecH264
	case "hvc1", "hev1":
		return CodecHEVC
	case "av01":
		return CodecAV1
	case "vp09":
		return CodecVP9
	}
	return CodecUnknown
}

func ticksToDuration(ticks uint64, timescale uint32) time.Duration {
	return time.Duration(ticks * uint64(time.Second) / uint64(timescale))
}

package probe

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Eyevinn/mp4ff/av1"
	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFragmentedMP4 writes ftyp and moov for one track of the given kind,
// followed by a single fragment when the track is video.
func buildFragmentedMP4(t *testing.T, kind string, timescale, sampleDur uint32) []byte {
	t.Helper()

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, kind, "en")
	trak := init.Moov.Trak

	if kind == "video" {
		av1C := &mp4.Av1CBox{CodecConfRec: av1.CodecConfRec{
			Version:            1,
			SeqLevelIdx0:       8,
			ChromaSubsamplingX: 1,
			ChromaSubsamplingY: 1,
		}}
		trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("av01", 320, 240, av1C))
		trak.Tkhd.Width = mp4.Fixed32(320 << 16)
		trak.Tkhd.Height = mp4.Fixed32(240 << 16)
		for _, trex := range init.Moov.Mvex.Trexs {
			trex.DefaultSampleDuration = sampleDur
		}
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "av01", "mp41"})
	require.NoError(t, ftyp.Encode(&buf))
	require.NoError(t, init.Moov.Encode(&buf))

	if kind == "video" {
		frag, err := mp4.CreateFragment(1, 1)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			data := []byte{0x12, 0x00, 0x0a, 0x00}
			frag.AddFullSample(mp4.FullSample{
				Sample: mp4.Sample{
					Flags: mp4.SyncSampleFlags,
					Size:  uint32(len(data)),
					Dur:   sampleDur,
				},
				DecodeTime: uint64(i) * uint64(sampleDur),
				Data:       data,
			})
		}
		require.NoError(t, frag.Encode(&buf))
	}

	return buf.Bytes()
}

func TestFromBytes_Video(t *testing.T) {
	data := buildFragmentedMP4(t, "video", 30000, 1000)

	info, err := FromBytes(data)
	require.NoError(t, err)

	assert.Equal(t, CodecAV1, info.Codec)
	assert.Equal(t, 320, info.Width)
	assert.Equal(t, 240, info.Height)
	assert.InDelta(t, float64(33333333*time.Nanosecond), float64(info.FrameInterval), float64(time.Microsecond))
}

func TestFromBytes_NoVideoTrack(t *testing.T) {
	data := buildFragmentedMP4(t, "audio", 48000, 1024)

	_, err := FromBytes(data)
	assert.ErrorIs(t, err, ErrNoVideoTrack)
}

func TestFromBytes_Invalid(t *testing.T) {
	_, err := FromBytes([]byte("this is not an mp4 file"))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, buildFragmentedMP4(t, "video", 25, 1), 0o644))

	info, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 40*time.Millisecond, info.FrameInterval)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.mp4"))
	assert.Error(t, err)
}

func TestFromFile_LargeMediaDataNotLoaded(t *testing.T) {
	data := buildFragmentedMP4(t, "video", 25, 1)

	// The fragment's mdat is the last box: 8 byte header and 3 samples of 4 bytes.
	const mdatSize = 256 << 20
	mdatStart := len(data) - (8 + 3*4)
	require.Equal(t, "mdat", string(data[mdatStart+4:mdatStart+8]))
	binary.BigEndian.PutUint32(data[mdatStart:], mdatSize)

	path := filepath.Join(t.TempDir(), "large.mp4")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(int64(mdatStart+mdatSize)))
	require.NoError(t, f.Close())

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	info, err := FromFile(path)
	runtime.ReadMemStats(&after)

	require.NoError(t, err)
	assert.Equal(t, CodecAV1, info.Codec)
	assert.Equal(t, 40*time.Millisecond, info.FrameInterval)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20))
}

func TestIsMP4(t *testing.T) {
	assert.True(t, IsMP4("a.mp4"))
	assert.True(t, IsMP4("b.MOV"))
	assert.True(t, IsMP4("/tmp/c.m4v"))
	assert.False(t, IsMP4("d.mkv"))
	assert.False(t, IsMP4("e.y4m"))
}

func TestCodecFromType(t *testing.T) {
	assert.Equal(t, CodecH264, codecFromType("avc1"))
	assert.Equal(t, CodecHEVC, codecFromType("hev1"))
	assert.Equal(t, CodecVP9, codecFromType("vp09"))
	assert.Equal(t, CodecUnknown, codecFromType("mp4a"))
}

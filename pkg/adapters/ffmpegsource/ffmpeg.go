package ffmpegsource

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// findFFmpeg searches for ffmpeg in PATH and common locations.
// A non-empty custom path is used as is.
func findFFmpeg(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, customPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}

	path, err := exec.LookPath(execName)
	if err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}

	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

// ffmpegArgs returns the arguments that decode source to a 4:2:0 YUV4MPEG2
// stream on stdout, dropping audio and subtitles.
func ffmpegArgs(source string) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:v:0",
		"-an", "-sn",
		"-pix_fmt", "yuv420p",
		"-f", "yuv4mpegpipe",
		"pipe:1",
	}
}

// limitedBuffer keeps the last max bytes written to it.
type limitedBuffer struct {
	max  int
	data []byte
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	if len(b.data) > b.max {
		b.data = b.data[len(b.data)-b.max:]
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return string(b.data)
}

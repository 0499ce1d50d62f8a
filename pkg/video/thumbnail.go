package video

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrNoThumbnail is returned when ffmpeg exits cleanly without producing an image.
var ErrNoThumbnail = errors.New("video: no thumbnail produced")

// Thumbnailer renders a preview image for a video.
type Thumbnailer interface {
	// Thumbnail returns JPEG bytes for the first frame of the video at path.
	Thumbnail(ctx context.Context, path string) ([]byte, error)
}

// FFmpegThumbnailer extracts the first frame with a one-shot ffmpeg process
// writing JPEG to stdout.
type FFmpegThumbnailer struct {
	// Binary is the ffmpeg executable (default "ffmpeg").
	Binary string

	// Timeout bounds a single extraction (default 10s).
	Timeout time.Duration
}

// NewFFmpegThumbnailer creates a thumbnailer using the given ffmpeg binary.
func NewFFmpegThumbnailer(binary string) *FFmpegThumbnailer {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegThumbnailer{Binary: binary, Timeout: 10 * time.Second}
}

func (t *FFmpegThumbnailer) args(path string) []string {
	return []string{
		"-loglevel", "error",
		"-i", path, // input video
		"-frames:v", "1", // just one frame
		"-f", "image2", // force image format
		"-q:v", "2", // quality (1-31, lower is better)
		"-update", "1",
		"pipe:1",
	}
}

// Thumbnail implements Thumbnailer.
func (t *FFmpegThumbnailer) Thumbnail(ctx context.Context, path string) ([]byte, error) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.Binary, t.args(path)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrapf(err, "ffmpeg: %s", msg)
		}
		return nil, errors.Wrap(err, "ffmpeg")
	}
	if stdout.Len() == 0 {
		return nil, ErrNoThumbnail
	}
	return stdout.Bytes(), nil
}

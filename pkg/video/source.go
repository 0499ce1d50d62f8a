// Package video delivers decoded frames to the centroid pipeline.
package video

import (
	"context"
	"errors"
	"io"

	"github.com/teslashibe/go-centroid/pkg/centroid"
)

// Sentinel errors for frame sources.
var (
	// ErrOpen is returned when a video cannot be opened.
	ErrOpen = errors.New("video: cannot open source")

	// ErrNoFrameRate is returned when a video does not report a usable frame rate.
	ErrNoFrameRate = errors.New("video: frame rate unavailable")

	// ErrUnsupportedFormat is returned for frames that cannot be converted to RGB.
	ErrUnsupportedFormat = errors.New("video: unsupported pixel format")
)

// Frame is one decoded video frame.
type Frame struct {
	// Index is the zero-based position of the frame in the stream.
	Index int

	// Image is nil when the frame could not be decoded.
	Image centroid.ColorGrid
}

// Timestamp returns the frame time in seconds for the given frame rate.
func (f Frame) Timestamp(fps float64) float64 {
	return float64(f.Index) / fps
}

// Source yields frames in order. It is not restartable.
type Source interface {
	// Next returns the next frame, or io.EOF when the stream is exhausted.
	Next(ctx context.Context) (Frame, error)

	// FrameRate returns frames per second.
	FrameRate() float64

	// Close releases resources.
	Close() error
}

// SliceSource serves frames from memory. A nil entry is delivered as an
// undecodable frame.
type SliceSource struct {
	frames []centroid.ColorGrid
	fps    float64
	next   int
}

// NewSliceSource creates a source over frames at fps frames per second.
func NewSliceSource(fps float64, frames ...centroid.ColorGrid) *SliceSource {
	return &SliceSource{frames: frames, fps: fps}
}

// Next implements Source.
func (s *SliceSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.next >= len(s.frames) {
		return Frame{}, io.EOF
	}
	f := Frame{Index: s.next, Image: s.frames[s.next]}
	s.next++
	return f, nil
}

// FrameRate implements Source.
func (s *SliceSource) FrameRate() float64 { return s.fps }

// Close implements Source.
func (s *SliceSource) Close() error { return nil }

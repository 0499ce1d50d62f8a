// Package preview plays a video in a window, optionally showing the
// binarized mask with the largest region marked.
package preview

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/teslashibe/go-centroid/internal/log"
	"github.com/teslashibe/go-centroid/pkg/centroid"
	"github.com/teslashibe/go-centroid/pkg/video"
)

// KeyEscape is the key code that stops playback.
const KeyEscape = 27

// Display shows frames and reports key presses.
type Display interface {
	// Show draws grid, with a marker at mark when it is non-nil.
	Show(grid centroid.ColorGrid, mark *centroid.Coordinate) error

	// WaitKey waits up to ms milliseconds and returns the pressed key or -1.
	WaitKey(ms int) int

	// IsOpen reports whether the display is still visible.
	IsOpen() bool
}

// Player drives a Display from a video source.
type Player struct {
	display   Display
	binarizer *centroid.Binarizer
}

// NewPlayer creates a player. A nil binarizer shows the original frames.
func NewPlayer(d Display, b *centroid.Binarizer) *Player {
	return &Player{display: d, binarizer: b}
}

// Compose returns the grid to display for frame and, in mask mode, the
// centroid of the largest region.
func (p *Player) Compose(frame centroid.ColorGrid) (centroid.ColorGrid, *centroid.Coordinate, error) {
	if p.binarizer == nil {
		return frame, nil, nil
	}
	bin, err := p.binarizer.ToBinary(frame)
	if err != nil {
		return nil, nil, err
	}
	groups, err := centroid.FindConnectedGroups(bin)
	if err != nil {
		return nil, nil, err
	}
	mask, err := centroid.ToColor(bin)
	if err != nil {
		return nil, nil, err
	}
	if c, ok := centroid.Largest(groups); ok {
		return mask, &c, nil
	}
	return mask, nil, nil
}

// Play shows the frames of src at its frame rate and returns how many were
// shown. ESC or closing the display stops playback early.
func (p *Player) Play(ctx context.Context, src video.Source) (int, error) {
	fps := src.FrameRate()
	if fps <= 0 {
		return 0, video.ErrNoFrameRate
	}
	delay := frameDelay(fps)

	shown := 0
	for p.display.IsOpen() {
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return shown, nil
		}
		if err != nil {
			return shown, err
		}
		if frame.Image == nil {
			log.Debug("skipping undecodable frame", "frame", frame.Index)
			continue
		}

		grid, mark, err := p.Compose(frame.Image)
		if err != nil {
			return shown, errors.Wrapf(err, "frame %d", frame.Index)
		}
		if err := p.display.Show(grid, mark); err != nil {
			return shown, errors.Wrapf(err, "show frame %d", frame.Index)
		}
		shown++

		if p.display.WaitKey(delay) == KeyEscape {
			log.Info("playback stopped", "frames", shown)
			return shown, nil
		}
	}
	return shown, nil
}

// frameDelay returns the per-frame wait in milliseconds, at least 1.
func frameDelay(fps float64) int {
	ms := int(1000 / fps)
	if ms < 1 {
		return 1
	}
	return ms
}

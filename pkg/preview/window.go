package preview

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-centroid/pkg/centroid"
	"github.com/teslashibe/go-centroid/pkg/video"
)

var markerColor = color.RGBA{255, 0, 0, 255}

// Window is a Display backed by an OpenCV HighGUI window.
type Window struct {
	window *gocv.Window
	radius int
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title), radius: 6}
}

// Show converts grid to a Mat and draws it, with a filled circle at mark.
func (w *Window) Show(grid centroid.ColorGrid, mark *centroid.Coordinate) error {
	mat, err := video.GridToMat(grid)
	if err != nil {
		return err
	}
	defer mat.Close()

	if mark != nil {
		gocv.Circle(&mat, image.Pt(mark.X, mark.Y), w.radius, markerColor, -1)
	}
	w.window.IMShow(mat)
	return nil
}

// WaitKey implements Display.
func (w *Window) WaitKey(ms int) int {
	return w.window.WaitKey(ms)
}

// IsOpen implements Display.
func (w *Window) IsOpen() bool {
	return w.window.IsOpen()
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}

package video

import (
	"context"
	"io"
	"math"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-centroid/internal/log"
	"github.com/teslashibe/go-centroid/pkg/centroid"
)

// CaptureSource decodes a video file with OpenCV.
type CaptureSource struct {
	path       string
	capture    *gocv.VideoCapture
	mat        gocv.Mat
	fps        float64
	frameCount int
	index      int
}

// OpenFile opens a video file for sequential decoding.
func OpenFile(path string) (*CaptureSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(ErrOpen, "%s: %v", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Wrapf(ErrOpen, "%s: not a regular file", path)
	}

	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrOpen, "%s: %v", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrapf(ErrOpen, "%s", path)
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		capture.Close()
		return nil, errors.Wrapf(ErrNoFrameRate, "%s reports %v fps", path, fps)
	}

	s := &CaptureSource{
		path:       path,
		capture:    capture,
		mat:        gocv.NewMat(),
		fps:        fps,
		frameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
	}
	log.Debug("video opened", "path", path, "fps", fps, "frames", s.frameCount)
	return s, nil
}

// Next implements Source. A grabbed frame that cannot be converted is
// returned with a nil Image rather than as an error.
func (s *CaptureSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if ok := s.capture.Read(&s.mat); !ok {
		return Frame{}, io.EOF
	}

	f := Frame{Index: s.index}
	s.index++

	if s.mat.Empty() {
		log.Debug("empty frame", "path", s.path, "index", f.Index)
		return f, nil
	}

	grid, err := MatToGrid(s.mat)
	if err != nil {
		log.Warn("frame conversion failed", "path", s.path, "index", f.Index, "error", err)
		return f, nil
	}
	f.Image = grid
	return f, nil
}

// FrameRate implements Source.
func (s *CaptureSource) FrameRate() float64 { return s.fps }

// FrameCount returns the container's reported frame count, which may be 0
// or approximate.
func (s *CaptureSource) FrameCount() int { return s.frameCount }

// Close implements Source.
func (s *CaptureSource) Close() error {
	s.mat.Close()
	return s.capture.Close()
}

// MatToGrid converts an 8-bit BGR, BGRA or grayscale Mat to a ColorGrid.
func MatToGrid(mat gocv.Mat) (centroid.ColorGrid, error) {
	src := mat
	switch mat.Channels() {
	case 3:
	case 4, 1:
		conv := gocv.NewMat()
		defer conv.Close()
		code := gocv.ColorBGRAToBGR
		if mat.Channels() == 1 {
			code = gocv.ColorGrayToBGR
		}
		gocv.CvtColor(mat, &conv, code)
		src = conv
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%d channels", mat.Channels())
	}
	if src.Type() != gocv.MatTypeCV8UC3 {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "mat type %v", src.Type())
	}

	rows, cols := src.Rows(), src.Cols()
	data := src.ToBytes()
	if len(data) < rows*cols*3 {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "short buffer: %d bytes for %dx%d", len(data), cols, rows)
	}

	grid := make(centroid.ColorGrid, rows)
	for r := 0; r < rows; r++ {
		row := make([]centroid.RGB, cols)
		base := r * cols * 3
		for c := 0; c < cols; c++ {
			i := base + c*3
			row[c] = centroid.NewRGB(data[i+2], data[i+1], data[i])
		}
		grid[r] = row
	}
	return grid, nil
}

// GridToMat converts a ColorGrid to an 8-bit BGR Mat. The caller must Close it.
func GridToMat(grid centroid.ColorGrid) (gocv.Mat, error) {
	rows, cols := grid.Rows(), grid.Cols()
	if rows == 0 || cols == 0 {
		return gocv.NewMat(), errors.Wrap(centroid.ErrMalformedGrid, "empty grid")
	}

	data := make([]byte, rows*cols*3)
	for r, row := range grid {
		if len(row) != cols {
			return gocv.NewMat(), errors.Wrapf(centroid.ErrMalformedGrid, "row %d has %d columns, want %d", r, len(row), cols)
		}
		base := r * cols * 3
		for c, px := range row {
			i := base + c*3
			data[i] = byte(px.B())
			data[i+1] = byte(px.G())
			data[i+2] = byte(px.R())
		}
	}
	m, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "new mat")
	}
	defer m.Close()

	// m may alias data; the clone owns its pixels.
	out := m.Clone()
	runtime.KeepAlive(data)
	return out, nil
}

package video

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/teslashibe/go-centroid/pkg/centroid"
)

func TestSliceSource(t *testing.T) {
	frames := []centroid.ColorGrid{
		{{0xFF0000}},
		nil,
		{{0x00FF00}},
	}
	src := NewSliceSource(4, frames...)
	defer src.Close()

	if src.FrameRate() != 4 {
		t.Errorf("FrameRate: got %v, want 4", src.FrameRate())
	}

	ctx := context.Background()
	for i := range frames {
		f, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}
		if f.Index != i {
			t.Errorf("frame %d: got index %d", i, f.Index)
		}
		if (f.Image == nil) != (frames[i] == nil) {
			t.Errorf("frame %d: image presence mismatch", i)
		}
	}

	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("after last frame: got %v, want io.EOF", err)
	}
}

func TestSliceSource_Cancelled(t *testing.T) {
	src := NewSliceSource(30, centroid.ColorGrid{{0}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestFrame_Timestamp(t *testing.T) {
	tests := []struct {
		index  int
		fps    float64
		expect float64
	}{
		{index: 0, fps: 30, expect: 0},
		{index: 45, fps: 30, expect: 1.5},
		{index: 11, fps: 4, expect: 2.75},
	}

	for _, tc := range tests {
		got := Frame{Index: tc.index}.Timestamp(tc.fps)
		if got != tc.expect {
			t.Errorf("Timestamp(%d @ %v fps): got %v, want %v", tc.index, tc.fps, got, tc.expect)
		}
	}
}

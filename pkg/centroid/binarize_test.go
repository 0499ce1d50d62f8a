package centroid

import (
	"errors"
	"testing"
)

// fixedDistance returns the distance stored for a pixel value, ignoring the target.
type fixedDistance map[RGB]float64

func (f fixedDistance) Distance(a, _ RGB) float64 { return f[a] }

func TestBinarizer_ToBinary(t *testing.T) {
	b := NewBinarizer(nil, 0xFF0000, 100)

	grid := ColorGrid{
		{0xFF0000, 0x000000, 0xF00000},
		{0x00FF00, 0xFF1010, 0x0000FF},
	}
	got, err := b.ToBinary(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expect := BinaryGrid{
		{1, 0, 1},
		{0, 1, 0},
	}
	for r := range expect {
		for c := range expect[r] {
			if got[r][c] != expect[r][c] {
				t.Errorf("pixel (%d,%d): got %d, want %d", r, c, got[r][c], expect[r][c])
			}
		}
	}
}

func TestBinarizer_ThresholdIsExclusive(t *testing.T) {
	d := fixedDistance{0x000001: 9.999, 0x000002: 10, 0x000003: 10.001}
	b := NewBinarizer(d, 0, 10)

	got, err := b.ToBinary(ColorGrid{{0x000001, 0x000002, 0x000003}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		col    int
		expect uint8
	}{
		{name: "below threshold", col: 0, expect: 1},
		{name: "at threshold", col: 1, expect: 0},
		{name: "above threshold", col: 2, expect: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got[0][tc.col] != tc.expect {
				t.Errorf("got %d, want %d", got[0][tc.col], tc.expect)
			}
		})
	}
}

func TestBinarizer_ZeroThreshold(t *testing.T) {
	b := NewBinarizer(Euclidean{}, 0x123456, 0)
	got, err := b.ToBinary(ColorGrid{{0x123456}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0][0] != 0 {
		t.Errorf("exact match with zero threshold: got %d, want 0", got[0][0])
	}
}

func TestBinarizer_NilInput(t *testing.T) {
	b := NewBinarizer(nil, 0, 10)

	if _, err := b.ToBinary(nil); !errors.Is(err, ErrNilGrid) {
		t.Errorf("nil grid: got %v, want ErrNilGrid", err)
	}
	if _, err := b.ToBinary(ColorGrid{{0}, nil}); !errors.Is(err, ErrNilGrid) {
		t.Errorf("nil row: got %v, want ErrNilGrid", err)
	}
}

func TestToColor(t *testing.T) {
	got, err := ToColor(BinaryGrid{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expect := ColorGrid{{White, Black}, {Black, White}}
	for r := range expect {
		for c := range expect[r] {
			if got[r][c] != expect[r][c] {
				t.Errorf("pixel (%d,%d): got %06X, want %06X", r, c, got[r][c], expect[r][c])
			}
		}
	}

	if _, err := ToColor(nil); !errors.Is(err, ErrNilGrid) {
		t.Errorf("nil grid: got %v, want ErrNilGrid", err)
	}
}

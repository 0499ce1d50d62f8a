package centroid

import (
	"errors"
	"math/rand"
	"testing"
)

func TestFindConnectedGroups(t *testing.T) {
	tests := []struct {
		name   string
		grid   BinaryGrid
		expect []Group
	}{
		{
			name:   "single pixel",
			grid:   BinaryGrid{{1}},
			expect: []Group{{Size: 1, Centroid: Coordinate{0, 0}}},
		},
		{
			name:   "all background",
			grid:   BinaryGrid{{0, 0}, {0, 0}},
			expect: nil,
		},
		{
			name: "L shape truncates centroid",
			grid: BinaryGrid{
				{0, 1},
				{1, 1},
			},
			expect: []Group{{Size: 3, Centroid: Coordinate{0, 0}}},
		},
		{
			name: "diagonal pixels are separate",
			grid: BinaryGrid{
				{1, 0},
				{0, 1},
			},
			expect: []Group{
				{Size: 1, Centroid: Coordinate{1, 1}},
				{Size: 1, Centroid: Coordinate{0, 0}},
			},
		},
		{
			name:   "horizontal line",
			grid:   BinaryGrid{{1, 1, 1}},
			expect: []Group{{Size: 3, Centroid: Coordinate{1, 0}}},
		},
		{
			name:   "vertical line",
			grid:   BinaryGrid{{1}, {1}, {1}},
			expect: []Group{{Size: 3, Centroid: Coordinate{0, 1}}},
		},
		{
			name: "largest first",
			grid: BinaryGrid{
				{1, 0, 0, 0},
				{0, 0, 1, 1},
				{0, 0, 1, 1},
			},
			expect: []Group{
				{Size: 4, Centroid: Coordinate{2, 1}},
				{Size: 1, Centroid: Coordinate{0, 0}},
			},
		},
		{
			name: "equal size and x break on y",
			grid: BinaryGrid{
				{1},
				{0},
				{1},
			},
			expect: []Group{
				{Size: 1, Centroid: Coordinate{0, 2}},
				{Size: 1, Centroid: Coordinate{0, 0}},
			},
		},
		{
			name: "U shape joins through the bottom",
			grid: BinaryGrid{
				{1, 0, 1},
				{1, 0, 1},
				{1, 1, 1},
			},
			expect: []Group{{Size: 7, Centroid: Coordinate{1, 1}}},
		},
		{
			name:   "non-zero values count as foreground",
			grid:   BinaryGrid{{2, 255}},
			expect: []Group{{Size: 2, Centroid: Coordinate{0, 0}}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FindConnectedGroups(tc.grid)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.expect) {
				t.Fatalf("groups: got %d (%v), want %d (%v)", len(got), got, len(tc.expect), tc.expect)
			}
			for i := range got {
				if got[i] != tc.expect[i] {
					t.Errorf("group %d: got %+v, want %+v", i, got[i], tc.expect[i])
				}
			}
		})
	}
}

func TestFindConnectedGroups_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		grid   BinaryGrid
		expect error
	}{
		{name: "nil grid", grid: nil, expect: ErrNilGrid},
		{name: "nil row", grid: BinaryGrid{{1}, nil}, expect: ErrNilGrid},
		{name: "nil first row", grid: BinaryGrid{nil}, expect: ErrNilGrid},
		{name: "no rows", grid: BinaryGrid{}, expect: ErrMalformedGrid},
		{name: "no columns", grid: BinaryGrid{{}}, expect: ErrMalformedGrid},
		{name: "ragged rows", grid: BinaryGrid{{1, 1}, {1}}, expect: ErrMalformedGrid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FindConnectedGroups(tc.grid)
			if !errors.Is(err, tc.expect) {
				t.Errorf("got err %v, want %v", err, tc.expect)
			}
		})
	}
}

func TestFindConnectedGroups_AllForeground(t *testing.T) {
	// 250,000 pixels in one region; a recursive fill would exhaust the stack.
	const rows, cols = 500, 500
	grid := make(BinaryGrid, rows)
	for r := range grid {
		grid[r] = make([]uint8, cols)
		for c := range grid[r] {
			grid[r][c] = 1
		}
	}

	groups, err := FindConnectedGroups(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups: got %d, want 1", len(groups))
	}
	if groups[0].Size != rows*cols {
		t.Errorf("size: got %d, want %d", groups[0].Size, rows*cols)
	}
	if want := (Coordinate{X: 249, Y: 249}); groups[0].Centroid != want {
		t.Errorf("centroid: got %+v, want %+v", groups[0].Centroid, want)
	}
}

func TestFindConnectedGroups_RandomGrids(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		rows, cols := 1+rng.Intn(40), 1+rng.Intn(40)
		grid := make(BinaryGrid, rows)
		foreground := 0
		for r := range grid {
			grid[r] = make([]uint8, cols)
			for c := range grid[r] {
				if rng.Intn(3) == 0 {
					grid[r][c] = 1
					foreground++
				}
			}
		}

		groups, err := FindConnectedGroups(grid)
		if err != nil {
			t.Fatalf("grid %d: unexpected error: %v", i, err)
		}

		total := 0
		for j, g := range groups {
			total += g.Size
			if g.Size <= 0 {
				t.Errorf("grid %d: group %d has size %d", i, j, g.Size)
			}
			if g.Centroid.X < 0 || g.Centroid.X >= cols || g.Centroid.Y < 0 || g.Centroid.Y >= rows {
				t.Errorf("grid %d: centroid %+v outside %dx%d", i, g.Centroid, cols, rows)
			}
			if j > 0 && Compare(groups[j-1], g) < 0 {
				t.Errorf("grid %d: groups %d and %d out of order: %+v then %+v", i, j-1, j, groups[j-1], g)
			}
		}
		if total != foreground {
			t.Errorf("grid %d: group sizes sum to %d, want %d foreground pixels", i, total, foreground)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Group
		expect int
	}{
		{name: "size wins", a: Group{Size: 2, Centroid: Coordinate{0, 0}}, b: Group{Size: 1, Centroid: Coordinate{9, 9}}, expect: 1},
		{name: "x breaks size tie", a: Group{Size: 1, Centroid: Coordinate{0, 9}}, b: Group{Size: 1, Centroid: Coordinate{1, 0}}, expect: -1},
		{name: "y breaks x tie", a: Group{Size: 1, Centroid: Coordinate{1, 2}}, b: Group{Size: 1, Centroid: Coordinate{1, 1}}, expect: 1},
		{name: "equal", a: Group{Size: 3, Centroid: Coordinate{1, 1}}, b: Group{Size: 3, Centroid: Coordinate{1, 1}}, expect: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compare(tc.a, tc.b); got != tc.expect {
				t.Errorf("Compare: got %d, want %d", got, tc.expect)
			}
			if got := descending(tc.a, tc.b); got != -tc.expect {
				t.Errorf("descending: got %d, want %d", got, -tc.expect)
			}
		})
	}
}

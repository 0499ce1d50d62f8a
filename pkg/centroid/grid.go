package centroid

import "fmt"

// ColorGrid is a row-major grid of packed RGB pixels.
type ColorGrid [][]RGB

// BinaryGrid is a row-major grid where 1 marks a foreground pixel and 0 a
// background pixel.
type BinaryGrid [][]uint8

// Rows returns the number of rows.
func (g ColorGrid) Rows() int { return len(g) }

// Cols returns the width of the first row, or 0 for an empty grid.
func (g ColorGrid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Rows returns the number of rows.
func (g BinaryGrid) Rows() int { return len(g) }

// Cols returns the width of the first row, or 0 for an empty grid.
func (g BinaryGrid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// dims validates that g is non-empty and rectangular and returns its size.
func dims[T any](g [][]T) (rows, cols int, err error) {
	if g == nil {
		return 0, 0, ErrNilGrid
	}
	if len(g) == 0 {
		return 0, 0, fmt.Errorf("%w: no rows", ErrMalformedGrid)
	}
	cols = -1
	for r, row := range g {
		if row == nil {
			return 0, 0, fmt.Errorf("%w: row %d", ErrNilGrid, r)
		}
		if len(row) == 0 {
			return 0, 0, fmt.Errorf("%w: row %d has no columns", ErrMalformedGrid, r)
		}
		if cols < 0 {
			cols = len(row)
		}
		if len(row) != cols {
			return 0, 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedGrid, r, len(row), cols)
		}
	}
	return len(g), cols, nil
}

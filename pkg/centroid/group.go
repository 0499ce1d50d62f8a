package centroid

import (
	"cmp"
	"slices"
)

// Coordinate is a pixel position. X is the column and Y the row, with the
// origin at the top-left corner.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Group is one 4-connected component of foreground pixels.
type Group struct {
	Size     int        `json:"size"`
	Centroid Coordinate `json:"centroid"`
}

// Compare orders groups by size, then centroid x, then centroid y, all
// ascending. It returns -1, 0 or +1.
func Compare(a, b Group) int {
	if c := cmp.Compare(a.Size, b.Size); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Centroid.X, b.Centroid.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Centroid.Y, b.Centroid.Y)
}

// descending sorts larger groups first; ties go to the larger x, then the larger y.
func descending(a, b Group) int {
	if a.Size != b.Size {
		return cmp.Compare(b.Size, a.Size)
	}
	if a.Centroid.X != b.Centroid.X {
		return cmp.Compare(b.Centroid.X, a.Centroid.X)
	}
	return cmp.Compare(b.Centroid.Y, a.Centroid.Y)
}

// neighbours are the 4-connected offsets as (row, col).
var neighbours = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// FindConnectedGroups returns the 4-connected components of non-zero pixels
// in grid, largest first.
//
// The centroid of a group is the truncated integer mean of its pixel
// positions. Equal sizes are ordered by descending centroid x, then
// descending centroid y.
func FindConnectedGroups(grid BinaryGrid) ([]Group, error) {
	rows, cols, err := dims(grid)
	if err != nil {
		return nil, err
	}

	visited := make([]bool, rows*cols)
	var groups []Group
	var stack []int

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			start := r*cols + c
			if grid[r][c] == 0 || visited[start] {
				continue
			}

			// Explicit stack flood fill; positions are flattened row*cols+col.
			visited[start] = true
			stack = append(stack[:0], start)
			size, sumX, sumY := 0, 0, 0

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				pr, pc := p/cols, p%cols
				size++
				sumX += pc
				sumY += pr

				for _, d := range neighbours {
					nr, nc := pr+d[0], pc+d[1]
					if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
						continue
					}
					n := nr*cols + nc
					if visited[n] || grid[nr][nc] == 0 {
						continue
					}
					visited[n] = true
					stack = append(stack, n)
				}
			}

			groups = append(groups, Group{
				Size:     size,
				Centroid: Coordinate{X: sumX / size, Y: sumY / size},
			})
		}
	}

	slices.SortStableFunc(groups, descending)
	return groups, nil
}

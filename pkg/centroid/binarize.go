package centroid

import "fmt"

// Binarizer classifies pixels as foreground when they are closer than
// Threshold to Target.
type Binarizer struct {
	distance  Distancer
	target    RGB
	threshold float64
}

// NewBinarizer creates a binarizer. A nil Distancer defaults to Euclidean.
func NewBinarizer(d Distancer, target RGB, threshold float64) *Binarizer {
	if d == nil {
		d = Euclidean{}
	}
	return &Binarizer{
		distance:  d,
		target:    target,
		threshold: threshold,
	}
}

// Target returns the reference color.
func (b *Binarizer) Target() RGB { return b.target }

// Threshold returns the exclusive distance limit.
func (b *Binarizer) Threshold() float64 { return b.threshold }

// ToBinary maps every pixel to 1 when its distance to the target is strictly
// less than the threshold, else 0. The result has the same shape as grid.
func (b *Binarizer) ToBinary(grid ColorGrid) (BinaryGrid, error) {
	if grid == nil {
		return nil, ErrNilGrid
	}
	out := make(BinaryGrid, len(grid))
	for r, row := range grid {
		if row == nil {
			return nil, fmt.Errorf("%w: row %d", ErrNilGrid, r)
		}
		bin := make([]uint8, len(row))
		for c, px := range row {
			if b.distance.Distance(px, b.target) < b.threshold {
				bin[c] = 1
			}
		}
		out[r] = bin
	}
	return out, nil
}

// ToColor renders a binary grid as white foreground on black background.
func ToColor(grid BinaryGrid) (ColorGrid, error) {
	if grid == nil {
		return nil, ErrNilGrid
	}
	out := make(ColorGrid, len(grid))
	for r, row := range grid {
		if row == nil {
			return nil, fmt.Errorf("%w: row %d", ErrNilGrid, r)
		}
		px := make([]RGB, len(row))
		for c, v := range row {
			if v != 0 {
				px[c] = White
			} else {
				px[c] = Black
			}
		}
		out[r] = px
	}
	return out, nil
}

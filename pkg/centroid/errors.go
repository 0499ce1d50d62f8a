package centroid

import "errors"

// Sentinel errors for grid and color validation.
var (
	// ErrNilGrid is returned when a grid or one of its rows is missing.
	ErrNilGrid = errors.New("centroid: nil grid")

	// ErrMalformedGrid is returned for grids with no rows, no columns, or ragged rows.
	ErrMalformedGrid = errors.New("centroid: malformed grid")

	// ErrInvalidColor is returned when a hex color string cannot be parsed.
	ErrInvalidColor = errors.New("centroid: invalid color")
)

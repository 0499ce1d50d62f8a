// Package centroid finds the largest connected region of a target color in
// a frame and reports its centroid.
//
// A frame is binarized by color distance against the target, the foreground
// pixels are grouped into 4-connected components, and the components are
// returned largest first.
package centroid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is a 24-bit color packed as 0xRRGGBB.
type RGB uint32

// Common colors.
const (
	Black RGB = 0x000000
	White RGB = 0xFFFFFF
)

// R returns the red channel (bits 16-23).
func (c RGB) R() int { return int(c>>16) & 0xFF }

// G returns the green channel (bits 8-15).
func (c RGB) G() int { return int(c>>8) & 0xFF }

// B returns the blue channel (bits 0-7).
func (c RGB) B() int { return int(c) & 0xFF }

// Hex returns the color as a six digit uppercase hex string.
func (c RGB) Hex() string {
	return fmt.Sprintf("%06X", uint32(c)&0xFFFFFF)
}

// NewRGB packs three 8-bit channels.
func NewRGB(r, g, b uint8) RGB {
	return RGB(r)<<16 | RGB(g)<<8 | RGB(b)
}

// ParseRGB parses a color in RRGGBB form. A leading '#' is accepted.
func ParseRGB(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("%w: %q is not in RRGGBB format", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not in RRGGBB format", ErrInvalidColor, s)
	}
	return RGB(v), nil
}

// Distancer measures how different two colors are.
type Distancer interface {
	// Distance returns a non-negative dissimilarity; zero for equal colors.
	Distance(a, b RGB) float64
}

// Euclidean treats colors as points in RGB space.
type Euclidean struct{}

// Distance returns sqrt(dr² + dg² + db²).
func (Euclidean) Distance(a, b RGB) float64 {
	dr := a.R() - b.R()
	dg := a.G() - b.G()
	db := a.B() - b.B()
	return math.Sqrt(float64(dr*dr + dg*dg + db*db))
}

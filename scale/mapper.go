// Package scale maps between logical sprite pixels and the magnified raster grid
package scale

import (
	"errors"
	"fmt"
	"image"
)

// DefaultExtent is the raster size the larger logical axis is stretched to
const DefaultExtent = 512

// MaxExtent bounds the raster side New will produce
const MaxExtent = 2048

// ErrInvalidSize is returned for sizes that cannot produce a positive factor
var ErrInvalidSize = errors.New("invalid sprite size")

// Mapper converts coordinates using one integer factor on both axes
// Cells are always square; the larger logical axis fills the extent
type Mapper struct {
	factor  int
	logical image.Point
}

// New computes the factor for a logical size against a raster extent
func New(logicalW, logicalH, extent int) (Mapper, error) {
	if logicalW <= 0 || logicalH <= 0 || extent <= 0 {
		return Mapper{}, fmt.Errorf("%w: %dx%d in extent %d", ErrInvalidSize, logicalW, logicalH, extent)
	}
	if extent > MaxExtent {
		return Mapper{}, fmt.Errorf("%w: extent %d above %d", ErrInvalidSize, extent, MaxExtent)
	}
	s := extent / max(logicalW, logicalH)
	if s == 0 {
		return Mapper{}, fmt.Errorf("%w: %dx%d exceeds extent %d", ErrInvalidSize, logicalW, logicalH, extent)
	}
	return Mapper{factor: s, logical: image.Pt(logicalW, logicalH)}, nil
}

// FromRaster rebuilds a mapper for a raster of known size
// prefer is kept when it divides both dimensions, otherwise the factor is 1
func FromRaster(rasterW, rasterH, prefer int) (Mapper, error) {
	if rasterW <= 0 || rasterH <= 0 {
		return Mapper{}, fmt.Errorf("%w: raster %dx%d", ErrInvalidSize, rasterW, rasterH)
	}
	s := 1
	if prefer > 0 && rasterW%prefer == 0 && rasterH%prefer == 0 {
		s = prefer
	}
	return Mapper{factor: s, logical: image.Pt(rasterW/s, rasterH/s)}, nil
}

// Matches reports whether factor is what New computes for the raster's
// logical size against extent, so the raster could have come from that mapper
func Matches(rasterW, rasterH, factor, extent int) bool {
	if factor <= 0 || rasterW%factor != 0 || rasterH%factor != 0 {
		return false
	}
	return extent/max(rasterW/factor, rasterH/factor) == factor
}

// Factor returns the magnification s
func (m Mapper) Factor() int { return m.factor }

// Valid reports whether the mapper was built successfully
func (m Mapper) Valid() bool { return m.factor > 0 }

// LogicalSize returns the sprite size in logical pixels
func (m Mapper) LogicalSize() (int, int) { return m.logical.X, m.logical.Y }

// RasterSize returns the size of the underlying raster
func (m Mapper) RasterSize() (int, int) {
	return m.logical.X * m.factor, m.logical.Y * m.factor
}

// ToRaster returns the top-left raster pixel of a logical pixel
func (m Mapper) ToRaster(lx, ly int) (int, int) {
	return lx * m.factor, ly * m.factor
}

// ToLogical returns the logical pixel containing a raster pixel
func (m Mapper) ToLogical(rx, ry int) (int, int) {
	if m.factor == 0 {
		return 0, 0
	}
	return floorDiv(rx, m.factor), floorDiv(ry, m.factor)
}

// Quantize snaps raw input onto the top-left corner of its cell
func (m Mapper) Quantize(x, y int) (int, int) {
	lx, ly := m.ToLogical(x, y)
	return m.ToRaster(lx, ly)
}

// Cell returns the s×s raster block starting at (rx, ry)
func (m Mapper) Cell(rx, ry int) image.Rectangle {
	return image.Rect(rx, ry, rx+m.factor, ry+m.factor)
}

// Rotated returns the mapper for the sprite turned by 90°
func (m Mapper) Rotated() Mapper {
	return Mapper{factor: m.factor, logical: image.Pt(m.logical.Y, m.logical.X)}
}

func (m Mapper) String() string {
	rw, rh := m.RasterSize()
	return fmt.Sprintf("%dx%d@%d (%dx%d)", m.logical.X, m.logical.Y, m.factor, rw, rh)
}

// floorDiv rounds toward negative infinity so negative input never lands in cell 0
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

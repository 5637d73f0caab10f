package geo

import (
	"fmt"

	"github.com/OCAP2/annotations/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// MapTransform maps coordinates of a map extent onto a screen area of the
// given size. Screen y grows downwards, map y upwards.
type MapTransform struct {
	min, max geom.XY
	crs      int
	size     core.Size
}

// NewMapTransform returns the transform showing extent (in EPSG code crs)
// on a screen of the given size.
func NewMapTransform(extent geom.Envelope, crs int, size core.Size) (*MapTransform, error) {
	lo, hi, ok := extent.MinMaxXYs()
	if !ok || lo.X >= hi.X || lo.Y >= hi.Y {
		return nil, ErrInvalidExtent
	}
	if size.IsEmpty() {
		return nil, fmt.Errorf("invalid output size %vx%v", size.Width, size.Height)
	}
	return &MapTransform{min: lo, max: hi, crs: crs, size: size}, nil
}

// CRS returns the EPSG code of the map extent.
func (t *MapTransform) CRS() int { return t.crs }

// Size returns the screen size.
func (t *MapTransform) Size() core.Size { return t.size }

// Project converts pos, given in EPSG code crs, to a screen point.
func (t *MapTransform) Project(pos core.Position2D, crs int) (core.Point, error) {
	p, err := Transform(pos, crs, t.crs)
	if err != nil {
		return core.Point{}, err
	}
	sx := t.size.Width / (t.max.X - t.min.X)
	sy := t.size.Height / (t.max.Y - t.min.Y)
	return core.Point{
		X: (p.X - t.min.X) * sx,
		Y: (t.max.Y - p.Y) * sy,
	}, nil
}

// Unproject converts a screen point back to map coordinates in the
// transform's CRS.
func (t *MapTransform) Unproject(p core.Point) core.Position2D {
	sx := (t.max.X - t.min.X) / t.size.Width
	sy := (t.max.Y - t.min.Y) / t.size.Height
	return core.Position2D{
		X: t.min.X + p.X*sx,
		Y: t.max.Y - p.Y*sy,
	}
}

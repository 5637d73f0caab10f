package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/OCAP2/annotations/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// WGS84 is the EPSG code of geographic longitude/latitude coordinates, the
// default CRS of an annotation's map position.
const WGS84 = 4326

// WebMercator is the EPSG code of the spherical mercator projection.
const WebMercator = 3857

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ErrInvalidExtent is returned for extents with no area.
var ErrInvalidExtent = errors.New("invalid map extent")

// Position2DFromString parses a "x,y" string into a core.Position2D.
// Surrounding brackets and spaces are ignored.
func Position2DFromString(coords string) (core.Position2D, error) {
	coords = strings.TrimSpace(coords)
	coords = strings.TrimPrefix(coords, "[")
	coords = strings.TrimSuffix(coords, "]")
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) != 2 {
		return core.Position2D{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Position2D{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Position2D{}, ErrInvalidCoordinates
	}
	return core.Position2D{X: x, Y: y}, nil
}

// ExtentFromString parses "minX,minY,maxX,maxY" into an envelope.
func ExtentFromString(s string) (geom.Envelope, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Envelope{}, fmt.Errorf("%w: want minX,minY,maxX,maxY, got %q", ErrInvalidExtent, s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Envelope{}, fmt.Errorf("%w: %q", ErrInvalidExtent, s)
		}
		v[i] = f
	}
	if v[0] >= v[2] || v[1] >= v[3] {
		return geom.Envelope{}, fmt.Errorf("%w: %q has no area", ErrInvalidExtent, s)
	}
	env, err := EnvelopeOf(geom.XY{X: v[0], Y: v[1]}, geom.XY{X: v[2], Y: v[3]})
	if err != nil {
		return geom.Envelope{}, fmt.Errorf("%w: %q", ErrInvalidExtent, s)
	}
	return env, nil
}

// Transform converts pos from one EPSG code to another. Identical codes are
// returned unchanged.
func Transform(pos core.Position2D, from, to int) (core.Position2D, error) {
	if from == to {
		return pos, nil
	}
	f := wgs84.EPSG().Transform(from, to)
	x, y, _ := f(pos.X, pos.Y, 0)
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return core.Position2D{}, fmt.Errorf("%w: cannot transform %v from EPSG:%d to EPSG:%d",
			ErrInvalidCoordinates, pos, from, to)
	}
	return core.Position2D{X: x, Y: y}, nil
}

// EnvelopeOf returns the smallest envelope containing xys. No points give
// an empty envelope.
func EnvelopeOf(xys ...geom.XY) (geom.Envelope, error) {
	env, err := geom.NewEnvelope(xys)
	if err != nil {
		return geom.Envelope{}, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return env, nil
}

// PadExtent grows env by margin times its larger side on every edge. A
// degenerate extent (a single point or a line) grows by at least minPad so
// the result always has an area. ok is false for an empty env.
func PadExtent(env geom.Envelope, margin, minPad float64) (padded geom.Envelope, ok bool) {
	lo, hi, ok := env.MinMaxXYs()
	if !ok {
		return geom.Envelope{}, false
	}
	pad := max(hi.X-lo.X, hi.Y-lo.Y) * margin
	pad = max(pad, minPad)
	padded, err := EnvelopeOf(
		geom.XY{X: lo.X - pad, Y: lo.Y - pad},
		geom.XY{X: hi.X + pad, Y: hi.Y + pad},
	)
	return padded, err == nil
}

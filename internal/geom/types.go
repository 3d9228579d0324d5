package geom

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// Shape is the geometry class a style is keyed on.
type Shape int

const (
	ShapePoint Shape = iota
	ShapeMultiPoint
	ShapeLineString
	ShapeMultiLineString
	ShapePolygon
	ShapeMultiPolygon
)

var ErrUnknownShape = errors.New("unknown geometry shape")

// String returns the GeoJSON type name.
func (s Shape) String() string {
	switch s {
	case ShapePoint:
		return "Point"
	case ShapeMultiPoint:
		return "MultiPoint"
	case ShapeLineString:
		return "LineString"
	case ShapeMultiLineString:
		return "MultiLineString"
	case ShapePolygon:
		return "Polygon"
	case ShapeMultiPolygon:
		return "MultiPolygon"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ShapeOf classifies an orb geometry. Rings, bounds and collections have no
// shape class of their own.
func ShapeOf(g orb.Geometry) (Shape, error) {
	if g == nil {
		return 0, fmt.Errorf("%w: nil geometry", ErrUnknownShape)
	}
	switch g.(type) {
	case orb.Point:
		return ShapePoint, nil
	case orb.MultiPoint:
		return ShapeMultiPoint, nil
	case orb.LineString:
		return ShapeLineString, nil
	case orb.MultiLineString:
		return ShapeMultiLineString, nil
	case orb.Polygon:
		return ShapePolygon, nil
	case orb.MultiPolygon:
		return ShapeMultiPolygon, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrUnknownShape, g)
}

// Extent is a bounding box accumulated across geometries. The zero value is
// unset.
type Extent struct {
	bound orb.Bound
	set   bool
}

// IsSet reports whether at least one bound has been added.
func (e Extent) IsSet() bool { return e.set }

// Bound returns the accumulated bound and whether it is set.
func (e Extent) Bound() (orb.Bound, bool) { return e.bound, e.set }

// Extend grows the extent to cover b. The first call initialises it.
func (e *Extent) Extend(b orb.Bound) {
	if !e.set {
		e.bound = b
		e.set = true
		return
	}
	e.bound = e.bound.Union(b)
}

// Reset returns the extent to unset.
func (e *Extent) Reset() {
	*e = Extent{}
}

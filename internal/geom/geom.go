package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// MaxLatitude bounds latitudes before reprojection; web mercator diverges at
// the poles.
const MaxLatitude = 89.99999

var ErrNonFinite = errors.New("non-finite coordinate")

// ClampLatitude limits lat to [-MaxLatitude, MaxLatitude].
func ClampLatitude(lat float64) float64 {
	return math.Min(math.Max(lat, -MaxLatitude), MaxLatitude)
}

// Build returns the geometry for a dataset's bounds in geographic
// coordinates. Equal longitudes and equal latitudes give a point; anything
// else gives a rectangle ring (min,min) (min,max) (max,max) (max,min), so a
// box degenerate on one axis only is a zero-width rectangle.
func Build(minLon, maxLon, minLat, maxLat float64) (orb.Geometry, error) {
	for _, v := range [...]float64{minLon, maxLon, minLat, maxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: bounds [%v %v %v %v]", ErrNonFinite, minLon, maxLon, minLat, maxLat)
		}
	}
	equalLon := minLon == maxLon
	equalLat := minLat == maxLat

	minLat = ClampLatitude(minLat)
	maxLat = ClampLatitude(maxLat)

	if equalLon && equalLat {
		return orb.Point{minLon, minLat}, nil
	}
	return orb.Polygon{orb.Ring{
		{minLon, minLat},
		{minLon, maxLat},
		{maxLon, maxLat},
		{maxLon, minLat},
	}}, nil
}

// ToMercator reprojects a geographic geometry into EPSG:3857. The input is
// left untouched.
func ToMercator(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), project.WGS84.ToMercator)
}

// ToWGS84 reprojects an EPSG:3857 geometry back to geographic coordinates.
func ToWGS84(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), project.Mercator.ToWGS84)
}

// CloseRings returns a copy of g whose polygon rings repeat their first
// vertex at the end, as GeoJSON and WKT require.
func CloseRings(g orb.Geometry) orb.Geometry {
	switch v := g.(type) {
	case orb.Polygon:
		out := make(orb.Polygon, len(v))
		for i, r := range v {
			out[i] = closeRing(r)
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(v))
		for i, p := range v {
			out[i] = CloseRings(p).(orb.Polygon)
		}
		return out
	}
	return orb.Clone(g)
}

func closeRing(r orb.Ring) orb.Ring {
	out := append(orb.Ring(nil), r...)
	if len(out) > 0 && !out.Closed() {
		out = append(out, out[0])
	}
	return out
}

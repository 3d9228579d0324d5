package slippy

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// WorldSize is the width of the EPSG:3857 world in metres.
const WorldSize = 2 * math.Pi * orb.EarthRadius

const (
	MinZoom = 0.0
	MaxZoom = 28.0
)

// WorldBound is the square EPSG:3857 extent.
var WorldBound = orb.Bound{
	Min: orb.Point{-WorldSize / 2, -WorldSize / 2},
	Max: orb.Point{WorldSize / 2, WorldSize / 2},
}

// Size is a viewport size in pixels. In the terminal a pixel is one braille
// dot.
type Size struct {
	W, H int
}

func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// View is the camera: a centre in EPSG:3857 metres and a fractional zoom.
type View struct {
	Center orb.Point
	Zoom   float64
}

// ViewAt builds a view centred on a geographic lon/lat.
func ViewAt(lon, lat, zoom float64) View {
	return View{Center: project.WGS84.ToMercator(orb.Point{lon, lat}), Zoom: zoom}
}

// Resolution returns metres per pixel at the view's zoom for tileSize
// pixels per zoom-0 world.
func (v View) Resolution(tileSize float64) float64 {
	return ResolutionForZoom(v.Zoom, tileSize)
}

func ResolutionForZoom(zoom, tileSize float64) float64 {
	return WorldSize / tileSize / math.Pow(2, zoom)
}

func ZoomForResolution(res, tileSize float64) float64 {
	return math.Log2(WorldSize / tileSize / res)
}

// ToPixel maps an EPSG:3857 coordinate to viewport pixels. Y grows downwards.
func (v View) ToPixel(p orb.Point, size Size, tileSize float64) (float64, float64) {
	res := v.Resolution(tileSize)
	x := (p[0]-v.Center[0])/res + float64(size.W)/2
	y := (v.Center[1]-p[1])/res + float64(size.H)/2
	return x, y
}

// FromPixel is the inverse of ToPixel.
func (v View) FromPixel(x, y float64, size Size, tileSize float64) orb.Point {
	res := v.Resolution(tileSize)
	return orb.Point{
		v.Center[0] + (x-float64(size.W)/2)*res,
		v.Center[1] - (y-float64(size.H)/2)*res,
	}
}

// Pan moves the centre by a pixel offset.
func (v View) Pan(dx, dy float64, tileSize float64) View {
	res := v.Resolution(tileSize)
	v.Center = orb.Point{v.Center[0] + dx*res, v.Center[1] - dy*res}
	return v
}

// WithZoom returns v at zoom z, clamped to the supported range.
func (v View) WithZoom(z float64) View {
	v.Zoom = math.Max(MinZoom, math.Min(MaxZoom, z))
	return v
}

// FitOptions control Fit.
type FitOptions struct {
	MaxZoom  float64
	Duration time.Duration
}

// Fit returns the view that shows extent inside size. The zoom never exceeds
// opts.MaxZoom, which also covers zero-area extents such as a single point.
func Fit(extent orb.Bound, size Size, tileSize float64, opts FitOptions) View {
	maxZoom := opts.MaxZoom
	if maxZoom <= 0 || maxZoom > MaxZoom {
		maxZoom = MaxZoom
	}
	w, h := float64(size.W), float64(size.H)
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	res := math.Max((extent.Max[0]-extent.Min[0])/w, (extent.Max[1]-extent.Min[1])/h)
	res = math.Max(res, ResolutionForZoom(maxZoom, tileSize))
	zoom := math.Max(MinZoom, ZoomForResolution(res, tileSize))
	return View{Center: extent.Center(), Zoom: zoom}
}

// Animation eases a view change between two states.
type Animation struct {
	From, To View
	Start    time.Time
	Duration time.Duration
}

// At returns the view at time t and whether the animation has finished.
func (a Animation) At(t time.Time) (View, bool) {
	if a.Duration <= 0 {
		return a.To, true
	}
	f := float64(t.Sub(a.Start)) / float64(a.Duration)
	if f >= 1 {
		return a.To, true
	}
	if f < 0 {
		f = 0
	}
	e := inAndOut(f)
	return View{
		Center: orb.Point{
			a.From.Center[0] + e*(a.To.Center[0]-a.From.Center[0]),
			a.From.Center[1] + e*(a.To.Center[1]-a.From.Center[1]),
		},
		Zoom: a.From.Zoom + e*(a.To.Zoom-a.From.Zoom),
	}, false
}

func inAndOut(t float64) float64 {
	return 3*t*t - 2*t*t*t
}

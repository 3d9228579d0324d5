package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"searchmap/internal/geom"
	"searchmap/internal/slippy"
	"searchmap/internal/style"
	"searchmap/internal/viz"
)

// webMercatorMaxLat is where the square Web Mercator world ends.
const webMercatorMaxLat = 85.0511287798

// Visibility toggles what RenderMap draws.
type Visibility struct {
	Markers   bool
	Areas     bool
	Graticule bool
}

// AllVisible draws everything.
func AllVisible() Visibility { return Visibility{Markers: true, Areas: true, Graticule: true} }

// RenderMap draws the visualisation at the map's current size, where one
// pixel is one braille dot. Rows are joined with newlines.
func RenderMap(v *viz.Visualization, vis Visibility, color bool) string {
	return strings.Join(renderLines(v, vis, color), "\n")
}

func renderLines(v *viz.Visualization, vis Visibility, color bool) []string {
	m := v.Map()
	size := m.Size()
	w, h := (size.W+1)/2, (size.H+3)/4
	if w <= 0 || h <= 0 {
		return nil
	}
	r := &renderer{
		buf:  newBrailleBuf(w, h, canvasBg),
		view: m.View(),
		size: size,
		tile: m.TileSize(),
	}
	for _, l := range m.Layers() {
		switch l := l.(type) {
		case *slippy.Graticule:
			if vis.Graticule {
				r.graticule(l.Step)
			}
		case *slippy.VectorLayer:
			r.vector(l, vis)
		}
	}
	if color {
		return r.buf.toColorLines()
	}
	return r.buf.toLines()
}

type renderer struct {
	buf  *brailleBuf
	view slippy.View
	size slippy.Size
	tile float64
}

func (r *renderer) px(p orb.Point) (float64, float64) {
	return r.view.ToPixel(p, r.size, r.tile)
}

func (r *renderer) lonLat(lon, lat float64) orb.Point {
	return geom.ToMercator(orb.Point{lon, lat}).(orb.Point)
}

func (r *renderer) graticule(step float64) {
	if step <= 0 {
		return
	}
	r.buf.begin(graticuleCol, 1)
	defer r.buf.end()

	for lon := -180.0; lon <= 180; lon += step {
		r.segment(r.lonLat(lon, -webMercatorMaxLat), r.lonLat(lon, webMercatorMaxLat), 0)
	}
	for lat := -math.Floor(webMercatorMaxLat/step) * step; lat < webMercatorMaxLat; lat += step {
		r.segment(r.lonLat(-180, lat), r.lonLat(180, lat), 0)
	}
	// world edges
	r.segment(r.lonLat(-180, webMercatorMaxLat), r.lonLat(180, webMercatorMaxLat), 0)
	r.segment(r.lonLat(-180, -webMercatorMaxLat), r.lonLat(180, -webMercatorMaxLat), 0)
}

// segment draws a clipped line between two projected points, thickened by
// half extra dots on each side.
func (r *renderer) segment(a, b orb.Point, half int) {
	x0, y0 := r.px(a)
	x1, y1 := r.px(b)
	W, H := float64(r.buf.w*2), float64(r.buf.h*4)
	horizontal := math.Abs(x1-x0) >= math.Abs(y1-y0)
	for o := -half; o <= half; o++ {
		ox, oy := 0.0, 0.0
		if horizontal {
			oy = float64(o)
		} else {
			ox = float64(o)
		}
		cx0, cy0, cx1, cy1, ok := clipLine(x0+ox, y0+oy, x1+ox, y1+oy, W, H)
		if !ok {
			continue
		}
		r.buf.drawLineMicro(int(math.Floor(cx0)), int(math.Floor(cy0)), int(math.Floor(cx1)), int(math.Floor(cy1)))
	}
}

func (r *renderer) vector(l *slippy.VectorLayer, vis Visibility) {
	if l.Style == nil || l.Feature == nil {
		return
	}
	styles, err := l.Style(l.Feature)
	if err != nil {
		return
	}
	for _, st := range styles {
		switch g := l.Feature.Geometry.(type) {
		case orb.Point:
			if vis.Markers && st.Image != nil {
				r.marker(g, st.Image)
			}
		case orb.MultiPoint:
			if vis.Markers && st.Image != nil {
				for _, p := range g {
					r.marker(p, st.Image)
				}
			}
		case orb.Polygon:
			if vis.Areas {
				r.polygon(g, st)
			}
		case orb.MultiPolygon:
			if vis.Areas {
				for _, p := range g {
					r.polygon(p, st)
				}
			}
		case orb.LineString:
			if vis.Areas && st.Stroke != nil {
				r.line(g, st.Stroke)
			}
		case orb.MultiLineString:
			if vis.Areas && st.Stroke != nil {
				for _, ls := range g {
					r.line(ls, st.Stroke)
				}
			}
		}
	}
}

func (r *renderer) line(ls orb.LineString, s *style.Stroke) {
	r.buf.begin(s.Color.Colorful(), s.Alpha())
	defer r.buf.end()
	half := int(s.Width / 2)
	for i := 1; i < len(ls); i++ {
		r.segment(ls[i-1], ls[i], half)
	}
}

func (r *renderer) polygon(poly orb.Polygon, st style.Style) {
	if st.Fill != nil {
		r.buf.begin(st.Fill.Color.Colorful(), st.Fill.Alpha())
		r.scanFill(poly)
		r.buf.end()
	}
	if st.Stroke != nil {
		r.buf.begin(st.Stroke.Color.Colorful(), st.Stroke.Alpha())
		half := int(st.Stroke.Width / 2)
		for _, ring := range poly {
			for i := range ring {
				r.segment(ring[i], ring[(i+1)%len(ring)], half)
			}
		}
		r.buf.end()
	}
}

// scanFill fills the polygon with the even-odd rule, sampling each dot row at
// its centre. Rings may be open or closed.
func (r *renderer) scanFill(poly orb.Polygon) {
	rings := make([][][2]float64, 0, len(poly))
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, ring := range poly {
		pts := make([][2]float64, 0, len(ring))
		for _, p := range ring {
			x, y := r.px(p)
			pts = append(pts, [2]float64{x, y})
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
		rings = append(rings, pts)
	}
	hMic := r.buf.h * 4
	y0 := max(0, int(math.Floor(minY)))
	y1 := min(hMic-1, int(math.Ceil(maxY)))

	var xs []float64
	for y := y0; y <= y1; y++ {
		yc := float64(y) + 0.5
		xs = xs[:0]
		for _, pts := range rings {
			for i := range pts {
				a, b := pts[i], pts[(i+1)%len(pts)]
				if a[1] == b[1] {
					continue
				}
				if (yc >= a[1] && yc < b[1]) || (yc >= b[1] && yc < a[1]) {
					t := (yc - a[1]) / (b[1] - a[1])
					xs = append(xs, a[0]+t*(b[0]-a[0]))
				}
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			r.buf.hline(int(math.Ceil(xs[i]-0.5)), int(math.Floor(xs[i+1]-0.5)), y)
		}
	}
}

// marker draws a filled disc with an outline ring, both in dots.
func (r *renderer) marker(p orb.Point, c *style.Circle) {
	cx, cy := r.px(p)
	rad := c.Radius
	W, H := float64(r.buf.w*2), float64(r.buf.h*4)
	if !finite(cx) || !finite(cy) || cx < -rad || cy < -rad || cx > W+rad || cy > H+rad {
		return
	}
	ring := 0.0
	if c.Stroke != nil {
		ring = c.Stroke.Width
	}
	x0, y0 := int(math.Floor(cx)), int(math.Floor(cy))
	n := int(math.Ceil(rad))

	disc := func(inner, outer float64) {
		for dy := -n; dy <= n; dy++ {
			for dx := -n; dx <= n; dx++ {
				d := math.Hypot(float64(dx), float64(dy))
				if d <= outer && d > inner {
					r.buf.setPixel(x0+dx, y0+dy)
				}
			}
		}
	}
	if c.Fill != nil {
		r.buf.begin(c.Fill.Color.Colorful(), c.Fill.Alpha())
		disc(-1, rad-ring)
		r.buf.end()
	}
	if c.Stroke != nil {
		// rim is stroke over fill
		if c.Fill != nil {
			r.buf.begin(c.Fill.Color.Colorful(), c.Fill.Alpha())
			disc(rad-ring, rad)
			r.buf.end()
		}
		r.buf.begin(c.Stroke.Color.Colorful(), c.Stroke.Alpha())
		disc(rad-ring, rad)
		r.buf.end()
	}
}

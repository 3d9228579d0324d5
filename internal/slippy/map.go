// Package slippy is a small web-mercator map: a layer stack, a camera and a
// fit animation. Drawing is left to the caller.
package slippy

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"searchmap/internal/style"
)

// Layer is anything the map draws.
type Layer interface {
	ID() string
}

// Graticule is the background layer: meridians and parallels every Step
// degrees.
type Graticule struct {
	Step float64
}

func (g *Graticule) ID() string { return "background" }

// StyleFunc resolves a feature's styles at draw time.
type StyleFunc func(f *geojson.Feature) ([]style.Style, error)

// VectorLayer holds one feature in map coordinates and its style function.
type VectorLayer struct {
	id      string
	Feature *geojson.Feature
	Style   StyleFunc
}

// NewVectorLayer wraps a feature in a layer with a fresh id.
func NewVectorLayer(f *geojson.Feature, fn StyleFunc) *VectorLayer {
	id := uuid.NewString()
	f.ID = id
	return &VectorLayer{id: id, Feature: f, Style: fn}
}

func (l *VectorLayer) ID() string { return l.id }

// Extent is the bound of the layer's feature.
func (l *VectorLayer) Extent() orb.Bound { return l.Feature.Geometry.Bound() }

// Options configure a Map.
type Options struct {
	View     View
	TileSize float64
	Now      func() time.Time
}

// Map owns the layer stack and the camera.
type Map struct {
	layers   []Layer
	view     View
	size     Size
	tileSize float64
	anim     *Animation
	now      func() time.Time
}

// New creates a map with the given background layers.
func New(opts Options, background ...Layer) *Map {
	if opts.TileSize <= 0 {
		opts.TileSize = 256
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &Map{
		view:     opts.View.WithZoom(opts.View.Zoom),
		tileSize: opts.TileSize,
		now:      opts.Now,
	}
	m.layers = append(m.layers, background...)
	return m
}

func (m *Map) Layers() []Layer { return m.layers }

// Vectors returns the vector layers in draw order.
func (m *Map) Vectors() []*VectorLayer {
	var out []*VectorLayer
	for _, l := range m.layers {
		if v, ok := l.(*VectorLayer); ok {
			out = append(out, v)
		}
	}
	return out
}

// ClearLayers removes every layer, background included.
func (m *Map) ClearLayers() { m.layers = nil }

func (m *Map) AddLayer(l Layer) { m.layers = append(m.layers, l) }

func (m *Map) TileSize() float64 { return m.tileSize }

func (m *Map) Size() Size { return m.size }

func (m *Map) SetSize(s Size) { m.size = s }

// View returns the current camera.
func (m *Map) View() View { return m.view }

// SetView jumps to v and drops any running animation.
func (m *Map) SetView(v View) {
	m.anim = nil
	m.view = v.WithZoom(v.Zoom)
}

// Fit animates the camera to show extent. A running animation is replaced,
// starting from wherever the camera currently is.
func (m *Map) Fit(extent orb.Bound, opts FitOptions) View {
	target := Fit(extent, m.size, m.tileSize, opts)
	if opts.Duration <= 0 {
		m.SetView(target)
		return target
	}
	m.anim = &Animation{From: m.view, To: target, Start: m.now(), Duration: opts.Duration}
	return target
}

// Animating reports whether a fit animation is in progress.
func (m *Map) Animating() bool { return m.anim != nil }

// Target is where the running animation ends, or the current view.
func (m *Map) Target() View {
	if m.anim != nil {
		return m.anim.To
	}
	return m.view
}

// Step advances the animation to the map clock's current time and reports
// whether it is still running.
func (m *Map) Step() bool {
	if m.anim == nil {
		return false
	}
	v, done := m.anim.At(m.now())
	m.view = v
	if done {
		m.anim = nil
	}
	return !done
}

// Settle finishes any running animation immediately.
func (m *Map) Settle() {
	if m.anim != nil {
		m.view = m.anim.To
		m.anim = nil
	}
}

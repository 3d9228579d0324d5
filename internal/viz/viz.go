// Package viz holds the visualisation session: it receives dataset
// selections, turns each dataset into a styled overlay and frames the camera
// on the result.
package viz

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"searchmap/internal/geom"
	"searchmap/internal/metrics"
	"searchmap/internal/selection"
	"searchmap/internal/slippy"
	"searchmap/internal/style"
)

// Feature attribute names shown for each overlay.
const (
	AttrTitle      = "Dataset Title"
	AttrAuthor     = "Author"
	AttrDataCenter = "Data Center"
	AttrColor      = "color"
)

// Options configure a Visualization.
type Options struct {
	CenterLon, CenterLat float64
	Zoom                 float64
	MaxFitZoom           float64
	FitDuration          time.Duration
	TileSize             float64
	GraticuleStep        float64
	FallbackColor        string
	Logger               *slog.Logger
	Now                  func() time.Time
}

// DefaultOptions mirror the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Zoom:          2,
		MaxFitZoom:    3,
		FitDuration:   500 * time.Millisecond,
		TileSize:      64,
		GraticuleStep: 30,
		FallbackColor: "#3399CC",
	}
}

// Result summarises one ReceiveMessage call.
type Result struct {
	Overlays int
	Rejected int
	Failed   int
	Focused  bool
}

// Visualization is the per-process session. It is not safe for concurrent
// use; callers deliver messages one at a time.
type Visualization struct {
	opts       Options
	log        *slog.Logger
	background *slippy.Graticule
	m          *slippy.Map
	extent     geom.Extent
}

// New sets up the map with its background layer and default view.
func New(opts Options) *Visualization {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	bg := &slippy.Graticule{Step: opts.GraticuleStep}
	m := slippy.New(slippy.Options{
		View:     slippy.ViewAt(opts.CenterLon, opts.CenterLat, opts.Zoom),
		TileSize: opts.TileSize,
		Now:      opts.Now,
	}, bg)
	return &Visualization{
		opts:       opts,
		log:        opts.Logger,
		background: bg,
		m:          m,
	}
}

// Map exposes the map for drawing and interaction.
func (v *Visualization) Map() *slippy.Map { return v.m }

// Extent returns the combined extent of the current message's overlays.
func (v *Visualization) Extent() geom.Extent { return v.extent }

// Background returns the background layer.
func (v *Visualization) Background() *slippy.Graticule { return v.background }

// ReceiveMessage replaces the displayed overlays with the message's datasets
// and fits the view to them. An empty selection leaves only the background
// and does not move the camera.
func (v *Visualization) ReceiveMessage(msg selection.Message) Result {
	start := time.Now()
	source := msg.Source
	if source == "" {
		source = "unknown"
	}
	metrics.MessagesReceived.WithLabelValues(source).Inc()
	defer func() {
		metrics.MessageDuration.Observe(time.Since(start).Seconds())
	}()

	v.m.ClearLayers()
	v.m.AddLayer(v.background)
	v.extent.Reset()

	res := Result{Rejected: len(msg.Rejected)}
	for _, r := range msg.Rejected {
		metrics.DatasetsRejected.WithLabelValues(rejectReason(r.Err)).Inc()
		v.log.Warn("dataset rejected", "source", source, "index", r.Index, "error", r.Err)
	}

	for i, d := range msg.Selected {
		if err := v.processDataset(d); err != nil {
			res.Failed++
			metrics.DatasetsRejected.WithLabelValues("processing").Inc()
			v.log.Warn("dataset skipped", "source", source, "index", i, "title", d.Title, "error", err)
			continue
		}
		res.Overlays++
	}
	metrics.Overlays.Set(float64(res.Overlays))

	if len(msg.Selected) > 0 && v.extent.IsSet() {
		v.focus()
		res.Focused = true
	}

	v.log.Info("selection received",
		"source", source,
		"datasets", len(msg.Selected),
		"overlays", res.Overlays,
		"rejected", res.Rejected,
		"failed", res.Failed,
		"focused", res.Focused,
	)
	return res
}

func (v *Visualization) processDataset(d selection.Descriptor) error {
	g, err := geom.Build(d.MinLongitude, d.MaxLongitude, d.MinLatitude, d.MaxLatitude)
	if err != nil {
		return err
	}
	g = geom.ToMercator(g)

	resolver, err := style.NewResolverOr(d.Color, v.opts.FallbackColor)
	if err != nil {
		if resolver == nil {
			return fmt.Errorf("style: %w", err)
		}
		metrics.InvalidColors.Inc()
		v.log.Warn("invalid dataset color, using fallback", "title", d.Title, "color", d.Color, "fallback", v.opts.FallbackColor)
	}

	f := geojson.NewFeature(g)
	f.Properties[AttrTitle] = d.Title
	f.Properties[AttrAuthor] = d.Authors
	f.Properties[AttrDataCenter] = d.DataCenter
	f.Properties[AttrColor] = resolver.Color().Hex()

	layer := slippy.NewVectorLayer(f, func(f *geojson.Feature) ([]style.Style, error) {
		return resolver.Style(f.Geometry)
	})
	if _, err := layer.Style(f); err != nil {
		v.log.Error("overlay has no style", "title", d.Title, "error", err)
	}

	v.extent.Extend(layer.Extent())
	v.m.AddLayer(layer)
	if shape, err := geom.ShapeOf(g); err == nil {
		metrics.DatasetsRendered.WithLabelValues(shape.String()).Inc()
	}
	return nil
}

// focus animates the camera onto the combined extent.
func (v *Visualization) focus() {
	b, ok := v.extent.Bound()
	if !ok {
		return
	}
	v.m.Fit(b, slippy.FitOptions{MaxZoom: v.opts.MaxFitZoom, Duration: v.opts.FitDuration})
}

// Refocus re-runs the fit for the current overlays, e.g. after a resize.
func (v *Visualization) Refocus() bool {
	if !v.extent.IsSet() {
		return false
	}
	v.focus()
	return true
}

// OverlayAt returns the overlay whose extent contains p (EPSG:3857), or the
// one whose extent centre is nearest to it.
func (v *Visualization) OverlayAt(p orb.Point) (*slippy.VectorLayer, bool) {
	var best *slippy.VectorLayer
	bestD := -1.0
	for _, l := range v.m.Vectors() {
		b := l.Extent()
		if b.Contains(p) {
			return l, true
		}
		c := b.Center()
		d := (c[0]-p[0])*(c[0]-p[0]) + (c[1]-p[1])*(c[1]-p[1])
		if bestD < 0 || d < bestD {
			best, bestD = l, d
		}
	}
	return best, best != nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, selection.ErrMissingBounds):
		return "missing_bounds"
	case errors.Is(err, selection.ErrNotObject):
		return "not_object"
	default:
		return "malformed"
	}
}

// Package export writes the overlays on a map as GeoJSON or WKT in
// geographic coordinates.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"searchmap/internal/geom"
	"searchmap/internal/slippy"
)

// FeatureCollection converts overlays back to WGS84 features with closed
// rings. Properties are copied; the layers are not modified.
func FeatureCollection(layers []*slippy.VectorLayer) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range layers {
		f := geojson.NewFeature(geom.CloseRings(geom.ToWGS84(l.Feature.Geometry)))
		f.ID = l.ID()
		for k, v := range l.Feature.Properties {
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	return fc
}

// GeoJSON marshals the overlays as an indented FeatureCollection.
func GeoJSON(layers []*slippy.VectorLayer) ([]byte, error) {
	data, err := json.MarshalIndent(FeatureCollection(layers), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal geojson: %w", err)
	}
	return data, nil
}

// WriteGeoJSONFile writes the overlays to path.
func WriteGeoJSONFile(path string, layers []*slippy.VectorLayer) error {
	data, err := GeoJSON(layers)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WKT returns one line per overlay in geographic coordinates.
func WKT(layers []*slippy.VectorLayer) []string {
	out := make([]string, 0, len(layers))
	for _, l := range layers {
		out = append(out, wkt.MarshalString(geom.CloseRings(geom.ToWGS84(l.Feature.Geometry))))
	}
	return out
}

// WriteWKT writes WKT lines to w.
func WriteWKT(w io.Writer, layers []*slippy.VectorLayer) error {
	lines := WKT(layers)
	if len(lines) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchmap/internal/geom"
	"searchmap/internal/slippy"
)

func layers(t *testing.T) []*slippy.VectorLayer {
	t.Helper()
	rect, err := geom.Build(-10, 10, -5, 5)
	require.NoError(t, err)
	pt, err := geom.Build(10, 10, 50, 50)
	require.NoError(t, err)

	var out []*slippy.VectorLayer
	for _, g := range []orb.Geometry{rect, pt} {
		f := geojson.NewFeature(geom.ToMercator(g))
		f.Properties["Dataset Title"] = "title"
		out = append(out, slippy.NewVectorLayer(f, nil))
	}
	return out
}

func TestFeatureCollection(t *testing.T) {
	ls := layers(t)
	fc := FeatureCollection(ls)
	require.Len(t, fc.Features, 2)

	poly, ok := fc.Features[0].Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly[0], 5, "ring is closed on export")
	assert.InDelta(t, -10, poly[0][0][0], 1e-6)
	assert.InDelta(t, -5, poly[0][0][1], 1e-6)
	assert.InDelta(t, 10, poly[0][2][0], 1e-6)
	assert.InDelta(t, 5, poly[0][2][1], 1e-6)

	pt := fc.Features[1].Geometry.(orb.Point)
	assert.InDelta(t, 10, pt[0], 1e-6)
	assert.InDelta(t, 50, pt[1], 1e-6)

	assert.Equal(t, "title", fc.Features[0].Properties["Dataset Title"])
	assert.Equal(t, ls[0].ID(), fc.Features[0].ID)

	// layers keep their open, projected ring
	assert.Len(t, ls[0].Feature.Geometry.(orb.Polygon)[0], 4)
}

func TestGeoJSON(t *testing.T) {
	data, err := GeoJSON(layers(t))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "FeatureCollection", raw["type"])
	assert.Len(t, raw["features"], 2)

	path := filepath.Join(t.TempDir(), "out.geojson")
	require.NoError(t, WriteGeoJSONFile(path, layers(t)))
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(onDisk)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)
}

func TestWKT(t *testing.T) {
	lines := WKT(layers(t))
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "POLYGON"))
	assert.True(t, strings.HasPrefix(lines[1], "POINT"))

	var buf bytes.Buffer
	require.NoError(t, WriteWKT(&buf, layers(t)))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))

	buf.Reset()
	require.NoError(t, WriteWKT(&buf, nil))
	assert.Empty(t, buf.String())
}

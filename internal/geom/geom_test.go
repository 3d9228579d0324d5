package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name                           string
		minLon, maxLon, minLat, maxLat float64
		want                           orb.Geometry
	}{
		{
			name:   "degenerate box is a point",
			minLon: 10, maxLon: 10, minLat: 50, maxLat: 50,
			want: orb.Point{10, 50},
		},
		{
			name:   "box is a rectangle in corner order",
			minLon: -10, maxLon: 10, minLat: -5, maxLat: 5,
			want: orb.Polygon{orb.Ring{{-10, -5}, {-10, 5}, {10, 5}, {10, -5}}},
		},
		{
			name:   "equal longitudes only gives zero-width rectangle",
			minLon: 7, maxLon: 7, minLat: 1, maxLat: 2,
			want: orb.Polygon{orb.Ring{{7, 1}, {7, 2}, {7, 2}, {7, 1}}},
		},
		{
			name:   "equal latitudes only gives zero-height rectangle",
			minLon: 1, maxLon: 2, minLat: 3, maxLat: 3,
			want: orb.Polygon{orb.Ring{{1, 3}, {1, 3}, {2, 3}, {2, 3}}},
		},
		{
			name:   "polar latitudes are clamped",
			minLon: -180, maxLon: 180, minLat: -90, maxLat: 90,
			want: orb.Polygon{orb.Ring{{-180, -MaxLatitude}, {-180, MaxLatitude}, {180, MaxLatitude}, {180, -MaxLatitude}}},
		},
		{
			name:   "polar point is clamped after the degeneracy check",
			minLon: 0, maxLon: 0, minLat: 90, maxLat: 90,
			want: orb.Point{0, MaxLatitude},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.minLon, tt.maxLon, tt.minLat, tt.maxLat)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildRejectsNonFinite(t *testing.T) {
	_, err := Build(math.NaN(), 1, 2, 3)
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = Build(0, math.Inf(1), 2, 3)
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestClampLatitude(t *testing.T) {
	for _, lat := range []float64{-1000, -90, -89.999995, 90, 89.999995, 1e9} {
		got := ClampLatitude(lat)
		assert.GreaterOrEqual(t, got, -MaxLatitude, "lat %v", lat)
		assert.LessOrEqual(t, got, MaxLatitude, "lat %v", lat)
	}
	for _, lat := range []float64{-MaxLatitude, -45.5, 0, 12.25, MaxLatitude} {
		assert.Equal(t, lat, ClampLatitude(lat))
	}
}

func TestToMercator(t *testing.T) {
	const r = 6378137.0
	src := orb.Point{10, 50}
	got := ToMercator(src).(orb.Point)

	wantX := r * 10 * math.Pi / 180
	wantY := r * math.Log(math.Tan(math.Pi/4+50*math.Pi/360))
	assert.InDelta(t, wantX, got[0], 1e-2)
	assert.InDelta(t, wantY, got[1], 1e-2)
	assert.Equal(t, orb.Point{10, 50}, src, "source geometry must not be modified")

	back := ToWGS84(got).(orb.Point)
	assert.InDelta(t, 10, back[0], 1e-6)
	assert.InDelta(t, 50, back[1], 1e-6)
}

func TestToMercatorClampedPoleIsFinite(t *testing.T) {
	g, err := Build(-180, 180, -90, 90)
	require.NoError(t, err)
	b := ToMercator(g).Bound()
	for _, v := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
	}
}

func TestCloseRings(t *testing.T) {
	open := orb.Polygon{orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}}}
	closed := CloseRings(open).(orb.Polygon)
	assert.Len(t, closed[0], 5)
	assert.Equal(t, closed[0][0], closed[0][4])
	assert.Len(t, open[0], 4)

	assert.Equal(t, orb.Point{1, 2}, CloseRings(orb.Point{1, 2}))
}

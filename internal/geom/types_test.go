package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeOf(t *testing.T) {
	tests := []struct {
		g    orb.Geometry
		want Shape
	}{
		{orb.Point{1, 2}, ShapePoint},
		{orb.MultiPoint{{1, 2}}, ShapeMultiPoint},
		{orb.LineString{{1, 2}, {3, 4}}, ShapeLineString},
		{orb.MultiLineString{{{1, 2}, {3, 4}}}, ShapeMultiLineString},
		{orb.Polygon{orb.Ring{{0, 0}, {0, 1}, {1, 1}}}, ShapePolygon},
		{orb.MultiPolygon{{orb.Ring{{0, 0}, {0, 1}, {1, 1}}}}, ShapeMultiPolygon},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := ShapeOf(tt.g)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ShapeOf(orb.Collection{orb.Point{1, 2}})
	assert.ErrorIs(t, err, ErrUnknownShape)
	_, err = ShapeOf(nil)
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestExtent(t *testing.T) {
	var e Extent
	assert.False(t, e.IsSet())

	a := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}
	b := orb.Bound{Min: orb.Point{5, -3}, Max: orb.Point{6, -2}}
	c := orb.Point{-4, 9}.Bound()

	e.Extend(a)
	got, ok := e.Bound()
	require.True(t, ok)
	assert.Equal(t, a, got)

	e.Extend(b)
	e.Extend(c)
	want := orb.Bound{Min: orb.Point{-4, -3}, Max: orb.Point{6, 9}}
	got, _ = e.Bound()
	assert.Equal(t, want, got)

	// accumulation order does not matter
	var r Extent
	for _, x := range []orb.Bound{c, b, a} {
		r.Extend(x)
	}
	rb, _ := r.Bound()
	assert.Equal(t, want, rb)

	e.Reset()
	assert.False(t, e.IsSet())
}

func TestExtentOfPointIsZeroArea(t *testing.T) {
	var e Extent
	e.Extend(orb.Point{3, 4}.Bound())
	b, ok := e.Bound()
	require.True(t, ok)
	assert.Equal(t, b.Min, b.Max)
}

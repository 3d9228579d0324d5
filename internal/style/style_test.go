package style

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchmap/internal/geom"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
		err  bool
	}{
		{in: "0xff0000", want: RGBA{R: 255, A: 1}},
		{in: "#00ff00", want: RGBA{G: 255, A: 1}},
		{in: "00ff00", want: RGBA{G: 255, A: 1}},
		{in: "0x3399CC", want: RGBA{R: 0x33, G: 0x99, B: 0xcc, A: 1}},
		{in: "#ABCDEF", want: RGBA{R: 0xab, G: 0xcd, B: 0xef, A: 1}},
		{in: "#fff", err: true},
		{in: "red", err: true},
		{in: "", err: true},
		{in: "#12345g", err: true},
		{in: "0x0x112233", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRGBACSS(t *testing.T) {
	c := RGBA{R: 0, G: 255, B: 0, A: 1}
	assert.Equal(t, "#00ff00", c.CSS())
	assert.Equal(t, "rgba(0,255,0,0.25)", c.WithAlpha(0.25).CSS())
}

func TestResolverPoint(t *testing.T) {
	r, err := NewResolver("0xff0000")
	require.NoError(t, err)

	styles, err := r.Style(orb.Point{10, 50})
	require.NoError(t, err)
	require.Len(t, styles, 1)

	img := styles[0].Image
	require.NotNil(t, img)
	assert.Equal(t, 5.0, img.Radius)
	assert.Equal(t, "#ff0000", img.Fill.Color.CSS())
	assert.InDelta(t, 0.6, img.Fill.Alpha(), 1e-9)
	assert.Equal(t, Black, img.Stroke.Color)
	assert.Equal(t, 1.0, img.Stroke.Width)
	assert.InDelta(t, 0.5, img.Stroke.Alpha(), 1e-9)
	assert.Nil(t, styles[0].Fill)
}

func TestResolverPolygon(t *testing.T) {
	r, err := NewResolver("00ff00")
	require.NoError(t, err)

	styles, err := r.Style(orb.Polygon{orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}}})
	require.NoError(t, err)
	require.Len(t, styles, 1)

	s := styles[0]
	assert.Equal(t, "rgba(0,255,0,0.25)", s.Fill.Color.CSS())
	assert.Equal(t, "#00ff00", s.Stroke.Color.CSS())
	assert.Equal(t, 1.0, s.Stroke.Width)
	assert.InDelta(t, 1.0, s.Stroke.Alpha(), 1e-9)
	assert.Nil(t, s.Image)
}

func TestResolverCoversSixShapes(t *testing.T) {
	r, err := NewResolver("#123456")
	require.NoError(t, err)

	for _, shape := range []geom.Shape{
		geom.ShapePoint, geom.ShapeMultiPoint,
		geom.ShapeLineString, geom.ShapeMultiLineString,
		geom.ShapePolygon, geom.ShapeMultiPolygon,
	} {
		styles, err := r.For(shape)
		require.NoError(t, err, shape.String())
		assert.NotEmpty(t, styles, shape.String())
	}

	line, _ := r.For(geom.ShapeLineString)
	assert.Equal(t, 3.0, line[0].Stroke.Width)
	assert.Nil(t, line[0].Fill)

	_, err = r.For(geom.Shape(99))
	assert.ErrorIs(t, err, ErrUnstyledShape)
	_, err = r.Style(orb.Collection{})
	assert.ErrorIs(t, err, ErrUnstyledShape)
}

func TestNewResolverOr(t *testing.T) {
	r, err := NewResolverOr("not-a-color", "#3399CC")
	assert.ErrorIs(t, err, ErrInvalidColor)
	require.NotNil(t, r)
	assert.Equal(t, "#3399cc", r.Color().Hex())

	r, err = NewResolverOr("0x112233", "#3399CC")
	require.NoError(t, err)
	assert.Equal(t, "#112233", r.Color().Hex())

	r, err = NewResolverOr("bad", "also-bad")
	assert.Error(t, err)
	assert.Nil(t, r)
}

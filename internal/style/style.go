// Package style turns a dataset colour into per-shape rendering styles.
package style

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"

	"searchmap/internal/geom"
)

var (
	ErrInvalidColor  = errors.New("invalid hex color")
	ErrUnstyledShape = errors.New("no style for shape")
)

var hexPattern = regexp.MustCompile(`(?i)^#?([0-9a-f]{2})([0-9a-f]{2})([0-9a-f]{2})$`)

// RGBA is a colour with a straight alpha in [0,1].
type RGBA struct {
	R, G, B uint8
	A       float64
}

var Black = RGBA{A: 1}

// Hex returns #rrggbb, ignoring alpha.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// CSS returns #rrggbb for opaque colours and rgba(r,g,b,a) otherwise.
func (c RGBA) CSS() string {
	if c.A >= 1 {
		return c.Hex()
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.R, c.G, c.B, c.A)
}

// WithAlpha returns c with alpha a.
func (c RGBA) WithAlpha(a float64) RGBA {
	c.A = a
	return c
}

// Colorful converts to a go-colorful colour, dropping alpha.
func (c RGBA) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Normalize rewrites a leading "0x" as "#".
func Normalize(s string) string {
	return strings.Replace(strings.TrimSpace(s), "0x", "#", 1)
}

// ParseHex parses a 6-digit hex colour, with or without "#" or "0x".
func ParseHex(s string) (RGBA, error) {
	n := Normalize(s)
	if !hexPattern.MatchString(n) {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if !strings.HasPrefix(n, "#") {
		n = "#" + n
	}
	c, err := colorful.Hex(strings.ToLower(n))
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	return RGBA{R: r, G: g, B: b, A: 1}, nil
}

type Fill struct {
	Color   RGBA
	Opacity float64
}

type Stroke struct {
	Color   RGBA
	Width   float64
	Opacity float64
}

type Circle struct {
	Radius float64
	Fill   *Fill
	Stroke *Stroke
}

// Style is one drawing instruction; unset parts are not drawn.
type Style struct {
	Image  *Circle
	Fill   *Fill
	Stroke *Stroke
}

// Alpha is the effective opacity of a fill.
func (f Fill) Alpha() float64 { return f.Color.A * f.Opacity }

// Alpha is the effective opacity of a stroke.
func (s Stroke) Alpha() float64 { return s.Color.A * s.Opacity }

// Resolver holds the style table for one colour.
type Resolver struct {
	color  RGBA
	styles map[geom.Shape][]Style
}

// NewResolver builds the style table for color. An unparsable colour
// returns ErrInvalidColor; callers pick a fallback with NewResolverOr.
func NewResolver(color string) (*Resolver, error) {
	c, err := ParseHex(color)
	if err != nil {
		return nil, err
	}
	return newResolver(c), nil
}

// NewResolverOr builds the style table for color, substituting fallback when
// color does not parse. The parse error is still returned so it can be
// reported.
func NewResolverOr(color, fallback string) (*Resolver, error) {
	r, err := NewResolver(color)
	if err == nil {
		return r, nil
	}
	fb, ferr := ParseHex(fallback)
	if ferr != nil {
		return nil, errors.Join(err, fmt.Errorf("fallback: %w", ferr))
	}
	return newResolver(fb), err
}

func newResolver(c RGBA) *Resolver {
	marker := []Style{{
		Image: &Circle{
			Radius: 5,
			Fill:   &Fill{Color: c, Opacity: 0.6},
			Stroke: &Stroke{Color: Black, Width: 1, Opacity: 0.5},
		},
	}}
	area := []Style{{
		Fill:   &Fill{Color: c.WithAlpha(0.25), Opacity: 1},
		Stroke: &Stroke{Color: c, Width: 1, Opacity: 1},
	}}
	line := []Style{{
		Stroke: &Stroke{Color: c, Width: 3, Opacity: 1},
	}}
	return &Resolver{
		color: c,
		styles: map[geom.Shape][]Style{
			geom.ShapePoint:           marker,
			geom.ShapeMultiPoint:      marker,
			geom.ShapePolygon:         area,
			geom.ShapeMultiPolygon:    area,
			geom.ShapeLineString:      line,
			geom.ShapeMultiLineString: line,
		},
	}
}

// Color is the resolved base colour.
func (r *Resolver) Color() RGBA { return r.color }

// For returns the styles registered for shape.
func (r *Resolver) For(shape geom.Shape) ([]Style, error) {
	s, ok := r.styles[shape]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnstyledShape, shape)
	}
	return s, nil
}

// Style resolves the styles for a geometry at draw time.
func (r *Resolver) Style(g orb.Geometry) ([]Style, error) {
	shape, err := geom.ShapeOf(g)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnstyledShape, err)
	}
	return r.For(shape)
}

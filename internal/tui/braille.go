package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// brailleBuf is a 2x4 dot grid per terminal cell with one composited colour
// per cell.
type brailleBuf struct {
	w, h  int       // in cells
	m     [][]uint8 // per-cell 8-bit mask
	col   [][]colorful.Color
	inked [][]bool
	bg    colorful.Color

	// current pen, applied by end()
	pen     colorful.Color
	alpha   float64
	touched map[[2]int]struct{}
}

func newBrailleBuf(w, h int, bg colorful.Color) *brailleBuf {
	m := make([][]uint8, h)
	col := make([][]colorful.Color, h)
	inked := make([][]bool, h)
	for i := range m {
		m[i] = make([]uint8, w)
		col[i] = make([]colorful.Color, w)
		inked[i] = make([]bool, w)
	}
	return &brailleBuf{w: w, h: h, m: m, col: col, inked: inked, bg: bg}
}

// begin starts a drawing operation. Every cell touched before end() is
// composited with c at alpha exactly once.
func (b *brailleBuf) begin(c colorful.Color, alpha float64) {
	b.pen = c
	b.alpha = clamp01(alpha)
	b.touched = make(map[[2]int]struct{})
}

func (b *brailleBuf) end() {
	for k := range b.touched {
		cx, cy := k[0], k[1]
		under := b.bg
		if b.inked[cy][cx] {
			under = b.col[cy][cx]
		}
		b.col[cy][cx] = under.BlendRgb(b.pen, b.alpha).Clamped()
		b.inked[cy][cx] = true
	}
	b.touched = nil
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	var bit uint8
	if rx == 0 {
		switch ry {
		case 0:
			bit = 0x01
		case 1:
			bit = 0x02
		case 2:
			bit = 0x04
		case 3:
			bit = 0x40
		}
	} else {
		switch ry {
		case 0:
			bit = 0x08
		case 1:
			bit = 0x10
		case 2:
			bit = 0x20
		case 3:
			bit = 0x80
		}
	}
	b.m[cy][cx] |= bit
	if b.touched != nil {
		b.touched[[2]int{cx, cy}] = struct{}{}
	}
}

// drawLineMicro draws a line on the microgrid using Bresenham. Callers clip
// first; see clipLine.
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// hline fills micro-pixels x0..x1 on row y.
func (b *brailleBuf) hline(x0, x1, y int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	x0 = max(0, x0)
	x1 = min(b.w*2-1, x1)
	for x := x0; x <= x1; x++ {
		b.setPixel(x, y)
	}
}

func (b *brailleBuf) glyph(x, y int) rune {
	if mask := b.m[y][x]; mask != 0 {
		return rune(0x2800 + int(mask))
	}
	return ' '
}

// toLines renders the grid without colour.
func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		row := make([]rune, b.w)
		for x := 0; x < b.w; x++ {
			row[x] = b.glyph(x, y)
		}
		out[y] = string(row)
	}
	return out
}

// toColorLines renders the grid, styling runs of equally coloured cells.
func (b *brailleBuf) toColorLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		var sb strings.Builder
		var run []rune
		runHex := ""
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runHex == "" {
				sb.WriteString(string(run))
			} else {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runHex)).Render(string(run)))
			}
			run = run[:0]
		}
		for x := 0; x < b.w; x++ {
			hex := ""
			if b.m[y][x] != 0 && b.inked[y][x] {
				hex = b.col[y][x].Hex()
			}
			if hex != runHex {
				flush()
				runHex = hex
			}
			run = append(run, b.glyph(x, y))
		}
		flush()
		out[y] = sb.String()
	}
	return out
}

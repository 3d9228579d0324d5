package tui

import (
	"fmt"
	"strings"

	table "github.com/charmbracelet/bubbles/table"
	"github.com/paulmach/orb/encoding/wkt"

	"searchmap/internal/geom"
	"searchmap/internal/slippy"
	"searchmap/internal/viz"
)

var attrColumns = []string{viz.AttrTitle, viz.AttrAuthor, viz.AttrDataCenter, "shape", viz.AttrColor}

// refreshAttrsFromCurrent rebuilds the table rows from the overlays on the map.
func (m *Model) refreshAttrsFromCurrent() {
	rows := buildAttributes(m.viz.Map().Vectors())
	if len(rows) == 0 {
		m.showAttrs = false
		m.status = "no overlays to list"
		return
	}
	tcols := make([]table.Column, 0, len(attrColumns)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	for i, c := range attrColumns {
		w := len(c) + 2
		for _, r := range rows {
			w = max(w, len(r[i])+2)
		}
		tcols = append(tcols, table.Column{Title: c, Width: min(w, 32)})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		trows = append(trows, table.Row(append([]string{fmt.Sprintf("%d", i+1)}, r...)))
	}
	// clear rows first so columns and rows never disagree mid-update
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

// buildAttributes returns one row per overlay in attrColumns order.
func buildAttributes(layers []*slippy.VectorLayer) [][]string {
	rows := make([][]string, 0, len(layers))
	for _, l := range layers {
		shape := ""
		if s, err := geom.ShapeOf(l.Feature.Geometry); err == nil {
			shape = s.String()
		}
		rows = append(rows, []string{
			l.Feature.Properties.MustString(viz.AttrTitle, ""),
			l.Feature.Properties.MustString(viz.AttrAuthor, ""),
			l.Feature.Properties.MustString(viz.AttrDataCenter, ""),
			shape,
			l.Feature.Properties.MustString(viz.AttrColor, ""),
		})
	}
	return rows
}

// inspectText describes one overlay in geographic coordinates.
func inspectText(l *slippy.VectorLayer) string {
	g := geom.CloseRings(geom.ToWGS84(l.Feature.Geometry))
	b := g.Bound()
	props := l.Feature.Properties
	lines := []string{
		"title:       " + props.MustString(viz.AttrTitle, ""),
		"author:      " + props.MustString(viz.AttrAuthor, ""),
		"data center: " + props.MustString(viz.AttrDataCenter, ""),
		"color:       " + props.MustString(viz.AttrColor, ""),
		fmt.Sprintf("bbox:        [%.5f, %.5f, %.5f, %.5f]", b.Min[0], b.Min[1], b.Max[0], b.Max[1]),
		"wkt:         " + wkt.MarshalString(g),
		"id:          " + l.ID(),
	}
	return strings.Join(lines, "\n")
}

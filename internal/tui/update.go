package tui

import (
	"fmt"
	"log/slog"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"searchmap/internal/export"
	"searchmap/internal/geom"
	"searchmap/internal/selection"
	"searchmap/internal/slippy"
	"searchmap/internal/viz"
)

const (
	panCells = 4
	zoomStep = 0.5
	sidebarW = 28
	headerH  = 1
	footerH  = 2
	minMapW  = 10
	minMapH  = 4
)

// layout returns the map origin and size in cells for the current window.
func (m Model) layout() (originX, originY, w, h int) {
	sidebar := 0
	if m.showSidebar {
		sidebar = sidebarW + 1
	}
	h = max(minMapH, m.height-headerH-footerH)
	w = max(minMapW, max(10, m.width)-sidebar-1)
	return sidebar, headerH, w, h
}

// resize keeps the map's pixel size in step with the terminal.
func (m *Model) resize() tea.Cmd {
	_, _, w, h := m.layout()
	m.mapW, m.mapH = w, h
	m.viz.Map().SetSize(slippy.Size{W: w * 2, H: h * 4})
	if m.showSidebar {
		m.l.SetSize(sidebarW-2, h-2)
	}
	if m.pendingFit {
		m.pendingFit = false
		if m.viz.Refocus() {
			m.viz.Map().Settle()
		}
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.resize()
	case SelectionMsg:
		return m, m.receive(msg.Message)
	case frameMsg:
		if msg.gen != m.animGen {
			return m, nil
		}
		if m.viz.Map().Step() {
			return m, frameTick(msg.gen)
		}
		return m, nil
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "1":
			m.vis.Markers = !m.vis.Markers
			m.status = fmt.Sprintf("markers: %v", m.vis.Markers)
		case "2":
			m.vis.Areas = !m.vis.Areas
			m.status = fmt.Sprintf("areas: %v", m.vis.Areas)
		case "3":
			m.vis.Graticule = !m.vis.Graticule
			m.status = fmt.Sprintf("graticule: %v", m.vis.Graticule)
		case "l":
			all := m.vis.Markers && m.vis.Areas && m.vis.Graticule
			m.vis = Visibility{Markers: !all, Areas: !all, Graticule: !all}
			m.status = fmt.Sprintf("layers: markers=%v areas=%v graticule=%v", m.vis.Markers, m.vis.Areas, m.vis.Graticule)
		case "+", "=":
			m.zoomBy(zoomStep)
		case "-", "_":
			m.zoomBy(-zoomStep)
		case "f":
			if m.viz.Refocus() {
				m.status = "fit to overlays"
				return m, m.animate()
			}
			m.status = "nothing to fit"
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
			}
			return m, m.resize()
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.status = "paste mode"
			return m, m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrsFromCurrent()
			}
		case "i":
			m.inspect()
		case "e":
			if err := export.WriteGeoJSONFile(m.exportPath, m.viz.Map().Vectors()); err != nil {
				m.status = "export error: " + err.Error()
				slog.Error("export failed", "path", m.exportPath, "error", err)
			} else {
				m.status = fmt.Sprintf("exported %d overlays to %s", len(m.viz.Map().Vectors()), m.exportPath)
			}
		case "esc":
			m.inspectPopup = ""
			m.showAttrs = false
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					return m, m.loadPath(it.path)
				}
			}
		case "up":
			m.pan(0, -panCells*4)
		case "down":
			m.pan(0, panCells*4)
		case "left":
			m.pan(-panCells*2, 0)
		case "right":
			m.pan(panCells*2, 0)
		}
	case tea.MouseMsg:
		m.hover(msg.X, msg.Y)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		m.status = "view mode"
		return m, nil
	case "enter":
		raw := strings.TrimSpace(m.ta.Value())
		if raw == "" {
			m.status = "paste: empty"
			return m, nil
		}
		sel, err := selection.Decode([]byte(raw))
		if err != nil {
			m.status = "paste error: " + err.Error()
			return m, nil
		}
		sel.Source = "paste"
		m.pasteMode = false
		m.ta.Blur()
		m.selPath = ""
		return m, m.receive(sel)
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

// pan moves the camera by a dot offset; manual moves cancel a running fit.
func (m *Model) pan(dx, dy float64) {
	mp := m.viz.Map()
	mp.SetView(mp.View().Pan(dx, dy, mp.TileSize()))
	m.animGen++
	c := geom.ToWGS84(mp.View().Center).(orb.Point)
	m.status = fmt.Sprintf("center: %.3f, %.3f", c.Lon(), c.Lat())
}

func (m *Model) zoomBy(dz float64) {
	mp := m.viz.Map()
	v := mp.View()
	mp.SetView(v.WithZoom(v.Zoom + dz))
	m.animGen++
	m.status = fmt.Sprintf("zoom: %.1f", mp.View().Zoom)
}

// inspect describes the overlay under the viewport centre, or the nearest one.
func (m *Model) inspect() {
	l, ok := m.viz.OverlayAt(m.viz.Map().View().Center)
	if !ok {
		m.inspectPopup = "no overlays on the map"
		m.status = m.inspectPopup
		return
	}
	m.inspectPopup = inspectText(l)
	m.status = "inspect popup"
}

// hover tracks the pointer over the map area.
func (m *Model) hover(x, y int) {
	ox, oy, w, h := m.layout()
	if x < ox || x >= ox+w || y < oy || y >= oy+h {
		m.hovering = false
		m.hoverHasGeo = false
		m.hoverTitle = ""
		return
	}
	m.hovering = true
	m.hoverCellX, m.hoverCellY = x-ox, y-oy

	mp := m.viz.Map()
	// centre of the cell, in dots
	px := float64(m.hoverCellX*2) + 1
	py := float64(m.hoverCellY*4) + 2
	merc := mp.View().FromPixel(px, py, mp.Size(), mp.TileSize())
	ll := geom.ToWGS84(merc).(orb.Point)
	m.hoverHasGeo = true
	m.hoverLon, m.hoverLat = ll.Lon(), ll.Lat()

	m.hoverTitle = ""
	if l, ok := m.viz.OverlayAt(merc); ok && l.Extent().Contains(merc) {
		m.hoverTitle = l.Feature.Properties.MustString(viz.AttrTitle, "")
	}
}

package tui

import (
	"os"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"searchmap/internal/inbound"
	"searchmap/internal/selection"
	"searchmap/internal/viz"
)

// frameInterval paces fit animations.
const frameInterval = 33 * time.Millisecond

// SelectionMsg carries a selection into the program loop.
type SelectionMsg struct {
	Message selection.Message
}

// frameMsg advances animation gen; frames from a superseded fit are ignored.
type frameMsg struct{ gen int }

// Sender returns a handler that delivers messages through p. Every source
// feeds the same loop, so messages are processed one at a time.
func Sender(p *tea.Program) inbound.Handler {
	return func(msg selection.Message) {
		p.Send(SelectionMsg{Message: msg})
	}
}

type Model struct {
	width  int
	height int

	viz *viz.Visualization

	showSidebar bool
	helpVisible bool
	vis         Visibility
	color       bool

	status string

	// animation generation; bumped on every fit
	animGen    int
	pendingFit bool

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// last rendered map size in cells
	mapW int
	mapH int

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverCellX  int
	hoverCellY  int
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64
	hoverTitle  string

	// attributes table
	showAttrs bool
	tbl       table.Model

	exportPath string
}

// New builds the model around a visualisation session.
func New(v *viz.Visualization) Model {
	m := Model{
		viz:         v,
		showSidebar: false,
		helpVisible: true,
		vis:         AllVisible(),
		color:       true,
		status:      "searchmap ready",
		exportPath:  "searchmap-export.geojson",
	}
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Selections"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = `Paste a selection, e.g. {"selected":[{"minLongitude":-10,"maxLongitude":10,"minLatitude":-5,"maxLatitude":5,"color":"#ff0000"}]}. Enter renders; Esc cancels.`
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath preloads a selection file at launch.
func NewWithPath(v *viz.Visualization, path string) Model {
	m := New(v)
	m.loadPath(path)
	return m
}

// WithColor turns ANSI colouring of the map on or off.
func (m Model) WithColor(on bool) Model {
	m.color = on
	return m
}

// WithExportPath sets where the e key writes GeoJSON.
func (m Model) WithExportPath(p string) Model {
	m.exportPath = p
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func frameTick(gen int) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{gen: gen} })
}

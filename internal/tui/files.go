package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"searchmap/internal/selection"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !selection.Supported(name) {
			continue
		}
		items = append(items, fileItem{
			title: name,
			desc:  strings.ToLower(filepath.Ext(name)),
			path:  filepath.Join(m.cwd, name),
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.items = items
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no selection files in current directory"
	}
}

// loadPath reads a selection file and displays it.
func (m *Model) loadPath(p string) tea.Cmd {
	m.selPath = p
	msg, err := selection.LoadFile(p)
	if err != nil {
		m.status = "load error: " + err.Error()
		return nil
	}
	return m.receive(msg)
}

// receive hands msg to the visualisation and starts the fit animation.
func (m *Model) receive(msg selection.Message) tea.Cmd {
	res := m.viz.ReceiveMessage(msg)
	m.inspectPopup = ""
	m.status = fmt.Sprintf("%s: overlays=%d rejected=%d failed=%d", sourceName(msg.Source), res.Overlays, res.Rejected, res.Failed)
	if m.showAttrs {
		m.refreshAttrsFromCurrent()
	}
	if !res.Focused {
		return nil
	}
	if m.viz.Map().Size().Empty() {
		// fit again once the window size is known
		m.pendingFit = true
		m.viz.Map().Settle()
		return nil
	}
	return m.animate()
}

func (m *Model) animate() tea.Cmd {
	m.animGen++
	if !m.viz.Map().Animating() {
		return nil
	}
	return frameTick(m.animGen)
}

func sourceName(s string) string {
	if s == "" {
		return "selection"
	}
	return s
}

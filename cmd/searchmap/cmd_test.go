package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSelection(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"selected":[
		{"minLongitude":-10,"maxLongitude":10,"minLatitude":-5,"maxLatitude":5,"title":"A","color":"#ff0000"},
		{"minLongitude":30,"maxLongitude":30,"minLatitude":40,"maxLatitude":40,"title":"B","color":"0x00ff00"},
		{"title":"no bounds"}
	]}`), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmdMetadata(t *testing.T) {
	assert.Equal(t, "searchmap", rootCmd.Use)
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["view"])
	assert.True(t, names["render"])
	assert.True(t, names["publish"])
}

func TestRenderCmd(t *testing.T) {
	dir := t.TempDir()
	chdirTest(t, dir)
	path := writeSelection(t, dir)
	geo := filepath.Join(dir, "out.geojson")

	out, errOut, err := run(t, "render", path, "--width", "40", "--height", "12", "--no-color", "--wkt", "--geojson", geo)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 12+2, "map rows then one WKT line per overlay")
	assert.True(t, strings.HasPrefix(lines[12], "POLYGON"))
	assert.True(t, strings.HasPrefix(lines[13], "POINT"))
	assert.Contains(t, errOut, "2 overlays")
	assert.Contains(t, errOut, "1 rejected")

	data, err := os.ReadFile(geo)
	require.NoError(t, err)
	var fc struct {
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Len(t, fc.Features, 2)
}

func TestRenderCmdRejectsTinyMap(t *testing.T) {
	dir := t.TempDir()
	chdirTest(t, dir)
	path := writeSelection(t, dir)

	_, _, err := run(t, "render", path, "--width", "2", "--height", "12")
	assert.Error(t, err)
}

func TestRenderCmdMissingFile(t *testing.T) {
	chdirTest(t, t.TempDir())
	_, _, err := run(t, "render", "nope.json", "--width", "40", "--height", "12")
	assert.Error(t, err)
}

func TestPublishRequiresServer(t *testing.T) {
	dir := t.TempDir()
	chdirTest(t, dir)
	path := writeSelection(t, dir)

	_, _, err := run(t, "publish", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no NATS server")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTest(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Map.Zoom)
	assert.Equal(t, 3.0, cfg.Map.MaxFitZoom)
	assert.Equal(t, 500*time.Millisecond, cfg.Map.FitDuration)
	assert.Equal(t, 64.0, cfg.Map.TileSize)
	assert.Equal(t, "#3399CC", cfg.Style.FallbackColor)
	assert.Equal(t, "searchmap.selection", cfg.Inbound.NATS.Subject)
	assert.Equal(t, "searchmap.log", cfg.Log.File)
	assert.False(t, cfg.Inbound.Stdin)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "searchmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
map:
  zoom: 4
  fit_duration: 250ms
style:
  fallback_color: "0x00ff00"
inbound:
  nats:
    url: nats://localhost:4222
`), 0o644))

	t.Setenv("SEARCHMAP_LOG_LEVEL", "debug")
	t.Setenv("SEARCHMAP_INBOUND_LISTEN", ":8089")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Map.Zoom)
	assert.Equal(t, 250*time.Millisecond, cfg.Map.FitDuration)
	assert.Equal(t, "0x00ff00", cfg.Style.FallbackColor)
	assert.Equal(t, "nats://localhost:4222", cfg.Inbound.NATS.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":8089", cfg.Inbound.Listen)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Config{
		Map: MapConfig{
			CenterLat:     95,
			Zoom:          -1,
			MaxFitZoom:    3,
			TileSize:      0,
			GraticuleStep: 30,
		},
		Style: StyleConfig{FallbackColor: "blue"},
		Log:   LogConfig{Level: "loud", Format: "text"},
		Inbound: InboundConfig{
			NATS: NATSConfig{URL: "nats://x"},
		},
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"map.center_lat",
		"map.zoom",
		"map.tile_size",
		"style.fallback_color",
		"log.level",
		"inbound.nats.subject",
	} {
		assert.Contains(t, err.Error(), want)
	}
	assert.NotContains(t, err.Error(), "map.max_fit_zoom")
}

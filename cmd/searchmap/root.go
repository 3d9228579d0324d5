package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"searchmap/internal/config"
	"searchmap/internal/viz"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "searchmap",
	Short: "Show dataset coverage boxes on a map",
	Long: `searchmap draws the bounding boxes of selected search results on a
terminal map and frames the camera on them.

Selections are JSON objects of the form
  {"selected":[{"minLongitude":-10,"maxLongitude":10,"minLatitude":-5,"maxLatitude":5,
                "title":"...","authors":"...","dataCenter":"...","color":"#ff0000"}]}

Examples:
  searchmap view results.json
  producer | searchmap view --stdin
  searchmap view --nats-url nats://localhost:4222 --listen :8089
  searchmap render results.csv --width 100 --height 30 --geojson out.geojson
  searchmap publish results.json --nats-url nats://localhost:4222`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml if present)")
}

// vizOptions maps configuration onto the visualisation session.
func vizOptions(c *config.Config, logger *slog.Logger) viz.Options {
	return viz.Options{
		CenterLon:     c.Map.CenterLon,
		CenterLat:     c.Map.CenterLat,
		Zoom:          c.Map.Zoom,
		MaxFitZoom:    c.Map.MaxFitZoom,
		FitDuration:   c.Map.FitDuration,
		TileSize:      c.Map.TileSize,
		GraticuleStep: c.Map.GraticuleStep,
		FallbackColor: c.Style.FallbackColor,
		Logger:        logger,
	}
}

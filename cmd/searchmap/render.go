package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"searchmap/internal/export"
	"searchmap/internal/logging"
	"searchmap/internal/selection"
	"searchmap/internal/slippy"
	"searchmap/internal/tui"
	"searchmap/internal/viz"
)

var (
	renderWidth   int
	renderHeight  int
	renderGeoJSON string
	renderWKT     bool
	renderNoColor bool
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Print the map for a selection file and exit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if renderWidth < 10 || renderHeight < 4 {
			return fmt.Errorf("map must be at least 10x4 cells, got %dx%d", renderWidth, renderHeight)
		}
		logger := logging.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())

		msg, err := selection.LoadFile(args[0])
		if err != nil {
			return err
		}

		v := viz.New(vizOptions(cfg, logger))
		v.Map().SetSize(slippy.Size{W: renderWidth * 2, H: renderHeight * 4})
		res := v.ReceiveMessage(msg)
		v.Map().Settle()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, tui.RenderMap(v, tui.AllVisible(), !renderNoColor && !color.NoColor))

		if renderWKT {
			if err := export.WriteWKT(out, v.Map().Vectors()); err != nil {
				return fmt.Errorf("write wkt: %w", err)
			}
		}
		if renderGeoJSON != "" {
			if err := export.WriteGeoJSONFile(renderGeoJSON, v.Map().Vectors()); err != nil {
				return fmt.Errorf("write geojson: %w", err)
			}
		}

		printSummary(cmd.ErrOrStderr(), args[0], res, v)
		return nil
	},
}

func printSummary(w io.Writer, name string, res viz.Result, v *viz.Visualization) {
	fmt.Fprintf(w, "%s  %s overlays", color.CyanString(name), color.GreenString("%d", res.Overlays))
	if res.Rejected > 0 {
		fmt.Fprintf(w, ", %s rejected", color.YellowString("%d", res.Rejected))
	}
	if res.Failed > 0 {
		fmt.Fprintf(w, ", %s failed", color.RedString("%d", res.Failed))
	}
	view := v.Map().View()
	fmt.Fprintln(w, color.New(color.Faint).Sprintf("  zoom %.2f", view.Zoom))
}

func init() {
	renderCmd.Flags().IntVar(&renderWidth, "width", 80, "map width in terminal cells")
	renderCmd.Flags().IntVar(&renderHeight, "height", 24, "map height in terminal cells")
	renderCmd.Flags().StringVar(&renderGeoJSON, "geojson", "", "also write the overlays as GeoJSON to this file")
	renderCmd.Flags().BoolVar(&renderWKT, "wkt", false, "print one WKT line per overlay after the map")
	renderCmd.Flags().BoolVar(&renderNoColor, "no-color", false, "print the map without colour")
	rootCmd.AddCommand(renderCmd)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"searchmap/internal/config"
	"searchmap/internal/inbound"
	"searchmap/internal/logging"
	"searchmap/internal/tui"
	"searchmap/internal/viz"
)

var (
	viewStdin       bool
	viewNATSURL     string
	viewNATSSubject string
	viewListen      string
	viewNoColor     bool
	viewExport      string
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Open the interactive map",
	Long: `Open the interactive map, optionally preloading a selection file
(.json, .csv or .geojson). Further selections arrive from stdin, NATS or
HTTP when enabled; each one replaces what is on the map.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cfg.Inbound
		if cmd.Flags().Changed("stdin") {
			in.Stdin = viewStdin
		}
		if cmd.Flags().Changed("nats-url") {
			in.NATS.URL = viewNATSURL
		}
		if cmd.Flags().Changed("nats-subject") {
			in.NATS.Subject = viewNATSSubject
		}
		if cmd.Flags().Changed("listen") {
			in.Listen = viewListen
		}

		logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()
		logger := logging.Setup(cfg.Log.Level, cfg.Log.Format, logFile)

		v := viz.New(vizOptions(cfg, logger))
		var model tui.Model
		if len(args) == 1 {
			model = tui.NewWithPath(v, args[0])
		} else {
			model = tui.New(v)
		}
		model = model.WithColor(!viewNoColor)
		if viewExport != "" {
			model = model.WithExportPath(viewExport)
		}

		opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}
		if in.Stdin {
			// keyboard comes from the terminal; stdin carries selections
			opts = append(opts, tea.WithInputTTY())
		}
		p := tea.NewProgram(model, opts...)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		stop, err := startSources(ctx, in, tui.Sender(p))
		if err != nil {
			return err
		}
		defer stop()

		logger.Info("viewer started", "stdin", in.Stdin, "nats", in.NATS.URL, "listen", in.Listen)
		_, err = p.Run()
		return err
	},
}

// startSources wires every enabled inbound source to h.
func startSources(ctx context.Context, in config.InboundConfig, h inbound.Handler) (func(), error) {
	var closers []func()
	stop := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if in.Stdin {
		go func() {
			err := inbound.ReadLines(ctx, os.Stdin, "stdin", h)
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("stdin source stopped", "error", err)
				return
			}
			slog.Info("stdin closed")
		}()
	}

	if in.NATS.URL != "" {
		sub, err := inbound.NewSubscriber(in.NATS.URL)
		if err != nil {
			stop()
			return nil, err
		}
		closers = append(closers, sub.Close)
		if err := sub.Subscribe(in.NATS.Subject, h); err != nil {
			stop()
			return nil, err
		}
		slog.Info("nats source subscribed", "url", in.NATS.URL, "subject", in.NATS.Subject)
	}

	if in.Listen != "" {
		app := inbound.NewApp(h)
		go func() {
			if err := inbound.Serve(ctx, app, in.Listen); err != nil {
				slog.Error("http source stopped", "addr", in.Listen, "error", err)
			}
		}()
		slog.Info("http source listening", "addr", in.Listen)
	}

	return stop, nil
}

func init() {
	viewCmd.Flags().BoolVar(&viewStdin, "stdin", false, "read newline-delimited selections from stdin")
	viewCmd.Flags().StringVar(&viewNATSURL, "nats-url", "", "subscribe to selections on this NATS server")
	viewCmd.Flags().StringVar(&viewNATSSubject, "nats-subject", "", "NATS subject to subscribe to")
	viewCmd.Flags().StringVar(&viewListen, "listen", "", "accept selections over HTTP/WebSocket on this address")
	viewCmd.Flags().BoolVar(&viewNoColor, "no-color", false, "draw the map without colour")
	viewCmd.Flags().StringVar(&viewExport, "export", "", "file the e key writes GeoJSON to")
	rootCmd.AddCommand(viewCmd)
}

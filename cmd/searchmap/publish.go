package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"searchmap/internal/inbound"
	"searchmap/internal/selection"
)

var (
	publishNATSURL     string
	publishNATSSubject string
)

var publishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Send a selection file to viewers over NATS",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, subject := cfg.Inbound.NATS.URL, cfg.Inbound.NATS.Subject
		if publishNATSURL != "" {
			url = publishNATSURL
		}
		if publishNATSSubject != "" {
			subject = publishNATSSubject
		}
		if url == "" {
			return fmt.Errorf("no NATS server: set --nats-url or inbound.nats.url")
		}

		msg, err := selection.LoadFile(args[0])
		if err != nil {
			return err
		}
		if err := inbound.Publish(url, subject, msg.Selected); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published %s datasets to %s\n",
			color.GreenString("%d", len(msg.Selected)), color.CyanString(subject))
		if n := len(msg.Rejected); n > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s rows skipped\n", color.YellowString("%d", n))
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishNATSURL, "nats-url", "", "NATS server URL")
	publishCmd.Flags().StringVar(&publishNATSSubject, "nats-subject", "", "NATS subject")
	rootCmd.AddCommand(publishCmd)
}

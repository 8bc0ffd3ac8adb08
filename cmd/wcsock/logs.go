package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wcsocket/wcsocket-go/cmd/wcsock/commands"
)

func logCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect protocol log files",
	}
	cmd.AddCommand(logViewCmd(), logStatsCmd(), logExportCmd())
	return cmd
}

func addFilterFlags(cmd *cobra.Command, f *commands.FilterFlags) {
	cmd.Flags().StringVar(&f.ConnectionID, "conn-id", "", "Filter by connection ID")
	cmd.Flags().StringVar(&f.Layer, "layer", "", "Filter by layer (transport, wire, session)")
	cmd.Flags().StringVar(&f.Direction, "direction", "", "Filter by direction (in, out)")
	cmd.Flags().StringVar(&f.Category, "category", "", "Filter by category (message, control, state, error)")
	cmd.Flags().StringVar(&f.Event, "event", "", "Filter messages by event name")
}

func logViewCmd() *cobra.Command {
	var flags commands.FilterFlags

	cmd := &cobra.Command{
		Use:   "view <file.wlog>",
		Short: "View log file in human-readable format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.Filter()
			if err != nil {
				return err
			}
			return commands.RunView(args[0], filter, cmd.OutOrStdout())
		},
	}
	addFilterFlags(cmd, &flags)
	return cmd
}

func logStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file.wlog>",
		Short: "Show statistics about the log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunStats(args[0], cmd.OutOrStdout())
		},
	}
}

func logExportCmd() *cobra.Command {
	var (
		flags  commands.FilterFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <file.wlog>",
		Short: "Export log file to JSONL or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.Filter()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return commands.RunExport(args[0], format, filter, w)
		},
	}
	addFilterFlags(cmd, &flags)
	cmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Output format (jsonl, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

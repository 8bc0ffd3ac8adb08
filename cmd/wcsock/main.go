// Command wcsock is an interactive client and log tool for SocketCluster
// servers.
//
// Usage:
//
//	wcsock <command> [flags]
//
// Commands:
//
//	connect   Connect to a server and send events interactively
//	discover  List servers advertised on the local network
//	log       View, export, and summarize protocol log files
//	version   Print version information
//
// Examples:
//
//	# Connect using a config file, capturing a protocol log
//	wcsock connect --config wcsock.yaml --protocol-log session.wlog
//
//	# Connect to a URL directly
//	wcsock connect --url wss://chat.example.com/socketcluster/
//
//	# Show statistics for a capture
//	wcsock log stats session.wlog
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wcsock",
		Short: "SocketCluster client and protocol log tool",
		Long: `wcsock connects to SocketCluster servers over WebSocket.

It runs the client handshake, answers server pings, and lets you send
events and calls from an interactive prompt. Protocol traffic can be
captured to a log file and inspected later with the log commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		connectCmd(),
		discoverCmd(),
		logCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wcsock %s (%s)\n", version, commit)
		},
	}
}

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"

	"github.com/wcsocket/wcsocket-go/pkg/discovery"
)

func discoverCmd() *cobra.Command {
	var (
		timeout time.Duration
		iface   string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List servers advertised on the local network",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			browser := discovery.NewBrowser(discovery.BrowserConfig{Interface: iface})
			results, err := browser.Browse(ctx)
			if err != nil {
				return err
			}

			var found []*discovery.Service
			for svc := range results {
				found = append(found, svc)
			}
			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No servers found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderServices(found))
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 3*time.Second, "How long to browse")
	cmd.Flags().StringVar(&iface, "interface", "", "Network interface to browse on (default all)")
	return cmd
}

func renderServices(services []*discovery.Service) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Instance", "Host", "Port", "Path", "Secure", "Codec", "Addresses"})
	for _, s := range services {
		t.AppendRow(table.Row{
			s.InstanceName,
			s.Hostname(),
			s.Port,
			s.Path,
			s.Secure,
			s.Codec,
			strings.Join(s.Addresses, ", "),
		})
	}
	return t.Render()
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zkattend/zkattend/scanner"
)

func scanCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the local network for ZKTeco devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log.Info("scanning local network")

			found, err := scanner.ScanWithConfig(cmd.Context(), cfg.Scan)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}

			out, err := formatScanResults(found, outputFormat)
			if err != nil {
				return fmt.Errorf("format scan results: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputFormat, "format", "table", "output format: table, json")
	return cmd
}

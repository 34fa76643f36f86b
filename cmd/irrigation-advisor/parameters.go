package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/irrigation-advisor/internal/config"
)

func newParametersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parameters",
		Short: "Print the crop, stage, soil, and method catalog as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tables, err := loadTables(cfg.ParameterTablesPath)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tables.Catalog())
		},
	}
}

// Command irrigation-advisor serves and computes FAO-56 irrigation advisories.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "irrigation-advisor",
		Short: "FAO-56 irrigation advisories from daily ET0 and rainfall forecasts",
		Long: `irrigation-advisor estimates root-zone depletion from a daily reference
evapotranspiration and rainfall forecast and classifies whether irrigation
is required today, with the net and gross depth to apply.

Settings are read from environment variables (see "serve --help").`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newAdviseCmd(), newParametersCmd())
	return root
}

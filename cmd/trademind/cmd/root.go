package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// NewRootCmd builds the trademind command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trademind",
		Short: "Trading discipline journal tools",
		Long: `trademind is the companion CLI for the trading journal service.

It provides tools for:
  - Sizing a planned trade against per-trade and daily loss limits
  - Computing realized P&L for a closed position
  - Formatting rupee amounts with Indian digit grouping
  - Applying database migrations
  - Seeding the default trading rules for a user`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newCalcCmd(),
		newFormatCmd(),
		newMigrateCmd(),
		newRulesCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "trademind version %s\n", version)
			},
		},
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func parseDecimal(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", flag, value, err)
	}
	return d, nil
}

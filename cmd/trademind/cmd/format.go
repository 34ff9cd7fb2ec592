package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trogers1052/trademind/internal/format"
)

func newFormatCmd() *cobra.Command {
	f := &cobra.Command{
		Use:   "format",
		Short: "Display formatting helpers",
	}

	var opts format.Options
	c := &cobra.Command{
		Use:   "inr <amount>",
		Short: "Format an amount in rupees with Indian digit grouping",
		Long: `Examples:
  trademind format inr 1234567      # ₹12,34,567
  trademind format inr 1234567 -c   # ₹12.35L`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseDecimal("amount", args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.INR(amount, opts))
			return nil
		},
	}
	c.Flags().BoolVarP(&opts.Compact, "compact", "c", false, "use K / L / Cr suffixes")
	c.Flags().BoolVarP(&opts.ShowSign, "sign", "s", false, "prefix positive amounts with +")
	c.Flags().Int32Var(&opts.Decimals, "decimals", 0, "decimal places")
	f.AddCommand(c)
	return f
}

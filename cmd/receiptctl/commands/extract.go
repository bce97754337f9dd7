package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the extraction result for one receipt as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readReceiptText(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result, explanation := extractor.Explain(text)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}

			if explain {
				fmt.Fprintf(os.Stderr, "merchant: %s (%s)\n", explanation.Merchant.Tier, explanation.Merchant.Weight)
				fmt.Fprintf(os.Stderr, "total:    %s (%s)\n", explanation.Total.Tier, explanation.Total.Weight)
				fmt.Fprintf(os.Stderr, "date:     %s (%s)\n", explanation.Date.Tier, explanation.Date.Weight)
				fmt.Fprintf(os.Stderr, "items:    %d (%s)\n", explanation.Items, explanation.ItemBonus)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "print the tier and weight behind each field to stderr")
	return cmd
}

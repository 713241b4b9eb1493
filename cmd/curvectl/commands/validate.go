package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meenmo/multicurve/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a curve group file",
	Long: `Parses a curve group YAML file and checks conventions, node kinds
and role assignments without calibrating anything. Exits non-zero when
the file does not describe a solvable group.

Example:
  curvectl validate --group eur.yaml`,
	RunE: runValidate,
}

var validateGroupPath string

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateGroupPath, "group", "", "curve group YAML file (required)")
	_ = validateCmd.MarkFlagRequired("group")
}

func runValidate(cmd *cobra.Command, args []string) error {
	group, err := config.LoadGroupFile(validateGroupPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "group %s: %d curves, %d nodes\n", group.Name, len(group.Entries), group.ParameterCount())
	for _, entry := range group.Entries {
		fmt.Fprintf(out, "  %-16s %d nodes", entry.Curve.Name, len(entry.Curve.Nodes))
		if len(entry.DiscountCurrencies) > 0 {
			fmt.Fprintf(out, ", discounts %v", entry.DiscountCurrencies)
		}
		if len(entry.ForwardIndices) > 0 {
			fmt.Fprintf(out, ", forwards %v", entry.ForwardIndices)
		}
		if len(entry.CreditEntities) > 0 {
			fmt.Fprintf(out, ", credit %v", entry.CreditEntities)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, "ok")
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dativo-io/piiredact/internal/classifier"
	"github.com/dativo-io/piiredact/internal/evaluator"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the detection rules in priority order",
	Long: `List the fixed detection rules in the order they are tried.

A field is handled by the first rule whose field list contains it, and only
if its value matches that rule. Combinatorial rules redact only when at
least two of their categories are present in one record.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, span := tracer.Start(cmd.Context(), "rules")
		defer span.End()

		out := cmd.OutOrStdout()
		renderRules(out, classifier.Rules())
		fmt.Fprintf(out, "\nEscalation threshold: %d combinatorial categories\n", evaluator.EscalationThreshold)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

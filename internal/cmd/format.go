package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dativo-io/piiredact/internal/batch"
	"github.com/dativo-io/piiredact/internal/classifier"
)

// formatShare renders n out of total as "n (p%)"; an empty batch is "0".
func formatShare(n, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%d (%.1f%%)", n, float64(n)*100/float64(total))
}

// formatDuration rounds d for display.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(100 * time.Microsecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}

func renderSummary(w io.Writer, sum *batch.Summary, outPath string) {
	fmt.Fprintf(w, "Processed %d records in %s\n", sum.Total, formatDuration(sum.Duration))
	fmt.Fprintf(w, "  PII:          %s\n", formatShare(sum.PII, sum.Total))
	fmt.Fprintf(w, "  Invalid JSON: %s\n", formatShare(sum.Invalid, sum.Total))
	if outPath != batch.Stdout {
		fmt.Fprintf(w, "  Output:       %s\n", outPath)
	}
	fmt.Fprintf(w, "  Run ID:       %s\n", sum.RunID)
}

func renderRules(w io.Writer, rules []classifier.Rule) {
	fmt.Fprintf(w, "%-3s %-16s %-14s %-16s %s\n", "#", "RULE", "KIND", "CATEGORY", "FIELDS")
	for i, r := range rules {
		category := string(r.Category)
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(w, "%-3d %-16s %-14s %-16s %s\n", i+1, r.Name, r.Kind, category, strings.Join(r.Fields, ", "))
	}
}

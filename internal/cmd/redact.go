package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dativo-io/piiredact/internal/batch"
	"github.com/dativo-io/piiredact/internal/otel"
)

var (
	redactOutput  string
	redactWorkers int
)

var redactCmd = &cobra.Command{
	Use:   "redact <input.csv>",
	Short: "Redact PII in a CSV file of JSON records",
	Long: `Read a CSV file with record_id and data_json columns, redact PII in every
record and write record_id, redacted_data_json and is_pii to the output file.

Rows whose data_json is not a JSON object are written with an error marker
and is_pii False; they do not stop the run. Use -o - to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runRedact,
}

func init() {
	redactCmd.Flags().StringVarP(&redactOutput, "output", "o", "", "output CSV path, - for stdout (default from config output_file)")
	redactCmd.Flags().IntVar(&redactWorkers, "workers", 0, "records evaluated concurrently (default from config workers)")
	rootCmd.AddCommand(redactCmd)
}

func runRedact(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "redact")
	defer span.End()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	outPath := cfg.OutputFile
	if cmd.Flags().Changed("output") {
		outPath = redactOutput
	}
	workers := cfg.Workers
	if cmd.Flags().Changed("workers") {
		if redactWorkers < 1 {
			return fmt.Errorf("--workers must be positive (got %d)", redactWorkers)
		}
		workers = redactWorkers
	}

	inPath := args[0]
	log.Info().
		Str("input", inPath).
		Str("output", outPath).
		Int("workers", workers).
		Func(otel.LogTraceFields(ctx)).
		Msg("redact_started")

	sum, err := batch.NewProcessor(batch.WithWorkers(workers)).ProcessFile(ctx, inPath, outPath)
	if err != nil {
		return err
	}

	log.Info().
		Str("run_id", sum.RunID).
		Int("total", sum.Total).
		Int("pii", sum.PII).
		Int("invalid", sum.Invalid).
		Dur("duration", sum.Duration).
		Func(otel.LogTraceFields(ctx)).
		Msg("redact_completed")

	// Records own stdout when -o - is used.
	summaryOut := cmd.OutOrStdout()
	if outPath == batch.Stdout {
		summaryOut = cmd.ErrOrStderr()
	}
	renderSummary(summaryOut, sum, outPath)
	return nil
}

// Package batch runs the record evaluator over a CSV file of JSON records.
//
// The input is read completely, records are evaluated concurrently, and the
// output is written in input order once every record is done. A row whose
// data cannot be decoded is replaced by an error marker; it never aborts the
// batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	piiotel "github.com/dativo-io/piiredact/internal/otel"
)

var tracer = piiotel.Tracer("github.com/dativo-io/piiredact/internal/batch")

// Stdout is the output path that means standard output.
const Stdout = "-"

// Summary describes one batch run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Total    int           `json:"total"`
	PII      int           `json:"pii"`
	Invalid  int           `json:"invalid"`
	Duration time.Duration `json:"duration"`
}

// Processor evaluates batches of rows.
type Processor struct {
	workers int
}

// Option configures a Processor.
type Option func(*Processor)

// WithWorkers bounds the number of records evaluated at the same time.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewProcessor returns a Processor. Without options it uses one worker per CPU.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{workers: runtime.NumCPU()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Evaluate runs every row through the evaluator. Outputs are in row order.
// It only fails if ctx is cancelled.
func (p *Processor) Evaluate(ctx context.Context, rows []Row) ([]Output, *Summary, error) {
	ctx, span := tracer.Start(ctx, "batch.evaluate")
	defer span.End()

	start := time.Now()
	sum := &Summary{RunID: uuid.NewString(), Total: len(rows)}
	span.SetAttributes(
		attribute.String("batch.run_id", sum.RunID),
		attribute.Int("batch.workers", p.workers),
	)

	outs := make([]Output, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, row := range rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outs[i] = EvaluateRow(row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("evaluating batch %s: %w", sum.RunID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("evaluating batch %s: %w", sum.RunID, err)
	}

	for i := range outs {
		o := &outs[i]
		switch {
		case o.Invalid:
			sum.Invalid++
			log.Warn().
				Str("run_id", sum.RunID).
				Str("record_id", o.RecordID).
				Msg("Invalid JSON in record; writing error marker")
		case o.IsPII:
			sum.PII++
			logFindings(sum.RunID, o)
		}
	}
	sum.Duration = time.Since(start)

	recordMetrics(ctx, sum)
	span.SetAttributes(
		attribute.Int("batch.records.total", sum.Total),
		attribute.Int("batch.records.pii", sum.PII),
		attribute.Int("batch.records.invalid", sum.Invalid),
	)
	return outs, sum, nil
}

// Process reads rows from r, evaluates them and writes the result to w.
func (p *Processor) Process(ctx context.Context, r io.Reader, w io.Writer) (*Summary, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	outs, sum, err := p.Evaluate(ctx, rows)
	if err != nil {
		return nil, err
	}
	if err := WriteOutputs(w, outs); err != nil {
		return nil, err
	}
	return sum, nil
}

// ProcessFile is Process over files. The output file is only created after
// the input has been read and evaluated, so a bad input leaves no partial
// output behind. outPath "-" writes to stdout.
func (p *Processor) ProcessFile(ctx context.Context, inPath, outPath string) (*Summary, error) {
	ctx, span := tracer.Start(ctx, "batch.process_file")
	defer span.End()

	in, err := os.Open(inPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("input file not found: %s: %w", inPath, err)
		}
		return nil, fmt.Errorf("opening input %s: %w", inPath, err)
	}
	defer in.Close()

	rows, err := ReadRows(in)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", inPath, err)
	}
	outs, sum, err := p.Evaluate(ctx, rows)
	if err != nil {
		return nil, err
	}

	if outPath == Stdout {
		if err := WriteOutputs(os.Stdout, outs); err != nil {
			return nil, err
		}
		return sum, nil
	}

	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("creating output %s: %w", outPath, err)
	}
	if err := WriteOutputs(out, outs); err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("writing %s: %w", outPath, err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", outPath, err)
	}
	return sum, nil
}

// logFindings logs which fields were redacted. Values are never logged.
func logFindings(runID string, o *Output) {
	if e := log.Debug(); e.Enabled() {
		fields := make([]string, 0, len(o.Findings))
		for _, f := range o.Findings {
			fields = append(fields, f.Field+":"+f.Rule)
		}
		e.Str("run_id", runID).
			Str("record_id", o.RecordID).
			Strs("redacted", fields).
			Msg("PII redacted")
	}
}

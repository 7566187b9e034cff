package batch

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	piiotel "github.com/dativo-io/piiredact/internal/otel"
)

var meter = piiotel.Meter("github.com/dativo-io/piiredact/internal/batch")

var (
	recordsTotal   metric.Int64Counter
	recordsPII     metric.Int64Counter
	recordsInvalid metric.Int64Counter
	batchDuration  metric.Float64Histogram
)

func init() {
	var err error
	recordsTotal, err = meter.Int64Counter("batch.records.total",
		metric.WithDescription("Records read from batch input"))
	if err != nil {
		recordsTotal, _ = meter.Int64Counter("batch.records.total.fallback")
	}

	recordsPII, err = meter.Int64Counter("batch.records.pii",
		metric.WithDescription("Records written with is_pii=true"))
	if err != nil {
		recordsPII, _ = meter.Int64Counter("batch.records.pii.fallback")
	}

	recordsInvalid, err = meter.Int64Counter("batch.records.invalid",
		metric.WithDescription("Records replaced by the invalid JSON marker"))
	if err != nil {
		recordsInvalid, _ = meter.Int64Counter("batch.records.invalid.fallback")
	}

	batchDuration, err = meter.Float64Histogram("batch.duration",
		metric.WithDescription("Wall time to evaluate one batch"),
		metric.WithUnit("s"))
	if err != nil {
		batchDuration, _ = meter.Float64Histogram("batch.duration.fallback")
	}
}

func recordMetrics(ctx context.Context, sum *Summary) {
	recordsTotal.Add(ctx, int64(sum.Total))
	recordsPII.Add(ctx, int64(sum.PII))
	recordsInvalid.Add(ctx, int64(sum.Invalid))
	batchDuration.Record(ctx, sum.Duration.Seconds())
}

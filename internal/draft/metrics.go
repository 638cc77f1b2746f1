package draft

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var draftTracer = otel.Tracer("maildraft/draft")

var (
	draftMetricsOnce      sync.Once
	draftRequestCounter   metric.Int64Counter
	draftErrorCounter     metric.Int64Counter
	draftLatencyHistogram metric.Float64Histogram
)

func initDraftOTelMetrics() {
	draftMetricsOnce.Do(func() {
		meter := otel.Meter("maildraft/draft")

		var err error
		draftRequestCounter, err = meter.Int64Counter(
			"maildraft.draft.requests.total",
			metric.WithDescription("Total draft generation requests"),
		)
		if err != nil {
			log.Printf("observability: failed to create draft request counter: %v", err)
		}

		draftErrorCounter, err = meter.Int64Counter(
			"maildraft.draft.errors.total",
			metric.WithDescription("Total failed draft generation requests"),
		)
		if err != nil {
			log.Printf("observability: failed to create draft error counter: %v", err)
		}

		draftLatencyHistogram, err = meter.Float64Histogram(
			"maildraft.draft.duration",
			metric.WithDescription("Draft generation latency (ms)"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Printf("observability: failed to create draft latency histogram: %v", err)
		}
	})
}

func recordDraft(ctx context.Context, span trace.Span, attrs []attribute.KeyValue, duration time.Duration, err error) {
	initDraftOTelMetrics()
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs = append(attrs, attribute.String("draft.status", status))

	if draftRequestCounter != nil {
		draftRequestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if draftLatencyHistogram != nil {
		draftLatencyHistogram.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	}
	if err != nil && draftErrorCounter != nil {
		draftErrorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

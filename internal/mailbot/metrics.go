package mailbot

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics keeps in-process counters for the mention pipeline
type Metrics struct {
	Mentions       atomic.Int64
	Drafts         atomic.Int64
	Errors         atomic.Int64
	TotalLatencyNs atomic.Int64
}

func (m *Metrics) RecordMention() { m.Mentions.Add(1) }
func (m *Metrics) RecordDraft(d time.Duration) {
	m.Drafts.Add(1)
	m.TotalLatencyNs.Add(d.Nanoseconds())
}
func (m *Metrics) RecordError() { m.Errors.Add(1) }

var (
	mentionMetricsOnce      sync.Once
	mentionCounter          metric.Int64Counter
	mentionErrorCounter     metric.Int64Counter
	mentionLatencyHistogram metric.Float64Histogram
)

func initMentionOTelMetrics() {
	mentionMetricsOnce.Do(func() {
		meter := otel.Meter("maildraft/mailbot")

		var err error
		mentionCounter, err = meter.Int64Counter(
			"maildraft.mentions.total",
			metric.WithDescription("Total app mentions handled"),
		)
		if err != nil {
			log.Printf("observability: failed to create mention counter: %v", err)
		}

		mentionErrorCounter, err = meter.Int64Counter(
			"maildraft.mentions.errors.total",
			metric.WithDescription("Total app mentions that did not produce a draft"),
		)
		if err != nil {
			log.Printf("observability: failed to create mention error counter: %v", err)
		}

		mentionLatencyHistogram, err = meter.Float64Histogram(
			"maildraft.mentions.duration",
			metric.WithDescription("Time from mention to draft reply (ms)"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Printf("observability: failed to create mention latency histogram: %v", err)
		}
	})
}

func recordMentionMetrics(ctx context.Context, attrs []attribute.KeyValue, duration time.Duration, hadError bool) {
	initMentionOTelMetrics()
	if mentionCounter != nil {
		mentionCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if mentionLatencyHistogram != nil {
		mentionLatencyHistogram.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	}
	if hadError && mentionErrorCounter != nil {
		mentionErrorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

package usage

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRegisterGaugeReportsStoredTotals(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	_ = store.Record(ctx, SourceSlack, OutcomeOK)
	_ = store.Record(ctx, SourceSlack, OutcomeOK)
	_ = store.Record(ctx, SourceCLI, OutcomeError)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	reg, err := store.RegisterGauge(provider.Meter("maildraft/usage"))
	if err != nil {
		t.Fatalf("RegisterGauge failed: %v", err)
	}
	defer func() { _ = reg.Unregister() }()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "maildraft.drafts.stored" {
				continue
			}
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			if !ok {
				t.Fatalf("Expected Gauge[int64], got %T", m.Data)
			}
			for _, dp := range gauge.DataPoints {
				src, _ := dp.Attributes.Value("source")
				outcome, _ := dp.Attributes.Value("outcome")
				got[src.AsString()+"/"+outcome.AsString()] = dp.Value
			}
		}
	}

	want := map[string]int64{
		"slack/ok":    2,
		"slack/error": 0,
		"cli/ok":      0,
		"cli/error":   1,
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("%s = %d, want %d", key, got[key], value)
		}
	}
}

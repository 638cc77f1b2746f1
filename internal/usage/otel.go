package usage

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RegisterGauge reports the stored cumulative totals as maildraft.drafts.stored.
// Call it after observability.Init so the global meter provider is in place.
func (s *Store) RegisterGauge(meter metric.Meter) (metric.Registration, error) {
	gauge, err := meter.Int64ObservableGauge(
		"maildraft.drafts.stored",
		metric.WithDescription("Cumulative drafts recorded in the local stats database by source and outcome"),
		metric.WithUnit("{drafts}"),
	)
	if err != nil {
		return nil, err
	}
	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		totals, err := s.AllTotals(ctx)
		if err != nil {
			return err
		}
		for src, t := range totals {
			o.ObserveInt64(gauge, t.OK, metric.WithAttributes(
				attribute.String("source", string(src)), attribute.String("outcome", string(OutcomeOK))))
			o.ObserveInt64(gauge, t.Errors, metric.WithAttributes(
				attribute.String("source", string(src)), attribute.String("outcome", string(OutcomeError))))
		}
		return nil
	}, gauge)
}

package orchestrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics instruments dispatch outcomes. A nil meter yields a no-op.
type Metrics struct {
	meter             metric.Meter
	dispatchedTotal   metric.Int64Counter
	completedTotal    metric.Int64Counter
	failedTotal       metric.Int64Counter
	dispatchHistogram metric.Float64Histogram
	activeGauge       metric.Int64UpDownCounter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}
	if meter == nil {
		return m, nil
	}
	var err error
	if m.dispatchedTotal, err = meter.Int64Counter(
		"orchestrator_dispatched_total",
		metric.WithDescription("Workflows dispatched"),
	); err != nil {
		return nil, err
	}
	if m.completedTotal, err = meter.Int64Counter(
		"orchestrator_completed_total",
		metric.WithDescription("Workflows completed successfully"),
	); err != nil {
		return nil, err
	}
	if m.failedTotal, err = meter.Int64Counter(
		"orchestrator_failed_total",
		metric.WithDescription("Workflows that ended in failure"),
	); err != nil {
		return nil, err
	}
	if m.dispatchHistogram, err = meter.Float64Histogram(
		"orchestrator_dispatch_duration_seconds",
		metric.WithDescription("Wall-clock dispatch duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.activeGauge, err = meter.Int64UpDownCounter(
		"orchestrator_active_workflows",
		metric.WithDescription("Workflows currently pending or in progress"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) recordDispatched(ctx context.Context, family string) {
	if m == nil || m.dispatchedTotal == nil {
		return
	}
	m.dispatchedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("family", family)))
	m.activeGauge.Add(ctx, 1, metric.WithAttributes(attribute.String("family", family)))
}

func (m *Metrics) recordOutcome(ctx context.Context, family string, success bool, elapsed time.Duration) {
	if m == nil || m.completedTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("family", family))
	if success {
		m.completedTotal.Add(ctx, 1, attrs)
	} else {
		m.failedTotal.Add(ctx, 1, attrs)
	}
	m.dispatchHistogram.Record(ctx, elapsed.Seconds(), attrs)
	m.activeGauge.Add(ctx, -1, attrs)
}

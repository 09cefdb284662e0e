package handler

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeSuccessValue = "success"
	outcomeErrorValue   = "error"
)

// Metrics provides instrumentation for trigger processing. A nil meter
// yields a no-op.
type Metrics struct {
	meter               metric.Meter
	receivedTotal       metric.Int64Counter
	rejectedTotal       metric.Int64Counter
	processedTotal      metric.Int64Counter
	fallbackTotal       metric.Int64Counter
	processingHistogram metric.Float64Histogram
}

// NewMetrics initializes trigger handler metrics using the provided meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}
	if err := m.init(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) init() error {
	if m.meter == nil {
		return nil
	}
	counterDefs := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&m.receivedTotal, "handler_triggers_received_total", "Triggers submitted for processing"},
		{&m.rejectedTotal, "handler_triggers_rejected_total", "Triggers rejected at admission"},
		{&m.processedTotal, "handler_triggers_processed_total", "Triggers dispatched to the orchestrator"},
		{&m.fallbackTotal, "handler_fallbacks_total", "Fallback dispatches attempted"},
	}
	for _, def := range counterDefs {
		counter, err := m.meter.Int64Counter(def.name, metric.WithDescription(def.description))
		if err != nil {
			return err
		}
		*def.target = counter
	}
	histogram, err := m.meter.Float64Histogram(
		"handler_processing_duration_seconds",
		metric.WithDescription("End-to-end trigger processing duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}
	m.processingHistogram = histogram
	return nil
}

func (m *Metrics) recordReceived(ctx context.Context, triggerType string) {
	if m == nil || m.receivedTotal == nil {
		return
	}
	m.receivedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger_type", triggerType)))
}

func (m *Metrics) recordRejected(ctx context.Context, triggerType, reason string) {
	if m == nil || m.rejectedTotal == nil {
		return
	}
	m.rejectedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger_type", triggerType),
		attribute.String("reason", reason),
	))
}

func (m *Metrics) recordProcessed(ctx context.Context, triggerType string, success bool, elapsed time.Duration) {
	if m == nil || m.processedTotal == nil {
		return
	}
	outcome := outcomeSuccessValue
	if !success {
		outcome = outcomeErrorValue
	}
	attrs := metric.WithAttributes(
		attribute.String("trigger_type", triggerType),
		attribute.String("outcome", outcome),
	)
	m.processedTotal.Add(ctx, 1, attrs)
	m.processingHistogram.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) recordFallback(ctx context.Context, triggerType string, success bool) {
	if m == nil || m.fallbackTotal == nil {
		return
	}
	outcome := outcomeSuccessValue
	if !success {
		outcome = outcomeErrorValue
	}
	m.fallbackTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger_type", triggerType),
		attribute.String("outcome", outcome),
	))
}

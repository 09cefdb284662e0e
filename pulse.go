// Package pulse assembles the trigger processing engine from runtime
// configuration: the workflow unit registry, the orchestrator and the
// trigger handler layer, wired to logging and optional metrics.
package pulse

import (
	"fmt"
	"os"

	"go.opentelemetry.io/otel/metric"

	"github.com/pulsehr/pulse/engine/handler"
	"github.com/pulsehr/pulse/engine/orchestrator"
	"github.com/pulsehr/pulse/engine/workflow"
	"github.com/pulsehr/pulse/pkg/config"
	"github.com/pulsehr/pulse/pkg/logger"
)

// Engine bundles the assembled components. Workflow units are registered
// on Units after construction; triggers enter through Handler.
type Engine struct {
	Units        *workflow.Registry
	Orchestrator *orchestrator.Orchestrator
	Handler      *handler.Service
	Log          logger.Logger
}

type Option func(*options)

type options struct {
	meter metric.Meter
}

// WithMeter enables otel instrumentation on the orchestrator and the
// handler layer.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// New builds an engine from the given configuration. A nil configuration
// loads defaults plus environment overrides.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := logger.SetupLogger(cfg.Logging.Level, cfg.Logging.JSON, cfg.Logging.AddSource)
	units := workflow.NewRegistry()

	orcOpts := []orchestrator.Option{orchestrator.WithHistorySize(cfg.Orchestrator.HistorySize)}
	if o.meter != nil {
		metrics, err := orchestrator.NewMetrics(o.meter)
		if err != nil {
			return nil, fmt.Errorf("failed to init orchestrator metrics: %w", err)
		}
		orcOpts = append(orcOpts, orchestrator.WithMetrics(metrics))
	}
	orc, err := orchestrator.New(units, orcOpts...)
	if err != nil {
		return nil, err
	}

	registry := handler.NewRegistry()
	if cfg.Handler.ConfigFile != "" {
		data, err := os.ReadFile(cfg.Handler.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read handler config file: %w", err)
		}
		overlay, err := handler.ParseConfigs(data)
		if err != nil {
			return nil, err
		}
		for triggerType, policy := range overlay {
			registry.Put(triggerType, policy)
		}
	}
	filter, err := handler.NewCELEvaluator(handler.WithCostLimit(cfg.Handler.FilterCostLimit))
	if err != nil {
		return nil, err
	}
	svcOpts := []handler.ServiceOption{
		handler.WithRegistry(registry),
		handler.WithFilter(filter),
		handler.WithDefaultTimeout(cfg.Orchestrator.DefaultTimeout),
	}
	if o.meter != nil {
		metrics, err := handler.NewMetrics(o.meter)
		if err != nil {
			return nil, fmt.Errorf("failed to init handler metrics: %w", err)
		}
		svcOpts = append(svcOpts, handler.WithMetrics(metrics))
	}
	svc, err := handler.NewService(orc, svcOpts...)
	if err != nil {
		return nil, err
	}

	return &Engine{
		Units:        units,
		Orchestrator: orc,
		Handler:      svc,
		Log:          log,
	}, nil
}

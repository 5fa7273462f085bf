package telemetry

import (
	"context"
	"errors"
	"log/slog"
)

// Providers owns whatever OpenTelemetry providers Setup started.
type Providers struct {
	Logger    *slog.Logger
	shutdowns []func(context.Context) error
}

// Setup starts the tracer, meter and logger providers when otlpEndpoint is
// set. Without an endpoint the global no-op providers stay in place and
// Logger is fallback.
func Setup(ctx context.Context, serviceName, otlpEndpoint, environment string, fallback *slog.Logger) (*Providers, error) {
	p := &Providers{Logger: fallback}
	if otlpEndpoint == "" {
		return p, nil
	}

	tp, err := InitTracerProvider(ctx, serviceName, otlpEndpoint, environment)
	if err != nil {
		return nil, err
	}
	p.shutdowns = append(p.shutdowns, tp.Shutdown)

	mp, err := InitMeterProvider(ctx, serviceName, otlpEndpoint, environment)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	p.shutdowns = append(p.shutdowns, mp.Shutdown)

	// Started last so log records carry trace context
	lp, logger, err := InitLoggerProvider(ctx, serviceName, otlpEndpoint, environment)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	p.shutdowns = append(p.shutdowns, lp.Shutdown)
	p.Logger = logger

	return p, nil
}

// Shutdown flushes and stops the providers in reverse start order.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(p.shutdowns) - 1; i >= 0; i-- {
		if err := p.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdowns = nil
	return errors.Join(errs...)
}

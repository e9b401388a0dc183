// Package telemetry installs the OpenTelemetry meter provider that exports
// the service's counters to an OTLP collector.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Config struct {
	Endpoint string
	Interval time.Duration
	Insecure bool
}

type Service struct {
	Name    string
	Version string
	Env     string
}

type Telemetry struct {
	provider *sdkmetric.MeterProvider
	service  string
	logger   *slog.Logger
}

// Init sets the global meter provider. Instruments created through
// otel.Meter afterwards are exported every cfg.Interval.
func Init(ctx context.Context, cfg Config, svc Service, logger *slog.Logger) (*Telemetry, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	logger.Info("initializing OTel metrics", "endpoint", cfg.Endpoint, "interval", cfg.Interval)

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(svc.Name),
			semconv.ServiceVersion(svc.Version),
			semconv.DeploymentEnvironment(svc.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(svc.Name)
	if err := RegisterServiceInfo(meter, svc); err != nil {
		logger.Warn("failed to register service info", "error", err)
	}
	if err := RegisterRuntime(meter); err != nil {
		logger.Warn("failed to register runtime metrics", "error", err)
	}

	logger.Info("OTel metrics initialized")
	return &Telemetry{provider: provider, service: svc.Name, logger: logger}, nil
}

// RegisterServiceInfo reports a constant 1 labelled with the build, so
// dashboards can join on version.
func RegisterServiceInfo(meter metric.Meter, svc Service) error {
	gauge, err := meter.Int64ObservableGauge(
		"service.info",
		metric.WithDescription("Service metadata information"),
		metric.WithUnit("{info}"),
	)
	if err != nil {
		return err
	}

	attrs := metric.WithAttributes(
		attribute.String("service_name", svc.Name),
		attribute.String("version", svc.Version),
		attribute.String("environment", svc.Env),
	)
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, 1, attrs)
		return nil
	}, gauge)
	return err
}

// Shutdown flushes pending metrics.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.logger.Info("shutting down OTel meter provider")
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

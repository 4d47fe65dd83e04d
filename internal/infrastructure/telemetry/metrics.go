package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"

	"github.com/storeops/backend/internal/infrastructure/config"
)

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
	config   config.TelemetryConfig
}

// NewMeterProvider creates and configures a new MeterProvider.
// If metrics are disabled, it returns a provider that wraps the no-op global meter.
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{
		logger: logger,
		config: cfg,
	}

	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter,
				sdkmetric.WithInterval(60*time.Second),
			),
		),
	)

	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
	)

	return mp, nil
}

// Shutdown gracefully shuts down the meter provider, flushing pending metrics.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Meter returns a named meter from the provider.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// Common attribute keys for metrics.
var (
	AttrTenantID      = attribute.Key("tenant_id")
	AttrBranchID      = attribute.Key("branch_id")
	AttrOperationType = attribute.Key("operation_type")
	AttrErrorCode     = attribute.Key("error_code")
	AttrEventType     = attribute.Key("event_type")
)

// SyncMetrics holds the instruments for the offline operation pipeline and
// the outbox dispatcher.
type SyncMetrics struct {
	OperationsApplied metric.Int64Counter
	OperationsDeduped metric.Int64Counter
	OperationsFailed  metric.Int64Counter
	BatchDuration     metric.Float64Histogram

	OutboxDispatched metric.Int64Counter
	OutboxRetried    metric.Int64Counter
	OutboxDead       metric.Int64Counter
}

// NewSyncMetrics creates the sync pipeline instruments on the given meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	m := &SyncMetrics{}
	var err error

	if m.OperationsApplied, err = meter.Int64Counter("sync.operations.applied",
		metric.WithDescription("Operations applied for the first time"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, err
	}
	if m.OperationsDeduped, err = meter.Int64Counter("sync.operations.deduped",
		metric.WithDescription("Operations answered from the operation log"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, err
	}
	if m.OperationsFailed, err = meter.Int64Counter("sync.operations.failed",
		metric.WithDescription("Operations rejected with a business error"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, err
	}
	if m.BatchDuration, err = meter.Float64Histogram("sync.batch.duration",
		metric.WithDescription("Duration of a sync batch"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5)); err != nil {
		return nil, err
	}
	if m.OutboxDispatched, err = meter.Int64Counter("outbox.events.dispatched",
		metric.WithDescription("Outbox events delivered to handlers"),
		metric.WithUnit("{event}")); err != nil {
		return nil, err
	}
	if m.OutboxRetried, err = meter.Int64Counter("outbox.events.retried",
		metric.WithDescription("Outbox delivery retries"),
		metric.WithUnit("{event}")); err != nil {
		return nil, err
	}
	if m.OutboxDead, err = meter.Int64Counter("outbox.events.dead",
		metric.WithDescription("Outbox events moved to the dead letter state"),
		metric.WithUnit("{event}")); err != nil {
		return nil, err
	}

	return m, nil
}

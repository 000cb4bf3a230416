package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"placementprep/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Business metric types accepted by RecordBusinessMetric
const (
	MetricEntrySaved    = "entry_saved"
	MetricEntryDeleted  = "entry_deleted"
	MetricHistoryClear  = "history_cleared"
	MetricSkillToggled  = "skill_toggled"
	MetricPlanExported  = "plan_exported"
	MetricRateLimitHit  = "rate_limit_hit"
	MetricEmptyDocument = "empty_document"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds all custom metrics for placementprep
type Metrics struct {
	// Operation metrics
	OperationDuration metric.Float64Histogram
	OperationCount    metric.Int64Counter
	OperationErrors   metric.Int64Counter

	// Analysis metrics
	AnalysesTotal  metric.Int64Counter
	ReadinessScore metric.Int64Histogram
	DocumentChars  metric.Int64Histogram

	// History metrics
	EntriesSaved    metric.Int64Counter
	EntriesDeleted  metric.Int64Counter
	SkillToggles    metric.Int64Counter
	Exports         metric.Int64Counter
	EmptyDocuments  metric.Int64Counter
	StorageDuration metric.Float64Histogram
	StorageErrors   metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config           ObservabilityConfig
	fullConfig       *config.Config
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	manualReader     *sdkmetric.ManualReader
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.Server
}

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	if !obsConfig.Enabled {
		return &ObservabilityManager{config: obsConfig, fullConfig: fullConfig}, nil
	}

	om := &ObservabilityManager{
		config:        obsConfig,
		fullConfig:    fullConfig,
		shutdownFuncs: make([]func(context.Context) error, 0),
	}

	res, err := om.createResource()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if err := om.initTracing(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

// Enabled reports whether telemetry is being collected
func (om *ObservabilityManager) Enabled() bool {
	return om != nil && om.config.Enabled
}

func (om *ObservabilityManager) createResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing(res *resource.Resource) error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.config.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled:
		exporter, err = om.createOTLPExporter()
	default:
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics(res *resource.Resource) error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	meterProviderOptions := []sdkmetric.Option{
		sdkmetric.WithResource(res),
	}
	for _, reader := range readers {
		meterProviderOptions = append(meterProviderOptions, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(meterProviderOptions...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		interval := om.getMetricsCollectionInterval()
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	}

	if om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled {
		otlpReader, err := om.createOTLPMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, otlpReader)
	}

	if om.config.Prometheus.Enabled {
		prometheusReader, prometheusMux, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		readers = append(readers, prometheusReader)
		om.prometheusServer = StartPrometheusServer(prometheusMux, om.config.Prometheus.Port)
		om.shutdownFuncs = append(om.shutdownFuncs, om.prometheusServer.Shutdown)
	}

	// Keep instruments live even without an exporter; the reader is also
	// what Collect reads from.
	if len(readers) == 0 {
		om.manualReader = sdkmetric.NewManualReader()
		readers = append(readers, om.manualReader)
	}

	return readers, nil
}

// initCustomMetrics creates all custom metrics for placementprep
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	if err := om.createOperationMetrics(meter); err != nil {
		return err
	}
	if err := om.createAnalysisMetrics(meter); err != nil {
		return err
	}
	if err := om.createHistoryMetrics(meter); err != nil {
		return err
	}

	var err error
	om.metrics.RateLimitHits, err = meter.Int64Counter(
		"placementprep_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

func (om *ObservabilityManager) createOperationMetrics(meter metric.Meter) error {
	var err error

	om.metrics.OperationDuration, err = meter.Float64Histogram(
		"placementprep_operation_duration_seconds",
		metric.WithDescription("Time spent in service operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create operation duration metric: %w", err)
	}

	om.metrics.OperationCount, err = meter.Int64Counter(
		"placementprep_operations_total",
		metric.WithDescription("Total number of service operations"),
	)
	if err != nil {
		return fmt.Errorf("failed to create operation count metric: %w", err)
	}

	om.metrics.OperationErrors, err = meter.Int64Counter(
		"placementprep_operation_errors_total",
		metric.WithDescription("Total number of failed service operations"),
	)
	if err != nil {
		return fmt.Errorf("failed to create operation error metric: %w", err)
	}

	return nil
}

func (om *ObservabilityManager) createAnalysisMetrics(meter metric.Meter) error {
	var err error

	om.metrics.AnalysesTotal, err = meter.Int64Counter(
		"placementprep_analyses_total",
		metric.WithDescription("Total number of job descriptions analyzed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create analyses metric: %w", err)
	}

	om.metrics.ReadinessScore, err = meter.Int64Histogram(
		"placementprep_readiness_score",
		metric.WithDescription("Distribution of base readiness scores"),
		metric.WithExplicitBucketBoundaries(20, 40, 50, 60, 70, 80, 90, 100),
	)
	if err != nil {
		return fmt.Errorf("failed to create readiness score metric: %w", err)
	}

	om.metrics.DocumentChars, err = meter.Int64Histogram(
		"placementprep_document_characters",
		metric.WithDescription("Length of analyzed job descriptions"),
		metric.WithUnit("{character}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create document size metric: %w", err)
	}

	return nil
}

func (om *ObservabilityManager) createHistoryMetrics(meter metric.Meter) error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&om.metrics.EntriesSaved, "placementprep_history_entries_saved_total", "Total number of analyses saved to history"},
		{&om.metrics.EntriesDeleted, "placementprep_history_entries_deleted_total", "Total number of history entries deleted or cleared"},
		{&om.metrics.SkillToggles, "placementprep_skill_toggles_total", "Total number of skill confidence toggles"},
		{&om.metrics.Exports, "placementprep_exports_total", "Total number of plan and question exports"},
		{&om.metrics.EmptyDocuments, "placementprep_empty_documents_total", "Total number of rejected empty documents"},
		{&om.metrics.StorageErrors, "placementprep_storage_errors_total", "Total number of failed history store operations"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description))
		if err != nil {
			return fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
		*c.target = counter
	}

	var err error
	om.metrics.StorageDuration, err = meter.Float64Histogram(
		"placementprep_storage_operation_duration_seconds",
		metric.WithDescription("Time spent in history store operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create storage duration metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil || om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// Collect reads the current metric state when no exporter is configured
func (om *ObservabilityManager) Collect(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	if om == nil || om.manualReader == nil {
		return fmt.Errorf("no in-process metric reader configured")
	}
	return om.manualReader.Collect(ctx, rm)
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.Enabled() {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if !om.Enabled() {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	if om == nil {
		return nil
	}
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// TrackOperation runs fn inside a span named after operation and records
// its duration and outcome.
func (om *ObservabilityManager) TrackOperation(ctx context.Context, operation string, fn func(context.Context) error, attributes ...attribute.KeyValue) error {
	ctx, span := om.Tracer("placementprep.service").Start(ctx, "service."+operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	attrs := append([]attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}, attributes...)
	span.SetAttributes(attrs...)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	m := om.GetMetrics()
	if m.OperationCount == nil {
		return err
	}
	m.OperationDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	m.OperationCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.OperationErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	return err
}

// RecordAnalysis records one completed analysis: its base score and the
// length of the text it was computed from.
func (om *ObservabilityManager) RecordAnalysis(ctx context.Context, baseScore, characters int, source string) {
	m := om.GetMetrics()
	if m.AnalysesTotal == nil || !om.businessMetricsEnabled() {
		return
	}

	attrs := metric.WithAttributes(attribute.String("source", source))
	m.AnalysesTotal.Add(ctx, 1, attrs)

	business := om.businessConfig()
	if business == nil || business.TrackScores {
		m.ReadinessScore.Record(ctx, int64(baseScore), attrs)
	}
	if business == nil || business.TrackContentSizes {
		m.DocumentChars.Record(ctx, int64(characters), attrs)
	}
}

// RecordBusinessMetric records business-specific metrics
func (om *ObservabilityManager) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	m := om.GetMetrics()

	attrs := append([]attribute.KeyValue{
		attribute.Bool("success", success),
	}, attributes...)
	opt := metric.WithAttributes(attrs...)

	if metricType == MetricRateLimitHit {
		if m.RateLimitHits != nil && om.trackRateLimits() {
			m.RateLimitHits.Add(ctx, 1, opt)
		}
		return
	}

	if !om.businessMetricsEnabled() {
		return
	}
	if business := om.businessConfig(); business != nil && !business.TrackSuccessRates && !success {
		return
	}

	var counter metric.Int64Counter
	switch metricType {
	case MetricEntrySaved:
		counter = m.EntriesSaved
	case MetricEntryDeleted, MetricHistoryClear:
		counter = m.EntriesDeleted
	case MetricSkillToggled:
		counter = m.SkillToggles
	case MetricPlanExported:
		counter = m.Exports
	case MetricEmptyDocument:
		counter = m.EmptyDocuments
	}
	if counter != nil {
		counter.Add(ctx, 1, opt)
	}
}

// RecordStorageOperation records the duration and outcome of one history
// store call
func (om *ObservabilityManager) RecordStorageOperation(ctx context.Context, driver, operation string, duration time.Duration, err error) {
	m := om.GetMetrics()
	if m.StorageDuration == nil {
		return
	}

	var storage *config.StorageMetricsConfig
	if om.fullConfig != nil {
		storage = &om.fullConfig.Observability.CustomMetrics.Storage
	}
	if storage != nil && !storage.Enabled {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("driver", driver),
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	)
	if storage == nil || storage.TrackDuration {
		m.StorageDuration.Record(ctx, duration.Seconds(), attrs)
	}
	if err != nil {
		m.StorageErrors.Add(ctx, 1, attrs)
	}
}

func (om *ObservabilityManager) businessConfig() *config.BusinessMetricsConfig {
	if om == nil || om.fullConfig == nil {
		return nil
	}
	return &om.fullConfig.Observability.CustomMetrics.BusinessMetrics
}

func (om *ObservabilityManager) businessMetricsEnabled() bool {
	business := om.businessConfig()
	return business == nil || business.Enabled
}

func (om *ObservabilityManager) trackRateLimits() bool {
	if om == nil || om.fullConfig == nil {
		return true
	}
	infra := om.fullConfig.Observability.CustomMetrics.Infrastructure
	return infra.Enabled && infra.TrackRateLimits
}

// No-op exporter for when neither console nor OTLP output is configured
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

// getServiceInstanceID returns the service instance ID from config or a default
func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	return "placementprep-1"
}

// getMetricsCollectionInterval returns the configured metrics collection interval
func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}

package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/xerrors"
)

// ErrInvalidConfig 错误码：config_required、invalid_path、invalid_port
var ErrInvalidConfig = xerrors.Wrap(xerrors.ErrInvalidInput, "metrics")

type meter struct {
	cfg      Config
	m        metric.Meter
	provider *sdkmetric.MeterProvider
	handler  http.Handler
	server   *http.Server
	logger   clog.Logger
}

// New cfg.Enabled 为 false 时返回 Discard()；Port 大于 0 时在该端口提供 Path
func New(cfg *Config, opts ...Option) (Meter, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrInvalidConfig, "config_required")
	}
	if !cfg.Enabled {
		return Discard(), nil
	}
	c := *cfg
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceNameKey.String(c.ServiceName),
		semconv.ServiceVersionKey.String(c.Version),
	))
	if err != nil {
		return nil, xerrors.Wrap(err, "metrics: resource")
	}

	var gatherer promclient.Gatherer = promclient.DefaultGatherer
	var exporterOpts []prometheus.Option
	if o.registry != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(o.registry))
		gatherer = o.registry
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		return nil, xerrors.Wrap(err, "metrics: prometheus exporter")
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter), sdkmetric.WithResource(res))
	otel.SetMeterProvider(mp)
	if c.RuntimeMetrics {
		if err := otelruntime.Start(otelruntime.WithMeterProvider(mp)); err != nil {
			o.logger.Warn("runtime metrics disabled", clog.Error(err))
		}
	}

	m := &meter{
		cfg:      c,
		m:        mp.Meter("github.com/ceyewan/snowkit"),
		provider: mp,
		handler:  promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		logger:   o.logger,
	}
	if c.Port > 0 {
		m.serve()
	}
	return m, nil
}

// Handler 返回 Prometheus 抓取端点，Discard() 返回 404
func Handler(m Meter) http.Handler {
	if impl, ok := m.(*meter); ok {
		return impl.handler
	}
	return http.NotFoundHandler()
}

func (m *meter) serve() {
	mux := http.NewServeMux()
	mux.Handle(m.cfg.Path, m.handler)
	m.server = &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(m.cfg.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		m.logger.Info("serving metrics", clog.String("addr", m.server.Addr), clog.String("path", m.cfg.Path))
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server stopped", clog.Error(err))
		}
	}()
}

func (m *meter) Counter(name, desc string, opts ...MetricOption) (Counter, error) {
	o := applyMetricOptions(opts)
	c, err := m.m.Float64Counter(name, metric.WithDescription(desc), metric.WithUnit(o.unit))
	if err != nil {
		return nil, xerrors.Wrapf(err, "metrics: counter %s", name)
	}
	return &counter{c: c}, nil
}

func (m *meter) Gauge(name, desc string, opts ...MetricOption) (Gauge, error) {
	o := applyMetricOptions(opts)
	g, err := m.m.Float64Gauge(name, metric.WithDescription(desc), metric.WithUnit(o.unit))
	if err != nil {
		return nil, xerrors.Wrapf(err, "metrics: gauge %s", name)
	}
	return &gauge{g: g, values: make(map[attribute.Distinct]float64)}, nil
}

func (m *meter) Histogram(name, desc string, opts ...MetricOption) (Histogram, error) {
	o := applyMetricOptions(opts)
	hopts := []metric.Float64HistogramOption{metric.WithDescription(desc), metric.WithUnit(o.unit)}
	if len(o.buckets) > 0 {
		hopts = append(hopts, metric.WithExplicitBucketBoundaries(o.buckets...))
	}
	h, err := m.m.Float64Histogram(name, hopts...)
	if err != nil {
		return nil, xerrors.Wrapf(err, "metrics: histogram %s", name)
	}
	return &histogram{h: h}, nil
}

func (m *meter) Shutdown(ctx context.Context) error {
	var errs xerrors.Collector
	if m.server != nil {
		errs.Collect(m.server.Shutdown(ctx))
	}
	errs.Collect(m.provider.Shutdown(ctx))
	return errs.Err()
}

// Package metrics 把 OpenTelemetry 指标经 Prometheus exporter 暴露出来。
//
//	meter, err := metrics.New(&metrics.Config{Enabled: true, Port: 9090})
//	if err != nil {
//		return err
//	}
//	defer meter.Shutdown(ctx)
//
//	generated, _ := meter.Counter("idgen_ids_generated_total", "Generated ids")
//	generated.Inc(ctx, metrics.L("scheme", "64"))
//
// 指标关闭时 New 返回 Discard()，调用方不需要判空。
package metrics

import "context"

type Counter interface {
	Inc(ctx context.Context, labels ...Label)
	// Add 忽略负数
	Add(ctx context.Context, val float64, labels ...Label)
}

// Gauge 按标签组合分别记住当前值，Inc/Dec 在此基础上增减
type Gauge interface {
	Set(ctx context.Context, val float64, labels ...Label)
	Inc(ctx context.Context, labels ...Label)
	Dec(ctx context.Context, labels ...Label)
}

type Histogram interface {
	Record(ctx context.Context, val float64, labels ...Label)
}

// Meter 创建的指标可并发使用；同名指标重复创建返回同一条时间序列
type Meter interface {
	Counter(name, desc string, opts ...MetricOption) (Counter, error)
	Gauge(name, desc string, opts ...MetricOption) (Gauge, error)
	Histogram(name, desc string, opts ...MetricOption) (Histogram, error)

	// Shutdown 关闭 HTTP 服务并刷新 MeterProvider
	Shutdown(ctx context.Context) error
}

type MetricOption func(*metricOptions)

type metricOptions struct {
	unit    string
	buckets []float64
}

// WithUnit UCUM 单位，如 s、By
func WithUnit(unit string) MetricOption {
	return func(o *metricOptions) { o.unit = unit }
}

// WithBuckets 直方图桶边界，不设置时使用 SDK 默认值
func WithBuckets(buckets ...float64) MetricOption {
	return func(o *metricOptions) { o.buckets = buckets }
}

func applyMetricOptions(opts []MetricOption) metricOptions {
	var o metricOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

package idgen

import (
	"context"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/metrics"
)

// 指标名称
const (
	// MetricGenerated 生成的 ID 总数 (Counter, label: scheme)
	MetricGenerated = "idgen_generated_total"

	// MetricSequenceExhausted 序列号耗尽次数 (Counter, label: scheme)
	MetricSequenceExhausted = "idgen_sequence_exhausted_total"

	// MetricClockRegressions 时钟回拨次数 (Counter, labels: scheme, policy)
	MetricClockRegressions = "idgen_clock_regressions_total"

	// MetricTickWait 等待 tick 推进的耗时 (Histogram, label: scheme)
	MetricTickWait = "idgen_tick_wait_seconds"

	// MetricRegistryGenerators Registry 中的生成器数量 (Gauge)
	MetricRegistryGenerators = "idgen_registry_generators"
)

var schemeLabels = func() [schemeCount]metrics.Label {
	var labels [schemeCount]metrics.Label
	for s := Scheme(0); s < schemeCount; s++ {
		labels[s] = metrics.L("scheme", s.String())
	}
	return labels
}()

type generatorMetrics struct {
	generated   metrics.Counter
	exhausted   metrics.Counter
	regressions metrics.Counter
	tickWait    metrics.Histogram
}

// newGeneratorMetrics 创建生成器指标，单个指标创建失败时记录日志并退化为 noop
func newGeneratorMetrics(meter metrics.Meter, logger clog.Logger) *generatorMetrics {
	noop := metrics.Discard()
	m := &generatorMetrics{}
	var err error

	if m.generated, err = meter.Counter(MetricGenerated, "Total number of generated ids"); err != nil {
		logger.Warn("create metric failed", clog.String("metric", MetricGenerated), clog.Error(err))
		m.generated, _ = noop.Counter(MetricGenerated, "")
	}
	if m.exhausted, err = meter.Counter(MetricSequenceExhausted, "Times the per-tick sequence space ran out"); err != nil {
		logger.Warn("create metric failed", clog.String("metric", MetricSequenceExhausted), clog.Error(err))
		m.exhausted, _ = noop.Counter(MetricSequenceExhausted, "")
	}
	if m.regressions, err = meter.Counter(MetricClockRegressions, "Observed clock regressions"); err != nil {
		logger.Warn("create metric failed", clog.String("metric", MetricClockRegressions), clog.Error(err))
		m.regressions, _ = noop.Counter(MetricClockRegressions, "")
	}
	if m.tickWait, err = meter.Histogram(MetricTickWait, "Time spent waiting for the clock to advance",
		metrics.WithUnit("s"),
		metrics.WithBuckets(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	); err != nil {
		logger.Warn("create metric failed", clog.String("metric", MetricTickWait), clog.Error(err))
		m.tickWait, _ = noop.Histogram(MetricTickWait, "")
	}
	return m
}

func (m *generatorMetrics) recordGenerated(s Scheme) {
	m.generated.Inc(context.Background(), schemeLabels[s])
}

func (m *generatorMetrics) recordExhausted(s Scheme) {
	m.exhausted.Inc(context.Background(), schemeLabels[s])
}

func (m *generatorMetrics) recordRegression(s Scheme, p RegressionPolicy) {
	m.regressions.Inc(context.Background(), schemeLabels[s], metrics.L("policy", p.String()))
}

func (m *generatorMetrics) recordWait(s Scheme, waitedMs int64) {
	m.tickWait.Record(context.Background(), float64(waitedMs)/1000, schemeLabels[s])
}

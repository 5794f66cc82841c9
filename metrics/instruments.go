package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type counter struct {
	c metric.Float64Counter
}

func (c *counter) Inc(ctx context.Context, labels ...Label) { c.Add(ctx, 1, labels...) }

func (c *counter) Add(ctx context.Context, val float64, labels ...Label) {
	if val < 0 {
		return
	}
	set := attributeSet(labels)
	c.c.Add(ctx, val, metric.WithAttributeSet(set))
}

type gauge struct {
	g metric.Float64Gauge

	mu     sync.Mutex
	values map[attribute.Distinct]float64
}

func (g *gauge) Set(ctx context.Context, val float64, labels ...Label) {
	g.update(ctx, labels, func(float64) float64 { return val })
}

func (g *gauge) Inc(ctx context.Context, labels ...Label) {
	g.update(ctx, labels, func(cur float64) float64 { return cur + 1 })
}

func (g *gauge) Dec(ctx context.Context, labels ...Label) {
	g.update(ctx, labels, func(cur float64) float64 { return cur - 1 })
}

// update 在锁内记录，保证同一标签组合的写入顺序与本地值一致
func (g *gauge) update(ctx context.Context, labels []Label, fn func(float64) float64) {
	set := attributeSet(labels)
	key := set.Equivalent()

	g.mu.Lock()
	defer g.mu.Unlock()
	val := fn(g.values[key])
	g.values[key] = val
	g.g.Record(ctx, val, metric.WithAttributeSet(set))
}

func (g *gauge) value(labels ...Label) float64 {
	set := attributeSet(labels)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.values[set.Equivalent()]
}

type histogram struct {
	h metric.Float64Histogram
}

func (h *histogram) Record(ctx context.Context, val float64, labels ...Label) {
	h.h.Record(ctx, val, metric.WithAttributeSet(attributeSet(labels)))
}

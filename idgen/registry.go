package idgen

import (
	"context"
	"sync"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/metrics"
	"github.com/ceyewan/snowkit/xerrors"
)

// Registry 按节点号缓存 Generator。
//
// Get 在 Registry 锁内完成创建，同一个节点号并发调用只会创建一个生成器。
// Registry 锁与生成器内部的方案锁相互独立。
type Registry struct {
	mu         sync.Mutex
	generators map[uint64]*Generator
	opts       []Option
	closed     bool

	logger clog.Logger
	size   metrics.Gauge
}

// NewRegistry 创建 Registry，opts 会应用到它创建的每个生成器
func NewRegistry(opts ...Option) *Registry {
	o := applyOptions(opts)
	logger := o.logger.With(clog.String("component", "idgen.registry"))

	size, err := o.meter.Gauge(MetricRegistryGenerators, "Number of live generators in the registry")
	if err != nil {
		logger.Warn("create metric failed", clog.String("metric", MetricRegistryGenerators), clog.Error(err))
		size, _ = metrics.Discard().Gauge(MetricRegistryGenerators, "")
	}

	return &Registry{
		generators: make(map[uint64]*Generator),
		opts:       append([]Option(nil), opts...),
		logger:     logger,
		size:       size,
	}
}

// Get 返回节点号对应的生成器，不存在时创建
func (r *Registry) Get(nodeID uint64) (*Generator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, xerrors.WithCode(ErrRegistryClosed, "registry_closed")
	}
	if g, ok := r.generators[nodeID]; ok {
		return g, nil
	}

	g, err := New(nodeID, r.opts...)
	if err != nil {
		return nil, err
	}
	r.generators[nodeID] = g
	r.reportSize()
	return g, nil
}

// Dispose 仅当 g 仍是其节点号的当前生成器时移除它，返回是否移除
func (r *Registry) Dispose(g *Generator) bool {
	if g == nil {
		return false
	}

	r.mu.Lock()
	cur, ok := r.generators[g.nodeID]
	if !ok || cur != g {
		r.mu.Unlock()
		return false
	}
	delete(r.generators, g.nodeID)
	r.reportSize()
	r.mu.Unlock()

	g.dispose()
	return true
}

// Len 返回当前缓存的生成器数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.generators)
}

// Close 释放所有生成器，之后 Get 返回 ErrRegistryClosed。重复调用返回 nil。
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	generators := r.generators
	r.generators = make(map[uint64]*Generator)
	r.reportSize()
	r.mu.Unlock()

	for _, g := range generators {
		g.dispose()
	}
	r.logger.Info("registry closed", clog.Int("disposed", len(generators)))
	return nil
}

func (r *Registry) reportSize() {
	r.size.Set(context.Background(), float64(len(r.generators)))
}

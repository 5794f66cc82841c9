package connector

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/metrics"
	"github.com/ceyewan/snowkit/xerrors"
)

// lifecycle 是 Redis 与 Etcd 连接器共用的状态：健康标记、一次性关闭与连接指标
type lifecycle struct {
	kind   string
	name   string
	logger clog.Logger

	attempts metrics.Counter
	active   metrics.Gauge
	labels   []metrics.Label

	healthy   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newLifecycle(kind, name string, o *options) *lifecycle {
	l := &lifecycle{
		kind:   kind,
		name:   name,
		logger: o.logger.With(clog.String("connector", kind), clog.String("name", name)),
		labels: []metrics.Label{metrics.L("connector", kind), metrics.L("name", name)},
	}
	var err error
	if l.attempts, err = o.meter.Counter("connector_connect_attempts_total", "Connector connect attempts by result"); err != nil {
		l.attempts, _ = metrics.Discard().Counter("", "")
	}
	if l.active, err = o.meter.Gauge("connector_active_connections", "Currently open connectors"); err != nil {
		l.active, _ = metrics.Discard().Gauge("", "")
	}
	return l
}

func (l *lifecycle) Name() string    { return l.name }
func (l *lifecycle) IsHealthy() bool { return l.healthy.Load() }

func (l *lifecycle) connect(ctx context.Context, target string, ping func(context.Context) error) error {
	l.logger.Debug("connecting", clog.String("target", target))
	if err := ping(ctx); err != nil {
		l.attempts.Inc(ctx, append(l.labels, metrics.L("result", "failure"))...)
		l.logger.Error("connect failed", clog.String("target", target), clog.Error(err))
		return xerrors.Wrapf(xerrors.Combine(ErrConnection, err), "%s connector[%s]", l.kind, l.name)
	}
	l.attempts.Inc(ctx, append(l.labels, metrics.L("result", "success"))...)
	l.active.Set(ctx, 1, l.labels...)
	l.healthy.Store(true)
	l.logger.Info("connected", clog.String("target", target))
	return nil
}

func (l *lifecycle) check(ctx context.Context, ping func(context.Context) error) error {
	if err := ping(ctx); err != nil {
		l.healthy.Store(false)
		l.logger.Warn("health check failed", clog.Error(err))
		return xerrors.Wrapf(xerrors.Combine(ErrHealthCheck, err), "%s connector[%s]", l.kind, l.name)
	}
	l.healthy.Store(true)
	return nil
}

// close 只执行一次 release，之后的调用返回同一结果
func (l *lifecycle) close(release func() error) error {
	l.closeOnce.Do(func() {
		l.healthy.Store(false)
		l.active.Set(context.Background(), 0, l.labels...)
		if err := release(); err != nil {
			l.logger.Error("close failed", clog.Error(err))
			l.closeErr = err
			return
		}
		l.logger.Info("closed")
	})
	return l.closeErr
}

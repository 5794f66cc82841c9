package nodeid

import (
	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/connector"
	"github.com/ceyewan/snowkit/metrics"
)

type Option func(*options)

type options struct {
	logger clog.Logger
	meter  metrics.Meter
	redis  connector.RedisConnector
	etcd   connector.EtcdConnector
}

func WithLogger(logger clog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMeter 记录租约的获取、续约与丢失次数
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) { o.meter = meter }
}

// WithRedisConnector redis 方式必需，Provider 不会关闭它
func WithRedisConnector(conn connector.RedisConnector) Option {
	return func(o *options) { o.redis = conn }
}

// WithEtcdConnector etcd 方式必需，Provider 不会关闭它
func WithEtcdConnector(conn connector.EtcdConnector) Option {
	return func(o *options) { o.etcd = conn }
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = clog.Default()
	}
	if o.meter == nil {
		o.meter = metrics.Discard()
	}
	o.logger = o.logger.With(clog.String("component", "nodeid"))
	return o
}

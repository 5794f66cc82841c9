package connector

import (
	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/metrics"
)

type options struct {
	logger     clog.Logger
	meter      metrics.Meter
	instrument bool
}

type Option func(*options)

// WithLogger nil 时保持默认的 clog.Default()
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeter 记录连接指标；对 Redis 额外开启 redisotel 客户端指标
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) { o.meter = meter }
}

func applyOptions(opts []Option) *options {
	o := &options{logger: clog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.WithNamespace("connector")
	o.instrument = o.meter != nil
	if o.meter == nil {
		o.meter = metrics.Discard()
	}
	return o
}

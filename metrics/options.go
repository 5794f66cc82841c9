package metrics

import (
	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/ceyewan/snowkit/clog"
)

type Option func(*options)

type options struct {
	logger   clog.Logger
	registry *promclient.Registry
}

func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegistry 注册到独立的 Registry 而不是全局 DefaultRegisterer，测试中每个 Meter 各用一个
func WithRegistry(registry *promclient.Registry) Option {
	return func(o *options) { o.registry = registry }
}

func applyOptions(opts []Option) *options {
	o := &options{logger: clog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.WithNamespace("metrics")
	return o
}

package idgen

import (
	"time"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/metrics"
)

// Option 组件初始化选项函数
type Option func(*options)

type options struct {
	logger       clog.Logger
	meter        metrics.Meter
	clock        Clock
	sleep        func(time.Duration)
	yield        func()
	policy       RegressionPolicy
	maxBackwards time.Duration
	tinyBlock    time.Duration
}

func defaultOptions() *options {
	return &options{
		policy:       RegressionWait,
		maxBackwards: DefaultMaxBackwards,
		tinyBlock:    time.Second,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = clog.Default()
	}
	if o.meter == nil {
		o.meter = metrics.Discard()
	}
	if o.clock == nil {
		o.clock = SystemClock{}
	}
	return o
}

// WithLogger 设置 Logger
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMeter 设置 Meter
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithClock 替换时钟，主要用于测试
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithSleeper 替换粗粒度 tick 等待时的睡眠函数
func WithSleeper(sleep func(time.Duration)) Option {
	return func(o *options) {
		o.sleep = sleep
	}
}

// WithYield 替换毫秒级 tick 等待时的让出函数
func WithYield(yield func()) Option {
	return func(o *options) {
		o.yield = yield
	}
}

// WithRegressionPolicy 设置时钟回拨策略，默认 RegressionWait
func WithRegressionPolicy(policy RegressionPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithMaxBackwards 设置 RegressionWait 策略可容忍的最大回拨，默认 1s
func WithMaxBackwards(d time.Duration) Option {
	return func(o *options) {
		o.maxBackwards = d
	}
}

// WithTinyBlockSize 设置 tiny 方案的 tick 大小，默认 1s，最小 1ms
func WithTinyBlockSize(d time.Duration) Option {
	return func(o *options) {
		o.tinyBlock = d
	}
}

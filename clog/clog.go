package clog

import (
	"sync"

	"github.com/ceyewan/snowkit/xerrors"
)

// ErrInvalidConfig 日志配置不合法，具体原因见错误码
var ErrInvalidConfig = xerrors.Wrap(xerrors.ErrInvalidInput, "clog")

var (
	defaultOnce   sync.Once
	defaultLogger Logger
)

// New 按配置创建 Logger，config 为 nil 时使用 NewDevDefaultConfig。
// 空字段取默认值：info、console、stdout。
func New(config *Config, opts ...Option) (Logger, error) {
	if config == nil {
		config = NewDevDefaultConfig("snowkit")
	}
	cfg := *config
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts...)
	h, err := newHandler(&cfg, o)
	if err != nil {
		return nil, err
	}
	return &logger{handler: h, opts: o}, nil
}

// Default 进程级 Logger：info、console、stderr。
// 组件在调用方没有注入 Logger 时使用它。
func Default() Logger {
	defaultOnce.Do(func() {
		l, err := New(&Config{Level: "info", Format: "console", Output: "stderr"})
		if err != nil {
			l = Discard()
		}
		defaultLogger = l
	})
	return defaultLogger
}

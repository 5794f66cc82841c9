package idgen

import (
	"time"

	"github.com/ceyewan/snowkit/xerrors"
)

// Config 生成器配置，对应配置文件的 idgen 段：
//
//	idgen:
//	  node_id: 5
//	  clock_regression: wait   # wait | reject | accept
//	  max_backwards_ms: 1000
//	  tiny_block_ms: 1000
type Config struct {
	// NodeID 节点号，由调用方保证集群内唯一
	NodeID uint64 `mapstructure:"node_id" yaml:"node_id" json:"node_id"`

	// ClockRegression 时钟回拨策略，默认 "wait"
	ClockRegression string `mapstructure:"clock_regression" yaml:"clock_regression" json:"clock_regression"`

	// MaxBackwardsMs wait 策略可容忍的最大回拨毫秒数，未设置时为 1000；0 表示不容忍回拨
	MaxBackwardsMs *int64 `mapstructure:"max_backwards_ms" yaml:"max_backwards_ms" json:"max_backwards_ms"`

	// TinyBlockMs tiny 方案的 tick 毫秒数，默认 1000
	TinyBlockMs int64 `mapstructure:"tiny_block_ms" yaml:"tiny_block_ms" json:"tiny_block_ms"`
}

func (c *Config) setDefaults() {
	if c.ClockRegression == "" {
		c.ClockRegression = RegressionWait.String()
	}
	if c.MaxBackwardsMs == nil {
		ms := DefaultMaxBackwards.Milliseconds()
		c.MaxBackwardsMs = &ms
	}
	if c.TinyBlockMs == 0 {
		c.TinyBlockMs = 1000
	}
}

func (c *Config) validate() error {
	if _, err := ParseRegressionPolicy(c.ClockRegression); err != nil {
		return err
	}
	if *c.MaxBackwardsMs < 0 {
		return xerrors.WithCode(ErrInvalidInput, "max_backwards_negative")
	}
	if c.TinyBlockMs < 1 {
		return xerrors.WithCode(ErrInvalidInput, "tiny_block_too_small")
	}
	return nil
}

// Options 在副本上补全默认值并校验，转换为 Option 列表，不修改 c
func (c *Config) Options() ([]Option, error) {
	cfg := *c
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	policy, _ := ParseRegressionPolicy(cfg.ClockRegression)
	return []Option{
		WithRegressionPolicy(policy),
		WithMaxBackwards(time.Duration(*cfg.MaxBackwardsMs) * time.Millisecond),
		WithTinyBlockSize(time.Duration(cfg.TinyBlockMs) * time.Millisecond),
	}, nil
}

// NewFromConfig 按配置创建生成器，opts 在配置之后生效
func NewFromConfig(cfg *Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrInvalidInput, "config_nil")
	}
	cfgOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(cfg.NodeID, append(cfgOpts, opts...)...)
}

// NewRegistryFromConfig 按配置创建 Registry，cfg.NodeID 被忽略
func NewRegistryFromConfig(cfg *Config, opts ...Option) (*Registry, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrInvalidInput, "config_nil")
	}
	cfgOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return NewRegistry(append(cfgOpts, opts...)...), nil
}

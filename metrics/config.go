package metrics

import (
	"strings"

	"github.com/ceyewan/snowkit/xerrors"
)

// Config 对应配置文件的 metrics 段
//
//	metrics:
//	  enabled: true
//	  port: 9090
//	  runtime_metrics: true
type Config struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	ServiceName    string `mapstructure:"service_name" yaml:"service_name"` // 默认 snowkit
	Version        string `mapstructure:"version" yaml:"version"`
	Port           int    `mapstructure:"port" yaml:"port"` // 0 表示不监听，只能经 Handler 访问
	Path           string `mapstructure:"path" yaml:"path"` // 默认 /metrics
	RuntimeMetrics bool   `mapstructure:"runtime_metrics" yaml:"runtime_metrics"`
}

// NewDevDefaultConfig 启用指标但不监听端口
func NewDevDefaultConfig(serviceName string) *Config {
	return &Config{Enabled: true, ServiceName: serviceName, Version: "dev", Path: "/metrics"}
}

func (c *Config) setDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "snowkit"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.Path, "/") {
		return xerrors.Codef(ErrInvalidConfig, "invalid_path", "path %q", c.Path)
	}
	if c.Port < 0 || c.Port > 65535 {
		return xerrors.Codef(ErrInvalidConfig, "invalid_port", "port %d", c.Port)
	}
	return nil
}

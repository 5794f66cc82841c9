package connector

import (
	"strings"
	"time"

	"github.com/ceyewan/snowkit/xerrors"
)

// RedisConfig 对应配置文件的 redis 段
type RedisConfig struct {
	Name     string `mapstructure:"name" yaml:"name"` // 默认 default
	Addr     string `mapstructure:"addr" yaml:"addr"` // 必填
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`

	PoolSize     int           `mapstructure:"pool_size" yaml:"pool_size"` // 默认 4
	MinIdleConns int           `mapstructure:"min_idle_conns" yaml:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`   // 默认 5s
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`   // 默认 3s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"` // 默认 3s
}

func (c *RedisConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 4
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
}

func (c *RedisConfig) validate() error {
	if c.Addr == "" {
		return xerrors.WithCode(ErrConfig, "redis_addr_required")
	}
	if c.DB < 0 {
		return xerrors.Codef(ErrConfig, "redis_db_negative", "db %d", c.DB)
	}
	if c.MinIdleConns < 0 || c.MinIdleConns > c.PoolSize {
		return xerrors.Codef(ErrConfig, "redis_min_idle_out_of_range", "min_idle_conns %d, pool_size %d", c.MinIdleConns, c.PoolSize)
	}
	return nil
}

// EtcdConfig 对应配置文件的 etcd 段
type EtcdConfig struct {
	Name      string   `mapstructure:"name" yaml:"name"`
	Endpoints []string `mapstructure:"endpoints" yaml:"endpoints"` // 必填，探测只访问第一个
	Username  string   `mapstructure:"username" yaml:"username"`
	Password  string   `mapstructure:"password" yaml:"password"`

	DialTimeout      time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`             // 默认 5s
	KeepAliveTime    time.Duration `mapstructure:"keep_alive_time" yaml:"keep_alive_time"`       // gRPC 心跳，默认 10s
	KeepAliveTimeout time.Duration `mapstructure:"keep_alive_timeout" yaml:"keep_alive_timeout"` // 默认 3s
}

func (c *EtcdConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.KeepAliveTime == 0 {
		c.KeepAliveTime = 10 * time.Second
	}
	if c.KeepAliveTimeout == 0 {
		c.KeepAliveTimeout = 3 * time.Second
	}
}

func (c *EtcdConfig) validate() error {
	if len(c.Endpoints) == 0 {
		return xerrors.WithCode(ErrConfig, "etcd_endpoints_required")
	}
	for i, ep := range c.Endpoints {
		if strings.TrimSpace(ep) == "" {
			return xerrors.Codef(ErrConfig, "etcd_endpoint_empty", "endpoints[%d]", i)
		}
	}
	return nil
}

package nodeid

import (
	"strings"
	"time"

	"github.com/ceyewan/snowkit/xerrors"
)

// Config 节点号配置，对应配置文件的 nodeid 段
type Config struct {
	// Method 获取方式: static | mac | ip | redis | etcd，默认 static
	Method string `mapstructure:"method" yaml:"method" json:"method"`

	// NodeID static 方式使用的节点号
	NodeID uint64 `mapstructure:"node_id" yaml:"node_id" json:"node_id"`

	// KeyPrefix redis/etcd 键前缀，默认 "snowkit:nodeid"
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix" json:"key_prefix"`

	// MaxID 租约槽位范围 [0, MaxID)，默认 1024（64 位方案的节点位宽）
	MaxID int `mapstructure:"max_id" yaml:"max_id" json:"max_id"`

	// TTL 租约有效期，默认 30s，最小 3s
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl"`
}

const (
	defaultKeyPrefix = "snowkit:nodeid"
	defaultMaxID     = 1024
	defaultTTL       = 30 * time.Second
	minTTL           = 3 * time.Second

	// maxLeaseID 租约槽位上限，与 128 位方案的 16 位序列号无关，只是防止误配
	maxLeaseID = 1 << 16
)

func (c *Config) setDefaults() {
	c.Method = strings.ToLower(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = MethodStatic
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaultKeyPrefix
	}
	if c.MaxID == 0 {
		c.MaxID = defaultMaxID
	}
	if c.TTL == 0 {
		c.TTL = defaultTTL
	}
}

func (c *Config) validate() error {
	switch c.Method {
	case MethodStatic, MethodMAC, MethodIP, MethodRedis, MethodEtcd:
	default:
		return xerrors.Codef(ErrInvalidInput, "unsupported_method", "method %q", c.Method)
	}
	if c.MaxID <= 0 || c.MaxID > maxLeaseID {
		return xerrors.Codef(ErrInvalidInput, "max_id_out_of_range", "max_id %d", c.MaxID)
	}
	if c.TTL < minTTL {
		return xerrors.Codef(ErrInvalidInput, "ttl_too_small", "ttl %v", c.TTL)
	}
	return nil
}

// ttlSeconds 向下取整到秒，Redis EX 与 etcd Grant 都以秒为单位
func (c *Config) ttlSeconds() int64 {
	return int64(c.TTL / time.Second)
}

// Package config 基于 viper 加载 snowkit 的配置。
//
// 来源按优先级从高到低：环境变量、.env 文件、<name>.<env>.yaml、<name>.yaml、默认值。
// <env> 取自 <PREFIX>_ENV，键 a.b_c 对应环境变量 <PREFIX>_A_B_C。
//
//	loader := config.MustLoad(
//		config.WithConfigName("snowkit"),
//		config.WithConfigPaths("/etc/snowkit"),
//		config.WithDefault("idgen.clock_regression", "wait"),
//	)
//	var cfg idgen.Config
//	_ = loader.UnmarshalKey("idgen", &cfg)
//
// 找到配置文件时 Load 会启动 fsnotify 监听，Watch 返回的通道收到变更后的值。
package config

import (
	"context"
	"time"
)

type Loader interface {
	// Load 读取全部来源，之后才能 Get/Unmarshal
	Load(ctx context.Context) error

	// Get 不存在时返回 nil
	Get(key string) any
	Unmarshal(v any) error
	UnmarshalKey(key string, v any) error

	// Watch 订阅 key 的变更，ctx 结束后通道关闭
	Watch(ctx context.Context, key string) (<-chan Event, error)

	// Validate 没有任何配置项时返回 config_empty
	Validate() error
}

// Event 一次配置变更，OldValue 是该订阅者上一次看到的值
type Event struct {
	Key       string
	Value     any
	OldValue  any
	Source    string // 触发变更的文件
	Timestamp time.Time
}

package config

import (
	"context"
	"maps"
	"strings"

	"github.com/ceyewan/snowkit/clog"
)

// Config 加载器配置，零值字段在 New 中取默认值
type Config struct {
	Name      string         // 文件名，不含扩展名，默认 config
	Paths     []string       // 搜索目录，默认 . 与 ./config
	FileType  string         // 默认 yaml
	EnvPrefix string         // 默认 SNOWKIT，统一转为大写
	Defaults  map[string]any // 优先级最低

	logger clog.Logger
}

type Option func(*Config)

func WithConfigName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithConfigPath 追加搜索目录
func WithConfigPath(path string) Option {
	return func(c *Config) { c.Paths = append(c.Paths, path) }
}

// WithConfigPaths 替换搜索目录
func WithConfigPaths(paths ...string) Option {
	return func(c *Config) { c.Paths = paths }
}

func WithConfigType(typ string) Option {
	return func(c *Config) { c.FileType = typ }
}

func WithEnvPrefix(prefix string) Option {
	return func(c *Config) { c.EnvPrefix = prefix }
}

func WithDefault(key string, value any) Option {
	return WithDefaults(map[string]any{key: value})
}

// WithDefaults 批量注册默认值。只有注册过的键才能被环境变量覆盖后出现在 Unmarshal 结果中
func WithDefaults(defaults map[string]any) Option {
	return func(c *Config) {
		if c.Defaults == nil {
			c.Defaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			c.Defaults[k] = v
		}
	}
}

// WithLogger 默认 clog.Default()
func WithLogger(logger clog.Logger) Option {
	return func(c *Config) { c.logger = logger }
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "config"
	}
	if c.Paths == nil {
		c.Paths = []string{".", "./config"}
	}
	if c.FileType == "" {
		c.FileType = "yaml"
	}
	if c.EnvPrefix == "" {
		c.EnvPrefix = "SNOWKIT"
	}
	c.EnvPrefix = strings.ToUpper(c.EnvPrefix)
	if c.logger == nil {
		c.logger = clog.Default()
	}
}

// New cfg 可以为 nil，opts 在 cfg 之上生效
func New(cfg *Config, opts ...Option) (Loader, error) {
	c := Config{}
	if cfg != nil {
		c = *cfg
		c.Defaults = maps.Clone(cfg.Defaults)
	}
	for _, opt := range opts {
		opt(&c)
	}
	c.setDefaults()
	return newLoader(&c), nil
}

// MustLoad 创建并加载，失败时 panic，只用于 main
func MustLoad(opts ...Option) Loader {
	l, err := New(nil, opts...)
	if err != nil {
		panic(err)
	}
	if err := l.Load(context.Background()); err != nil {
		panic(err)
	}
	return l
}

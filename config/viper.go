package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/xerrors"
)

const watchBuffer = 8

type subscription struct {
	key  string
	ch   chan Event
	last any
}

type loader struct {
	v      *viper.Viper
	cfg    *Config
	logger clog.Logger

	mu   sync.Mutex
	subs []*subscription
}

func newLoader(cfg *Config) *loader {
	v := viper.New()
	for k, val := range cfg.Defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigName(cfg.Name)
	v.SetConfigType(cfg.FileType)
	for _, p := range cfg.Paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(cfg.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &loader{v: v, cfg: cfg, logger: cfg.logger.With(clog.String("component", "config"))}
}

func (l *loader) Load(ctx context.Context) error {
	if path, ok := l.loadDotEnv(); ok {
		l.logger.DebugContext(ctx, "dotenv loaded", clog.String("path", path))
	}

	found, err := l.read(l.v.ReadInConfig)
	if err != nil {
		return xerrors.Codef(ErrInvalidConfig, "config_malformed", "read %s: %v", l.cfg.Name, err)
	}
	if !found {
		l.logger.InfoContext(ctx, "no config file, using env and defaults", clog.String("name", l.cfg.Name))
	}
	if err := l.mergeEnvFile(ctx); err != nil {
		return err
	}
	if err := l.Validate(); err != nil {
		return err
	}

	if found {
		l.logger.DebugContext(ctx, "watching config file", clog.String("file", l.v.ConfigFileUsed()))
		l.v.OnConfigChange(l.onChange)
		l.v.WatchConfig()
	}
	return nil
}

// read 执行 viper 的读取函数，文件不存在不算错误
func (l *loader) read(fn func() error) (bool, error) {
	err := fn()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &notFound):
		return false, nil
	}
	return false, err
}

// loadDotEnv 依次尝试 ./.env 与各搜索目录下的 .env，已存在的环境变量不被覆盖
func (l *loader) loadDotEnv() (string, bool) {
	candidates := make([]string, 0, len(l.cfg.Paths)+1)
	candidates = append(candidates, ".env")
	for _, p := range l.cfg.Paths {
		candidates = append(candidates, filepath.Join(p, ".env"))
	}
	var loaded []string
	for _, c := range candidates {
		if godotenv.Load(c) == nil {
			loaded = append(loaded, c)
		}
	}
	return strings.Join(loaded, ","), len(loaded) > 0
}

// mergeEnvFile 合并 <name>.<env> 文件
func (l *loader) mergeEnvFile(ctx context.Context) error {
	env := os.Getenv(l.cfg.EnvPrefix + "_ENV")
	if env == "" {
		return nil
	}
	name := l.cfg.Name + "." + env
	l.v.SetConfigName(name)
	defer l.v.SetConfigName(l.cfg.Name)

	found, err := l.read(l.v.MergeInConfig)
	if err != nil {
		return xerrors.Codef(ErrInvalidConfig, "env_config_malformed", "merge %s: %v", name, err)
	}
	l.logger.InfoContext(ctx, "environment config", clog.String("env", env), clog.Bool("found", found))
	return nil
}

func (l *loader) Get(key string) any                   { return l.v.Get(key) }
func (l *loader) Unmarshal(v any) error                { return l.v.Unmarshal(v) }
func (l *loader) UnmarshalKey(key string, v any) error { return l.v.UnmarshalKey(key, v) }

func (l *loader) Validate() error {
	if len(l.v.AllKeys()) == 0 {
		return xerrors.Codef(ErrInvalidConfig, "config_empty", "no file, env or default for %s", l.cfg.Name)
	}
	return nil
}

func (l *loader) Watch(ctx context.Context, key string) (<-chan Event, error) {
	s := &subscription{key: key, ch: make(chan Event, watchBuffer), last: l.v.Get(key)}

	l.mu.Lock()
	l.subs = append(l.subs, s)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.unsubscribe(s)
	}()
	return s.ch, nil
}

func (l *loader) unsubscribe(s *subscription) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cur := range l.subs {
		if cur == s {
			l.subs = append(l.subs[:i], l.subs[i+1:]...)
			close(s.ch)
			return
		}
	}
}

func (l *loader) onChange(e fsnotify.Event) {
	if err := l.mergeEnvFile(context.Background()); err != nil {
		l.logger.Error("reload environment config failed", clog.Error(err))
	}

	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.subs {
		val := l.v.Get(s.key)
		if reflect.DeepEqual(val, s.last) {
			continue
		}
		ev := Event{Key: s.key, Value: val, OldValue: s.last, Source: e.Name, Timestamp: now}
		s.last = val
		select {
		case s.ch <- ev:
		default:
			l.logger.Warn("watcher is slow, config event dropped", clog.String("key", s.key))
		}
	}
}

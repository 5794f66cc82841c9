package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/xerrors"
)

type idgenSection struct {
	NodeID           uint64 `mapstructure:"node_id"`
	ClockRegression  string `mapstructure:"clock_regression"`
	MaxBackwardsMs   int64  `mapstructure:"max_backwards_ms"`
	TinyBlockSeconds int64  `mapstructure:"tiny_block_seconds"`
}

// TestLoaderLoad 测试配置加载的优先级：环境变量 > 环境特定配置 > 基础配置
func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), `
idgen:
  node_id: 1
  clock_regression: wait
  max_backwards_ms: 1000
log:
  level: info
`)
	writeFile(t, filepath.Join(dir, "config.dev.yaml"), `
idgen:
  clock_regression: reject
`)

	t.Setenv("SNOWKIT_LOADTEST_ENV", "dev")
	t.Setenv("SNOWKIT_LOADTEST_IDGEN_NODE_ID", "9")

	l, err := New(&Config{
		Paths:     []string{dir},
		EnvPrefix: "SNOWKIT_LOADTEST",
	}, WithLogger(clog.Discard()))
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))

	var section idgenSection
	require.NoError(t, l.UnmarshalKey("idgen", &section))
	assert.Equal(t, "reject", section.ClockRegression)
	assert.EqualValues(t, 1000, section.MaxBackwardsMs)

	// AutomaticEnv 只对 Get 生效
	assert.Equal(t, "9", l.Get("idgen.node_id"))
	assert.Equal(t, "info", l.Get("log.level"))
}

func TestLoaderValidate(t *testing.T) {
	t.Run("empty configuration", func(t *testing.T) {
		l, err := New(&Config{Paths: []string{t.TempDir()}, EnvPrefix: "SNOWKIT_EMPTY"}, WithLogger(clog.Discard()))
		require.NoError(t, err)

		err = l.Load(context.Background())
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
		assert.Equal(t, "config_empty", xerrors.GetCode(err))
	})

	t.Run("defaults only", func(t *testing.T) {
		l, err := New(&Config{Paths: []string{t.TempDir()}, EnvPrefix: "SNOWKIT_DEFAULTS"},
			WithDefault("idgen.clock_regression", "wait"),
			WithLogger(clog.Discard()),
		)
		require.NoError(t, err)
		require.NoError(t, l.Load(context.Background()))
		assert.Equal(t, "wait", l.Get("idgen.clock_regression"))
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "config.yaml"), "idgen: [unclosed")

		l, err := New(&Config{Paths: []string{dir}, EnvPrefix: "SNOWKIT_BROKEN"}, WithLogger(clog.Discard()))
		require.NoError(t, err)
		err = l.Load(context.Background())
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Equal(t, "config_malformed", xerrors.GetCode(err))
	})
}

func TestLoaderDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "log:\n  level: info\n")
	writeFile(t, filepath.Join(dir, ".env"), "SNOWKIT_DOTENV_LOG_FORMAT=json\n")

	l, err := New(&Config{Paths: []string{dir}, EnvPrefix: "SNOWKIT_DOTENV"}, WithLogger(clog.Discard()))
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))

	assert.Equal(t, "json", l.Get("log.format"))
}

func TestLoaderWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "log:\n  level: info\n")

	l, err := New(&Config{Paths: []string{dir}, EnvPrefix: "SNOWKIT_WATCH"}, WithLogger(clog.Discard()))
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := l.Watch(ctx, "log.level")
	require.NoError(t, err)

	// 给 fsnotify 一点时间完成注册
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "log:\n  level: debug\n")

	// 写文件可能触发多次事件（截断、写入），等待最终值
	deadline := time.After(3 * time.Second)
	for {
		select {
		case event := <-ch:
			assert.Equal(t, "log.level", event.Key)
			assert.Equal(t, "config.yaml", filepath.Base(event.Source))
			if event.Value == "debug" {
				return
			}
		case <-deadline:
			t.Fatal("没有收到配置变更事件")
		}
	}
}

func TestLoaderWatchCancel(t *testing.T) {
	l, err := New(&Config{Paths: []string{t.TempDir()}, EnvPrefix: "SNOWKIT_CANCEL"},
		WithDefault("log.level", "info"),
		WithLogger(clog.Discard()),
	)
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := l.Watch(ctx, "log.level")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "取消后通道应被关闭")
	case <-time.After(time.Second):
		t.Fatal("取消后通道没有关闭")
	}

	impl := l.(*loader)
	impl.mu.Lock()
	defer impl.mu.Unlock()
	assert.Empty(t, impl.subs)
}

func TestLoaderWatchSubscribersAreIndependent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "idgen:\n  clock_regression: wait\n")

	l, err := New(&Config{Paths: []string{dir}, EnvPrefix: "SNOWKIT_MULTI"}, WithLogger(clog.Discard()))
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, err := l.Watch(ctx, "idgen.clock_regression")
	require.NoError(t, err)
	b, err := l.Watch(ctx, "idgen.clock_regression")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "idgen:\n  clock_regression: reject\n")

	deadline := time.After(3 * time.Second)
	for _, ch := range []<-chan Event{a, b} {
		first := true
	wait:
		for {
			select {
			case ev := <-ch:
				if first {
					assert.Equal(t, "wait", ev.OldValue)
					first = false
				}
				if ev.Value == "reject" {
					break wait
				}
			case <-deadline:
				t.Fatal("订阅者没有收到变更")
			}
		}
	}
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/config"
	"github.com/ceyewan/snowkit/connector"
	"github.com/ceyewan/snowkit/idgen"
	"github.com/ceyewan/snowkit/metrics"
	"github.com/ceyewan/snowkit/nodeid"
	"github.com/ceyewan/snowkit/xerrors"
)

// AppConfig snowkit.yaml 的完整结构
type AppConfig struct {
	Log     clog.Config           `mapstructure:"log"`
	Metrics metrics.Config        `mapstructure:"metrics"`
	IDGen   idgen.Config          `mapstructure:"idgen"`
	NodeID  nodeid.Config         `mapstructure:"nodeid"`
	Redis   connector.RedisConfig `mapstructure:"redis"`
	Etcd    connector.EtcdConfig  `mapstructure:"etcd"`
}

// defaults 注册所有键，环境变量覆盖（SNOWKIT_NODEID_METHOD 等）依赖这里的键
var defaults = map[string]any{
	"log.level":  "info",
	"log.format": "console",
	"log.output": "stderr",

	"metrics.enabled":      false,
	"metrics.service_name": "snowkit",
	"metrics.version":      "dev",
	"metrics.port":         0,
	"metrics.path":         "/metrics",

	"idgen.clock_regression": idgen.RegressionWait.String(),
	"idgen.max_backwards_ms": idgen.DefaultMaxBackwards.Milliseconds(),
	"idgen.tiny_block_ms":    1000,

	"nodeid.method":     nodeid.MethodStatic,
	"nodeid.node_id":    0,
	"nodeid.key_prefix": "snowkit:nodeid",
	"nodeid.max_id":     1024,
	"nodeid.ttl":        "30s",

	"redis.addr":        "127.0.0.1:6379",
	"etcd.endpoints":    []string{"127.0.0.1:2379"},
	"etcd.dial_timeout": "5s",
}

// appOptions 命令行参数中影响启动的部分
type appOptions struct {
	configDir string
	logLevel  string
}

// app 串联配置、日志、指标与节点号，命令执行结束时调用 close
type app struct {
	cfg    *AppConfig
	loader config.Loader
	logger clog.Logger
	meter  metrics.Meter

	redis    connector.RedisConnector
	etcd     connector.EtcdConnector
	provider nodeid.Provider
}

func newApp(ctx context.Context, o appOptions) (*app, error) {
	opts := []config.Option{config.WithConfigName("snowkit"), config.WithLogger(clog.Discard())}
	if o.configDir != "" {
		opts = append(opts, config.WithConfigPaths(o.configDir))
	}
	opts = append(opts, config.WithDefaults(defaults))

	loader, err := config.New(nil, opts...)
	if err != nil {
		return nil, err
	}
	if err := loader.Load(ctx); err != nil {
		return nil, err
	}

	cfg := &AppConfig{}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, xerrors.Wrap(err, "unmarshal config")
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	logger, err := clog.New(&cfg.Log, clog.WithNamespace("snowkit"), clog.WithRunID())
	if err != nil {
		return nil, xerrors.Wrap(err, "create logger")
	}

	meter, err := metrics.New(&cfg.Metrics, metrics.WithLogger(logger))
	if err != nil {
		return nil, xerrors.Wrap(err, "create meter")
	}

	return &app{cfg: cfg, loader: loader, logger: logger, meter: meter}, nil
}

// acquireNodeID 按 nodeid 配置获取节点号；override 非空时强制使用 static
func (a *app) acquireNodeID(ctx context.Context, override *uint64) (uint64, error) {
	cfg := a.cfg.NodeID
	if override != nil {
		cfg.Method = nodeid.MethodStatic
		cfg.NodeID = *override
	}

	opts := []nodeid.Option{nodeid.WithLogger(a.logger), nodeid.WithMeter(a.meter)}
	switch cfg.Method {
	case nodeid.MethodRedis:
		conn, err := connector.NewRedis(&a.cfg.Redis, connector.WithLogger(a.logger), connector.WithMeter(a.meter))
		if err != nil {
			return 0, err
		}
		a.redis = conn
		if err := conn.Connect(ctx); err != nil {
			return 0, err
		}
		opts = append(opts, nodeid.WithRedisConnector(conn))
	case nodeid.MethodEtcd:
		conn, err := connector.NewEtcd(&a.cfg.Etcd, connector.WithLogger(a.logger), connector.WithMeter(a.meter))
		if err != nil {
			return 0, err
		}
		a.etcd = conn
		if err := conn.Connect(ctx); err != nil {
			return 0, err
		}
		opts = append(opts, nodeid.WithEtcdConnector(conn))
	}

	p, err := nodeid.New(&cfg, opts...)
	if err != nil {
		return 0, err
	}
	id, err := p.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	a.provider = p
	return id, nil
}

func (a *app) newGenerator(nodeID uint64) (*idgen.Generator, error) {
	cfg := a.cfg.IDGen
	cfg.NodeID = nodeID
	return idgen.NewFromConfig(&cfg, idgen.WithLogger(a.logger), idgen.WithMeter(a.meter))
}

// watchLogLevel 配置文件中的 log.level 变化时实时调整日志级别
func (a *app) watchLogLevel(ctx context.Context) {
	ch, err := a.loader.Watch(ctx, "log.level")
	if err != nil {
		a.logger.Warn("watch log level failed", clog.Error(err))
		return
	}
	go func() {
		for ev := range ch {
			level, err := clog.ParseLevel(fmt.Sprint(ev.Value))
			if err != nil {
				a.logger.WarnContext(ctx, "ignore invalid log level", clog.Any("value", ev.Value), clog.Error(err))
				continue
			}
			if err := a.logger.SetLevel(level); err == nil {
				a.logger.InfoContext(ctx, "log level changed", clog.String("level", level.String()))
			}
		}
	}()
}

func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs xerrors.Collector
	if a.provider != nil {
		errs.Collect(a.provider.Release(ctx))
	}
	if a.redis != nil {
		errs.Collect(a.redis.Close())
	}
	if a.etcd != nil {
		errs.Collect(a.etcd.Close())
	}
	errs.Collect(a.meter.Shutdown(ctx))
	a.logger.Flush()
	return errs.Err()
}

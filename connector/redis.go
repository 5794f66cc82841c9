package connector

import (
	"context"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/xerrors"
)

type redisConnector struct {
	*lifecycle
	cfg    RedisConfig
	client *redis.Client
}

// NewRedis 只构造客户端，Connect 时才探测连通性
func NewRedis(cfg *RedisConfig, opts ...Option) (RedisConnector, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrConfig, "redis_config_required")
	}
	c := *cfg
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	client := redis.NewClient(&redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		// 关闭维护通知握手
		MaintNotificationsConfig: &maintnotifications.Config{Mode: maintnotifications.ModeDisabled},
	})

	r := &redisConnector{lifecycle: newLifecycle("redis", c.Name, o), cfg: c, client: client}
	if o.instrument {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			r.logger.Warn("redis metrics instrumentation failed", clog.Error(err))
		}
	}
	return r, nil
}

func (r *redisConnector) ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *redisConnector) Connect(ctx context.Context) error {
	return r.connect(ctx, r.cfg.Addr, r.ping)
}

func (r *redisConnector) HealthCheck(ctx context.Context) error { return r.check(ctx, r.ping) }
func (r *redisConnector) Close() error                          { return r.close(r.client.Close) }
func (r *redisConnector) GetClient() *redis.Client              { return r.client }

package testkit

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/ceyewan/snowkit/connector"
)

// RedisAddrEnv 指定已有 Redis 实例的环境变量
const RedisAddrEnv = "SNOWKIT_TEST_REDIS_ADDR"

// NewRedisConfig 返回 Redis 测试配置。
// 设置了 SNOWKIT_TEST_REDIS_ADDR 时直接使用，否则启动 redis:7-alpine 容器，生命周期由 t.Cleanup 管理。
func NewRedisConfig(t *testing.T) *connector.RedisConfig {
	t.Helper()
	cfg := &connector.RedisConfig{
		Name:         "test-redis",
		DB:           1, // 使用 DB 1 避免与默认的 DB 0 冲突
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if addr := envOr(RedisAddrEnv, ""); addr != "" {
		cfg.Addr = addr
		return cfg
	}

	requireContainers(t)
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	cfg.Addr = net.JoinHostPort(host, port.Port())
	return cfg
}

// NewRedisConnector 创建并连接 Redis 连接器，生命周期由 t.Cleanup 管理
func NewRedisConnector(t *testing.T) connector.RedisConnector {
	t.Helper()
	cfg := NewRedisConfig(t)

	conn, err := connector.NewRedis(cfg, connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create redis connector")
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Connect(ctx), "failed to connect to redis")
	return conn
}

// NewRedisClient 返回原生 Redis 客户端
func NewRedisClient(t *testing.T) *redis.Client {
	return NewRedisConnector(t).GetClient()
}

// CleanupRedisKeys 在测试结束时删除匹配 pattern 的键
func CleanupRedisKeys(t *testing.T, client *redis.Client, pattern string) {
	t.Cleanup(func() {
		ctx := context.Background()
		iter := client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	})
}

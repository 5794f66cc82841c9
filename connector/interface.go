// Package connector 管理 nodeid 租约所用的 Redis 与 Etcd 客户端。
//
// New* 只构造客户端，Connect 探测连通性；Close 幂等。
// 借用连接器的组件（nodeid 的租约 Provider）不负责关闭它。
//
//	conn, err := connector.NewRedis(&connector.RedisConfig{Addr: "127.0.0.1:6379"},
//		connector.WithLogger(logger), connector.WithMeter(meter))
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//	if err := conn.Connect(ctx); err != nil {
//		return err
//	}
package connector

import (
	"context"

	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Connector 的方法都可以并发调用
type Connector interface {
	// Connect 失败时错误链包含 ErrConnection
	Connect(ctx context.Context) error
	Close() error
	// HealthCheck 同步探测并刷新 IsHealthy
	HealthCheck(ctx context.Context) error
	IsHealthy() bool
	Name() string
}

// TypedConnector 暴露底层客户端，Close 之后不可再用
type TypedConnector[T any] interface {
	Connector
	GetClient() T
}

type RedisConnector interface {
	TypedConnector[*redis.Client]
}

type EtcdConnector interface {
	TypedConnector[*clientv3.Client]
}

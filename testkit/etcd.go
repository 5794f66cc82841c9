package testkit

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tcetcd "github.com/testcontainers/testcontainers-go/modules/etcd"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/snowkit/connector"
)

// EtcdEndpointEnv 指定已有 Etcd 实例的环境变量
const EtcdEndpointEnv = "SNOWKIT_TEST_ETCD_ENDPOINT"

// NewEtcdConfig 返回 Etcd 测试配置。
// 设置了 SNOWKIT_TEST_ETCD_ENDPOINT 时直接使用，否则启动 etcd 容器，生命周期由 t.Cleanup 管理。
func NewEtcdConfig(t *testing.T) *connector.EtcdConfig {
	t.Helper()
	cfg := &connector.EtcdConfig{
		Name:        "test-etcd",
		DialTimeout: 5 * time.Second,
	}
	if endpoint := envOr(EtcdEndpointEnv, ""); endpoint != "" {
		cfg.Endpoints = []string{endpoint}
		return cfg
	}

	requireContainers(t)
	ctx := context.Background()
	container, err := tcetcd.Run(ctx, "quay.io/coreos/etcd:v3.5.9")
	require.NoError(t, err, "failed to start etcd container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "2379")
	require.NoError(t, err)

	cfg.Endpoints = []string{net.JoinHostPort(host, port.Port())}
	return cfg
}

// NewEtcdConnector 创建并连接 Etcd 连接器，生命周期由 t.Cleanup 管理
func NewEtcdConnector(t *testing.T) connector.EtcdConnector {
	t.Helper()
	cfg := NewEtcdConfig(t)

	conn, err := connector.NewEtcd(cfg, connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create etcd connector")
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Connect(ctx), "failed to connect to etcd")
	return conn
}

// NewEtcdClient 返回原生 Etcd 客户端
func NewEtcdClient(t *testing.T) *clientv3.Client {
	return NewEtcdConnector(t).GetClient()
}

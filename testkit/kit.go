// Package testkit 是 snowkit 测试共用的构造函数。
//
// Redis 与 Etcd 先看 SNOWKIT_TEST_REDIS_ADDR、SNOWKIT_TEST_ETCD_ENDPOINT，
// 未设置时用 testcontainers 启动容器；-short 或 Docker 不可用时跳过。
package testkit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/testcontainers/testcontainers-go"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/metrics"
)

type Kit struct {
	Ctx    context.Context
	Logger clog.Logger
	Meter  metrics.Meter
}

// NewKit Ctx 随测试结束取消，Meter 随测试结束关闭
func NewKit(t *testing.T) *Kit {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	meter := NewMeter()
	t.Cleanup(func() {
		cancel()
		_ = meter.Shutdown(context.Background())
	})
	return &Kit{Ctx: ctx, Logger: NewLogger(), Meter: meter}
}

// NewLogger 输出到 stdout，debug 级别并带调用位置，go test -v 时可见
func NewLogger() clog.Logger {
	l, err := clog.New(clog.NewDevDefaultConfig("snowkit"), clog.WithNamespace("test"))
	if err != nil {
		return clog.Discard()
	}
	return l
}

// NewMeter 每次使用新的 Registry，不监听端口，配合 Scrape 读取
func NewMeter() metrics.Meter {
	m, err := metrics.New(metrics.NewDevDefaultConfig("snowkit-test"),
		metrics.WithRegistry(promclient.NewRegistry()),
		metrics.WithLogger(clog.Discard()),
	)
	if err != nil {
		return metrics.Discard()
	}
	return m
}

// Scrape 以 Prometheus 文本格式返回 meter 当前的全部指标
func Scrape(t *testing.T, meter metrics.Meter) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler(meter).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape metrics: status %d", rec.Code)
	}
	return rec.Body.String()
}

func NewContext(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// NewID 8 位随机串，用作键前缀隔离并发测试
func NewID() string {
	return uuid.NewString()[:8]
}

func requireContainers(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("container test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

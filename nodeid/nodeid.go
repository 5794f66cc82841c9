// Package nodeid 为 idgen 生成器提供节点号。
//
// 生成器核心不依赖本包，调用方先通过 Provider 拿到节点号，再用它创建生成器：
//
//	p, _ := nodeid.New(&nodeid.Config{Method: "redis", MaxID: 1024},
//	    nodeid.WithRedisConnector(redisConn))
//	id, _ := p.Acquire(ctx)
//	defer p.Release(context.Background())
//
//	go func() {
//	    if err := <-p.KeepAlive(ctx); err != nil {
//	        // 租约丢失，节点号可能已被其他实例占用，应停止生成
//	    }
//	}()
//
//	gen, _ := idgen.New(id)
//
// static/mac/ip 三种方式是本地计算，KeepAlive 返回的通道永远不会收到错误；
// redis/etcd 方式在 [0, MaxID) 中抢占一个槽位并按 TTL 续约。
package nodeid

import (
	"context"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/xerrors"
)

// Provider 节点号提供者
type Provider interface {
	// Acquire 获取节点号。租约型实现会阻塞直到抢占成功或失败。
	Acquire(ctx context.Context) (uint64, error)

	// KeepAlive 后台续约，续约失败时向通道发送一个错误。ctx 取消或 Release 后停止。
	KeepAlive(ctx context.Context) <-chan error

	// Release 停止续约并释放占用的槽位，可重复调用。Release 之后 KeepAlive 立即退出。
	Release(ctx context.Context) error
}

// 支持的获取方式
const (
	MethodStatic = "static"
	MethodMAC    = "mac"
	MethodIP     = "ip"
	MethodRedis  = "redis"
	MethodEtcd   = "etcd"
)

// New 按 cfg.Method 创建 Provider
func New(cfg *Config, opts ...Option) (Provider, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrInvalidInput, "config_nil")
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	logger := o.logger.With(clog.String("method", cfg.Method))

	switch cfg.Method {
	case MethodStatic:
		return &staticProvider{id: cfg.NodeID}, nil
	case MethodMAC:
		return &localProvider{name: MethodMAC, resolve: macNodeID, logger: logger}, nil
	case MethodIP:
		return &localProvider{name: MethodIP, resolve: ipNodeID, logger: logger}, nil
	case MethodRedis:
		if o.redis == nil {
			return nil, xerrors.WithCode(ErrConnectorNil, "redis_connector_required")
		}
		return newRedisProvider(cfg, o.redis, o, logger), nil
	case MethodEtcd:
		if o.etcd == nil {
			return nil, xerrors.WithCode(ErrConnectorNil, "etcd_connector_required")
		}
		return newEtcdProvider(cfg, o.etcd, o, logger), nil
	}
	return nil, xerrors.WithCode(ErrInvalidInput, "unsupported_method")
}

// idle 本地方式的 KeepAlive：ctx 结束时关闭
func idle(ctx context.Context) <-chan error {
	ch := make(chan error)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

package connector

import (
	"context"
	"strings"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/snowkit/xerrors"
)

type etcdConnector struct {
	*lifecycle
	cfg    EtcdConfig
	client *clientv3.Client
}

// NewEtcd clientv3.New 不阻塞，连通性在 Connect 中用 Status 请求探测
func NewEtcd(cfg *EtcdConfig, opts ...Option) (EtcdConnector, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrConfig, "etcd_config_required")
	}
	c := *cfg
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:            c.Endpoints,
		Username:             c.Username,
		Password:             c.Password,
		DialTimeout:          c.DialTimeout,
		DialKeepAliveTime:    c.KeepAliveTime,
		DialKeepAliveTimeout: c.KeepAliveTimeout,
	})
	if err != nil {
		return nil, xerrors.Wrapf(xerrors.Combine(ErrConnection, err), "etcd connector[%s]", c.Name)
	}
	return &etcdConnector{lifecycle: newLifecycle("etcd", c.Name, applyOptions(opts)), cfg: c, client: client}, nil
}

func (e *etcdConnector) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.DialTimeout)
	defer cancel()
	_, err := e.client.Status(ctx, e.cfg.Endpoints[0])
	return err
}

func (e *etcdConnector) Connect(ctx context.Context) error {
	return e.connect(ctx, strings.Join(e.cfg.Endpoints, ","), e.ping)
}

func (e *etcdConnector) HealthCheck(ctx context.Context) error { return e.check(ctx, e.ping) }
func (e *etcdConnector) Close() error                          { return e.close(e.client.Close) }
func (e *etcdConnector) GetClient() *clientv3.Client           { return e.client }

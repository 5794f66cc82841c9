package nodeid

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/connector"
	"github.com/ceyewan/snowkit/xerrors"
)

// etcdProvider 以绑定 lease 的键 <prefix>:<id> 作为租约，Revoke 后键自动删除
type etcdProvider struct {
	client *clientv3.Client
	cfg    *Config
	logger clog.Logger
	stats  *leaseStats
	owner  string

	mu      sync.Mutex
	id      uint64
	key     string
	leaseID clientv3.LeaseID
	stopCh  chan struct{}
	once    sync.Once
}

func newEtcdProvider(cfg *Config, conn connector.EtcdConnector, o *options, logger clog.Logger) *etcdProvider {
	return &etcdProvider{
		client: conn.GetClient(),
		cfg:    cfg,
		logger: logger,
		stats:  newLeaseStats(o.meter, MethodEtcd),
		owner:  uuid.NewString(),
		stopCh: make(chan struct{}),
	}
}

func (p *etcdProvider) Acquire(ctx context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.leaseID != 0 {
		return p.id, nil
	}

	lease, err := p.client.Grant(ctx, p.cfg.ttlSeconds())
	if err != nil {
		p.logger.Error("etcd grant lease failed", clog.Error(err))
		return 0, xerrors.Wrap(err, "nodeid: etcd grant")
	}

	offset := rand.IntN(p.cfg.MaxID)
	for i := 0; i < p.cfg.MaxID; i++ {
		id := (offset + i) % p.cfg.MaxID
		key := fmt.Sprintf("%s:%d", p.cfg.KeyPrefix, id)

		// ModRevision == 0 表示键不存在
		resp, err := p.client.Txn(ctx).
			If(clientv3.Compare(clientv3.ModRevision(key), "=", 0)).
			Then(clientv3.OpPut(key, p.owner, clientv3.WithLease(lease.ID))).
			Commit()
		if err != nil {
			p.revoke(lease.ID)
			p.logger.Error("etcd txn failed", clog.Error(err), clog.String("key", key))
			return 0, xerrors.Wrap(err, "nodeid: etcd txn")
		}
		if !resp.Succeeded {
			continue
		}

		p.id = uint64(id)
		p.key = key
		p.leaseID = lease.ID
		p.stats.onAcquire(ctx)
		p.logger.Info("node id acquired",
			clog.NodeID(uint64(id)),
			clog.String("key", key),
			clog.Int64("lease_id", int64(lease.ID)),
		)
		return p.id, nil
	}

	p.revoke(lease.ID)
	return 0, xerrors.WithCode(ErrExhausted, "no_available_node_id")
}

func (p *etcdProvider) KeepAlive(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)

	p.mu.Lock()
	leaseID := p.leaseID
	p.mu.Unlock()
	if leaseID == 0 {
		errCh <- ErrNotAcquired
		return errCh
	}

	// Release 时取消续约
	kaCtx, cancel := context.WithCancel(ctx)
	kaCh, err := p.client.KeepAlive(kaCtx, leaseID)
	if err != nil {
		cancel()
		p.logger.Error("etcd keep alive failed", clog.Error(err), clog.Int64("lease_id", int64(leaseID)))
		errCh <- xerrors.Wrap(err, "nodeid: etcd keep alive")
		return errCh
	}

	go func() {
		defer cancel()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case ka, ok := <-kaCh:
				if ok && ka != nil {
					p.stats.onRenew(ctx)
					continue
				}
				select {
				case <-p.stopCh:
					return
				case <-ctx.Done():
					return
				default:
				}
				p.stats.onLost(ctx)
				p.logger.Error("lease expired", clog.Int64("lease_id", int64(leaseID)))
				errCh <- xerrors.WithCode(ErrLeaseLost, "lease_expired")
				return
			}
		}
	}()

	return errCh
}

func (p *etcdProvider) Release(ctx context.Context) error {
	p.once.Do(func() { close(p.stopCh) })

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.leaseID == 0 {
		return nil
	}

	leaseID := p.leaseID
	p.leaseID = 0
	if _, err := p.client.Revoke(ctx, leaseID); err != nil {
		p.logger.Warn("etcd revoke lease failed", clog.Error(err), clog.Int64("lease_id", int64(leaseID)))
		return xerrors.Wrap(err, "nodeid: etcd revoke")
	}
	p.logger.Info("node id released", clog.NodeID(p.id), clog.String("key", p.key))
	return nil
}

func (p *etcdProvider) revoke(id clientv3.LeaseID) {
	if _, err := p.client.Revoke(context.Background(), id); err != nil {
		p.logger.Warn("etcd revoke lease failed during cleanup", clog.Error(err))
	}
}

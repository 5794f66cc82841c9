package nodeid

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/connector"
	"github.com/ceyewan/snowkit/xerrors"
)

// 从 offset 开始环形遍历 [0, max_id)，用 SET NX EX 原子抢占第一个空闲槽位
var acquireScript = redis.NewScript(`
local prefix = KEYS[1]
local owner = ARGV[1]
local ttl = tonumber(ARGV[2])
local max_id = tonumber(ARGV[3])
local offset = tonumber(ARGV[4])

for i = 0, max_id - 1 do
	local id = (offset + i) % max_id
	if redis.call("SET", prefix .. ":" .. id, owner, "NX", "EX", ttl) then
		return id
	end
end
return -1
`)

// 仅当槽位仍属于自己时续期
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("EXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// 仅当槽位仍属于自己时删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisProvider 以 Redis 键 <prefix>:<id> 作为租约
type redisProvider struct {
	redis  connector.RedisConnector
	cfg    *Config
	logger clog.Logger
	stats  *leaseStats
	owner  string

	mu     sync.Mutex
	id     uint64
	key    string
	stopCh chan struct{}
	once   sync.Once
}

func newRedisProvider(cfg *Config, conn connector.RedisConnector, o *options, logger clog.Logger) *redisProvider {
	return &redisProvider{
		redis:  conn,
		cfg:    cfg,
		logger: logger,
		stats:  newLeaseStats(o.meter, MethodRedis),
		owner:  uuid.NewString(),
		stopCh: make(chan struct{}),
	}
}

func (p *redisProvider) Acquire(ctx context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.key != "" {
		return p.id, nil
	}

	// 随机起点，减少并发冲突
	offset := rand.IntN(p.cfg.MaxID)
	res, err := acquireScript.Run(ctx, p.redis.GetClient(), []string{p.cfg.KeyPrefix},
		p.owner, p.cfg.ttlSeconds(), p.cfg.MaxID, offset).Int64()
	if err != nil {
		p.logger.Error("redis acquire failed", clog.Error(err), clog.String("key_prefix", p.cfg.KeyPrefix))
		return 0, xerrors.Wrap(err, "nodeid: redis acquire")
	}
	if res < 0 {
		return 0, xerrors.WithCode(ErrExhausted, "no_available_node_id")
	}

	p.id = uint64(res)
	p.key = fmt.Sprintf("%s:%d", p.cfg.KeyPrefix, res)
	p.stats.onAcquire(ctx)
	p.logger.Info("node id acquired",
		clog.NodeID(uint64(res)),
		clog.String("key", p.key),
		clog.String("owner", p.owner),
	)
	return p.id, nil
}

func (p *redisProvider) KeepAlive(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)

	p.mu.Lock()
	key := p.key
	p.mu.Unlock()
	if key == "" {
		errCh <- ErrNotAcquired
		return errCh
	}

	go func() {
		ticker := time.NewTicker(p.cfg.TTL / 3)
		defer ticker.Stop()
		client := p.redis.GetClient()

		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				ok, err := renewScript.Run(ctx, client, []string{key}, p.owner, p.cfg.ttlSeconds()).Int64()
				if err == nil && ok == 1 {
					p.stats.onRenew(ctx)
					continue
				}
				if err == nil {
					p.stats.onLost(ctx)
					err = xerrors.WithCode(ErrLeaseLost, "lease_lost")
				} else {
					err = xerrors.Wrap(err, "nodeid: redis renew")
				}
				p.logger.Error("keep alive failed", clog.Error(err), clog.String("key", key))
				errCh <- err
				return
			}
		}
	}()

	return errCh
}

func (p *redisProvider) Release(ctx context.Context) error {
	p.once.Do(func() { close(p.stopCh) })

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.key == "" {
		return nil
	}

	key := p.key
	p.key = ""
	if err := releaseScript.Run(ctx, p.redis.GetClient(), []string{key}, p.owner).Err(); err != nil {
		p.logger.Warn("release node id failed", clog.Error(err), clog.String("key", key))
		return xerrors.Wrap(err, "nodeid: redis release")
	}
	p.logger.Info("node id released", clog.NodeID(p.id), clog.String("key", key))
	return nil
}

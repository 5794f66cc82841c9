package nodeid

import (
	"context"

	"github.com/ceyewan/snowkit/metrics"
)

const (
	MetricLeaseAcquired = "nodeid_lease_acquired_total"
	MetricLeaseRenewals = "nodeid_lease_renewals_total"
	MetricLeaseLost     = "nodeid_lease_lost_total"
)

// leaseStats 只用于 redis 与 etcd 方式，标签 method 区分两者
type leaseStats struct {
	acquired metrics.Counter
	renewals metrics.Counter
	lost     metrics.Counter
	method   metrics.Label
}

func newLeaseStats(m metrics.Meter, method string) *leaseStats {
	return &leaseStats{
		acquired: counterOrDiscard(m, MetricLeaseAcquired, "Node id leases acquired"),
		renewals: counterOrDiscard(m, MetricLeaseRenewals, "Successful node id lease renewals"),
		lost:     counterOrDiscard(m, MetricLeaseLost, "Node id leases lost or expired"),
		method:   metrics.L("method", method),
	}
}

func counterOrDiscard(m metrics.Meter, name, desc string) metrics.Counter {
	c, err := m.Counter(name, desc)
	if err != nil {
		c, _ = metrics.Discard().Counter(name, desc)
	}
	return c
}

func (s *leaseStats) onAcquire(ctx context.Context) { s.acquired.Inc(ctx, s.method) }
func (s *leaseStats) onRenew(ctx context.Context)   { s.renewals.Inc(ctx, s.method) }
func (s *leaseStats) onLost(ctx context.Context)    { s.lost.Inc(ctx, s.method) }

package idgen

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ceyewan/snowkit/clog"
)

// t0 是测试使用的固定时间点：2023-11-14T22:13:20.123Z
const t0 int64 = 1700000000123

// fakeClock 手动推进的时钟，同时记录 sleep/yield 次数
type fakeClock struct {
	ms     atomic.Int64
	sleeps atomic.Int64
	yields atomic.Int64
}

func newFakeClock(ms int64) *fakeClock {
	c := &fakeClock{}
	c.ms.Store(ms)
	return c
}

func (c *fakeClock) NowMs() int64    { return c.ms.Load() }
func (c *fakeClock) Set(ms int64)    { c.ms.Store(ms) }
func (c *fakeClock) Advance(d int64) { c.ms.Add(d) }
func (c *fakeClock) Sleeps() int64   { return c.sleeps.Load() }
func (c *fakeClock) Yields() int64   { return c.yields.Load() }

func (c *fakeClock) sleep(d time.Duration) {
	c.sleeps.Add(1)
	c.Advance(d.Milliseconds())
}

func (c *fakeClock) yield() {
	c.yields.Add(1)
	c.Advance(1)
}

// fakeOptions 让等待推进假时钟而不是真实睡眠
func (c *fakeClock) options() []Option {
	return []Option{
		WithClock(c),
		WithSleeper(c.sleep),
		WithYield(c.yield),
	}
}

func newTestGenerator(t testing.TB, nodeID uint64, opts ...Option) *Generator {
	t.Helper()
	opts = append([]Option{WithLogger(clog.Discard())}, opts...)
	g, err := New(nodeID, opts...)
	require.NoError(t, err)
	return g
}

func newFakeGenerator(t testing.TB, nodeID uint64, clock *fakeClock, opts ...Option) *Generator {
	t.Helper()
	return newTestGenerator(t, nodeID, append(clock.options(), opts...)...)
}

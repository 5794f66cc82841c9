package idgen

import (
	"runtime"
	"time"
)

// Clock 提供 Unix 毫秒时间
type Clock interface {
	NowMs() int64
}

// SystemClock 读取系统时钟
type SystemClock struct{}

func (SystemClock) NowMs() int64 {
	return time.Now().UnixMilli()
}

// ClockFunc 将普通函数适配为 Clock
type ClockFunc func() int64

func (f ClockFunc) NowMs() int64 {
	return f()
}

const maxPollInterval = 100 * time.Millisecond

// Gate 阻塞调用方直到时钟越过指定 tick。
//
// 毫秒级 tick 通过 yield 自旋，粗粒度 tick 以 min(100ms, tick/10) 的间隔睡眠轮询。
// 没有超时和取消：时钟停滞时调用方会一直阻塞。
type Gate struct {
	clock Clock
	sleep func(time.Duration)
	yield func()
}

// NewGate 创建 Gate，sleep 和 yield 为 nil 时分别使用 time.Sleep 和 runtime.Gosched
func NewGate(clock Clock, sleep func(time.Duration), yield func()) *Gate {
	if clock == nil {
		clock = SystemClock{}
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	if yield == nil {
		yield = runtime.Gosched
	}
	return &Gate{clock: clock, sleep: sleep, yield: yield}
}

// WaitForNextTick 等待时钟进入 tick 之后的下一个 tick，返回新的 tick
func (g *Gate) WaitForNextTick(tick, tickMs int64) int64 {
	return g.WaitUntil(tick+1, tickMs)
}

// WaitUntil 等待当前 tick 不小于 target，返回到达时的 tick
func (g *Gate) WaitUntil(target, tickMs int64) int64 {
	interval := pollInterval(tickMs)
	for {
		cur := g.clock.NowMs() / tickMs
		if cur >= target {
			return cur
		}
		if tickMs <= 1 {
			g.yield()
		} else {
			g.sleep(interval)
		}
	}
}

func pollInterval(tickMs int64) time.Duration {
	d := time.Duration(tickMs) * time.Millisecond / 10
	if d > maxPollInterval {
		return maxPollInterval
	}
	if d < time.Millisecond {
		return time.Millisecond
	}
	return d
}

// Package idgen 提供节点本地的雪花 ID 生成器。
//
// 一个 Generator 对应一个节点号，内部为五种方案（tiny、mini、48、64、128）各维护一份
// (lastTick, sequence) 状态，每个方案一把互斥锁：同一方案的调用串行化，不同方案互不影响。
// 节点号的全局唯一性由调用方保证（见 nodeid 包）。
//
// 基本使用：
//
//	gen, err := idgen.New(5, idgen.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	id, err := gen.Generate64()
//	ts := idgen.ExtractTimestamp64(id)
//
// 多节点场景使用 Registry：
//
//	reg := idgen.NewRegistry(idgen.WithLogger(logger))
//	defer reg.Close()
//	gen, _ := reg.Get(5)
package idgen

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/xerrors"
)

// sequenceState 单个方案的可变状态，只在 mu 保护下修改
type sequenceState struct {
	mu       sync.Mutex
	lastTick int64
	sequence int64
}

// Generator 单个节点号的 ID 生成器，可安全并发使用
type Generator struct {
	nodeID    uint64
	layouts   [schemeCount]Layout
	templates [schemeCount]uint64
	states    [schemeCount]sequenceState

	clock        Clock
	gate         *Gate
	policy       RegressionPolicy
	maxBackwards int64 // 毫秒

	logger   clog.Logger
	metrics  *generatorMetrics
	disposed atomic.Bool
}

// New 创建节点号为 nodeID 的生成器。
//
// nodeID 超出某个方案的节点位宽时会被截断，不同节点号截断后冲突不会被检测。
func New(nodeID uint64, opts ...Option) (*Generator, error) {
	o := applyOptions(opts)

	if o.tinyBlock < time.Millisecond {
		return nil, xerrors.Codef(ErrInvalidInput, "tiny_block_too_small", "block %v", o.tinyBlock)
	}
	if o.maxBackwards < 0 {
		return nil, xerrors.WithCode(ErrInvalidInput, "max_backwards_negative")
	}
	if o.policy < RegressionWait || o.policy > RegressionAccept {
		return nil, xerrors.WithCode(ErrInvalidInput, "unknown_regression_policy")
	}

	g := &Generator{
		nodeID:       nodeID,
		layouts:      defaultLayouts,
		clock:        o.clock,
		gate:         NewGate(o.clock, o.sleep, o.yield),
		policy:       o.policy,
		maxBackwards: o.maxBackwards.Milliseconds(),
		logger:       o.logger.With(clog.String("component", "idgen"), clog.NodeID(nodeID)),
	}
	g.metrics = newGeneratorMetrics(o.meter, g.logger)

	tiny, err := TinyLayout(o.tinyBlock.Milliseconds())
	if err != nil {
		return nil, err
	}
	if now := o.clock.NowMs(); now/tiny.TickMs > tiny.maxTick() {
		return nil, xerrors.Codef(ErrInvalidInput, "tiny_block_too_small",
			"block %dms overflows the tiny timestamp field, need at least %dms", tiny.TickMs, MinTinyBlock(now))
	}
	g.layouts[SchemeTiny] = tiny

	for s := Scheme(0); s < schemeCount; s++ {
		g.templates[s] = g.layouts[s].template(nodeID)
	}

	g.logger.Info("id generator created",
		clog.String("regression_policy", o.policy.String()),
		clog.Int64("tiny_block_ms", tiny.TickMs),
	)
	return g, nil
}

// NodeID 返回创建时传入的原始节点号
func (g *Generator) NodeID() uint64 {
	return g.nodeID
}

// Layout 返回生成器使用的布局（tiny 可能是自定义块大小）
func (g *Generator) Layout(s Scheme) Layout {
	if !s.valid() {
		return Layout{}
	}
	return g.layouts[s]
}

// next 在方案锁内推进状态，返回本次使用的 tick 和序列号
func (g *Generator) next(s Scheme) (int64, int64, error) {
	l := &g.layouts[s]
	st := &g.states[s]

	st.mu.Lock()
	defer st.mu.Unlock()

	for {
		tick := g.clock.NowMs() / l.TickMs
		if tick > l.maxTick() {
			return 0, 0, xerrors.Codef(ErrTimestampOverflow, "timestamp_overflow", "scheme %s tick %d", s, tick)
		}

		switch {
		case tick == st.lastTick:
			st.sequence++
			if st.sequence > l.MaxSequence {
				// 保持满序列：等待后时钟若仍读到 lastTick，会再次进入这里而不是复用序列号
				st.sequence = l.MaxSequence
				g.metrics.recordExhausted(s)
				g.logger.Debug("sequence exhausted, waiting for next tick",
					clog.Scheme(s.String()), clog.Int64("tick", tick))
				g.wait(s, func() { g.gate.WaitForNextTick(tick, l.TickMs) })
				continue
			}

		case tick > st.lastTick:
			st.sequence = 0
			st.lastTick = tick

		default:
			retry, err := g.regressed(s, st, tick)
			if err != nil {
				return 0, 0, err
			}
			if retry {
				continue
			}
		}

		g.metrics.recordGenerated(s)
		return st.lastTick, st.sequence, nil
	}
}

// regressed 按回拨策略处理 tick < lastTick。retry 为 true 时调用方应重新读取时钟。
func (g *Generator) regressed(s Scheme, st *sequenceState, tick int64) (bool, error) {
	l := &g.layouts[s]
	driftMs := (st.lastTick - tick) * l.TickMs
	g.metrics.recordRegression(s, g.policy)

	fields := []clog.Field{
		clog.Scheme(s.String()),
		clog.String("policy", g.policy.String()),
		clog.Int64("drift_ms", driftMs),
	}

	switch g.policy {
	case RegressionAccept:
		g.logger.Warn("clock moved backwards, accepting new tick", fields...)
		st.sequence = 0
		st.lastTick = tick
		return false, nil

	case RegressionWait:
		if driftMs <= g.maxBackwards {
			g.logger.Warn("clock moved backwards, waiting for it to catch up", fields...)
			g.wait(s, func() { g.gate.WaitUntil(st.lastTick, l.TickMs) })
			return true, nil
		}
	}

	g.logger.Error("clock moved backwards, rejecting", fields...)
	return false, xerrors.Codef(ErrClockRegressed, "clock_regressed",
		"scheme %s drift: %dms (max: %dms)", s, driftMs, g.maxBackwards)
}

func (g *Generator) wait(s Scheme, fn func()) {
	start := g.clock.NowMs()
	fn()
	g.metrics.recordWait(s, g.clock.NowMs()-start)
}

// Generate 生成 tiny/mini/48/64 方案的 ID，Scheme128 请使用 Generate128
func (g *Generator) Generate(s Scheme) (uint64, error) {
	if !s.valid() || s == Scheme128 {
		return 0, xerrors.Codef(ErrInvalidInput, "unsupported_scheme", "scheme %s", s)
	}
	tick, seq, err := g.next(s)
	if err != nil {
		return 0, err
	}
	return g.layouts[s].pack(tick, g.templates[s], seq), nil
}

// Generate128 生成 128 位 ID
func (g *Generator) Generate128() (ID128, error) {
	tick, seq, err := g.next(Scheme128)
	if err != nil {
		return ID128{}, err
	}
	return g.layouts[Scheme128].pack128(tick, g.templates[Scheme128], seq), nil
}

// GenerateHex 生成 ID 并编码为小写十六进制
func (g *Generator) GenerateHex(s Scheme) (string, error) {
	if s == Scheme128 {
		id, err := g.Generate128()
		if err != nil {
			return "", err
		}
		return id.Hex(), nil
	}
	id, err := g.Generate(s)
	if err != nil {
		return "", err
	}
	return FormatHex(id), nil
}

// GenerateAscii 生成 ID 并编码为 36 进制
func (g *Generator) GenerateAscii(s Scheme) (string, error) {
	if s == Scheme128 {
		id, err := g.Generate128()
		if err != nil {
			return "", err
		}
		return id.Ascii(), nil
	}
	id, err := g.Generate(s)
	if err != nil {
		return "", err
	}
	return FormatAscii(id), nil
}

func (g *Generator) GenerateTiny() (uint64, error) { return g.Generate(SchemeTiny) }
func (g *Generator) GenerateMini() (uint64, error) { return g.Generate(SchemeMini) }
func (g *Generator) Generate48() (uint64, error)   { return g.Generate(Scheme48) }
func (g *Generator) Generate64() (uint64, error)   { return g.Generate(Scheme64) }

func (g *Generator) GenerateTinyHex() (string, error) { return g.GenerateHex(SchemeTiny) }
func (g *Generator) GenerateMiniHex() (string, error) { return g.GenerateHex(SchemeMini) }
func (g *Generator) Generate48Hex() (string, error)   { return g.GenerateHex(Scheme48) }
func (g *Generator) Generate64Hex() (string, error)   { return g.GenerateHex(Scheme64) }
func (g *Generator) Generate128Hex() (string, error)  { return g.GenerateHex(Scheme128) }

func (g *Generator) GenerateTinyAscii() (string, error) { return g.GenerateAscii(SchemeTiny) }
func (g *Generator) GenerateMiniAscii() (string, error) { return g.GenerateAscii(SchemeMini) }
func (g *Generator) Generate48Ascii() (string, error)   { return g.GenerateAscii(Scheme48) }
func (g *Generator) Generate64Ascii() (string, error)   { return g.GenerateAscii(Scheme64) }
func (g *Generator) Generate128Ascii() (string, error)  { return g.GenerateAscii(Scheme128) }

// ExtractTimestamp 使用生成器自身的布局还原时间戳
func (g *Generator) ExtractTimestamp(s Scheme, id uint64) int64 {
	l := g.Layout(s)
	return l.ExtractTimestamp(id)
}

// ExtractTimestamp128 还原 128 位 ID 的时间戳
func (g *Generator) ExtractTimestamp128(id ID128) int64 {
	return g.layouts[Scheme128].ExtractTimestamp128(id)
}

// ExtractTimestampHex 解析十六进制 ID 并还原时间戳
func (g *Generator) ExtractTimestampHex(s Scheme, str string) (int64, error) {
	return extractFromString(g.Layout(s), str, ParseHex, ParseHex128)
}

// ExtractTimestampAscii 解析 36 进制 ID 并还原时间戳
func (g *Generator) ExtractTimestampAscii(s Scheme, str string) (int64, error) {
	return extractFromString(g.Layout(s), str, ParseAscii, ParseAscii128)
}

// ExtractTimestampTiny 按生成器的 tiny 块大小还原时间戳
func (g *Generator) ExtractTimestampTiny(id uint64) int64 {
	return g.layouts[SchemeTiny].ExtractTimestamp(id)
}

// Decode 使用生成器自身的布局拆分 ID
func (g *Generator) Decode(s Scheme, id uint64) Parts {
	l := g.Layout(s)
	return l.Decode(id)
}

// dispose 生成器不持有外部资源，这里只做标记和日志
func (g *Generator) dispose() {
	if g.disposed.CompareAndSwap(false, true) {
		g.logger.Info("id generator disposed")
	}
}

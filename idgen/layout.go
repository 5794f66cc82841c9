package idgen

import (
	"math"
	"strings"

	"github.com/ceyewan/snowkit/xerrors"
)

// Scheme 标识一种位布局
type Scheme int

const (
	// SchemeTiny 32 位秒级时间戳 + 16 位序列号，无节点位，共 48 位
	SchemeTiny Scheme = iota
	// SchemeMini 41 位毫秒时间戳 + 7 位序列号，无节点位，共 48 位
	SchemeMini
	// Scheme48 32 位秒级时间戳 + 3 位节点 + 13 位序列号
	Scheme48
	// Scheme64 41 位毫秒时间戳 + 10 位节点 + 13 位序列号
	Scheme64
	// Scheme128 64 位毫秒时间戳 + 48 位节点 + 16 位序列号
	Scheme128

	schemeCount
)

var schemeNames = [schemeCount]string{"tiny", "mini", "48", "64", "128"}

func (s Scheme) String() string {
	if !s.valid() {
		return "unknown"
	}
	return schemeNames[s]
}

func (s Scheme) valid() bool {
	return s >= 0 && s < schemeCount
}

// ParseScheme 解析 tiny|mini|48|64|128，不区分大小写
func ParseScheme(name string) (Scheme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range schemeNames {
		if n == name {
			return Scheme(i), nil
		}
	}
	return 0, xerrors.Codef(ErrInvalidInput, "unknown_scheme", "scheme %q", name)
}

// Schemes 返回所有方案，按位宽从小到大
func Schemes() []Scheme {
	return []Scheme{SchemeTiny, SchemeMini, Scheme48, Scheme64, Scheme128}
}

// 各方案的纪元（Unix 毫秒）
const (
	EpochTiny int64 = 1483228800000 // 2017-01-01T00:00:00Z
	EpochMini int64 = 1456790400000 // 2016-03-01T00:00:00Z
	Epoch48   int64 = 1330560000000 // 2012-03-01T00:00:00Z
	Epoch64   int64 = 1330560000000 // 2012-03-01T00:00:00Z
	Epoch128  int64 = 0
)

// Layout 描述一个方案的全部常量。
//
// 对 Scheme128，TimestampShift 以 128 位整体计，时间戳字段恰好占据 ID128.Hi，
// NodeShift 与序列号位于 ID128.Lo。
type Layout struct {
	Scheme Scheme
	Epoch  int64 // 毫秒
	TickMs int64 // 1 为毫秒，1000 为秒，或自定义块大小

	TimestampBits uint
	NodeBits      uint
	SequenceBits  uint
	Width         uint

	TimestampShift uint
	NodeShift      uint

	TimestampMask uint64
	NodeMask      uint64
	SequenceMask  uint64
	MaxSequence   int64
}

func newLayout(s Scheme, epoch, tickMs int64, tsBits, nodeBits, seqBits uint) Layout {
	return Layout{
		Scheme:         s,
		Epoch:          epoch,
		TickMs:         tickMs,
		TimestampBits:  tsBits,
		NodeBits:       nodeBits,
		SequenceBits:   seqBits,
		Width:          tsBits + nodeBits + seqBits,
		TimestampShift: nodeBits + seqBits,
		NodeShift:      seqBits,
		TimestampMask:  mask(tsBits),
		NodeMask:       mask(nodeBits),
		SequenceMask:   mask(seqBits),
		MaxSequence:    int64(mask(seqBits)),
	}
}

func mask(bits uint) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<bits - 1
}

var defaultLayouts = [schemeCount]Layout{
	SchemeTiny: newLayout(SchemeTiny, EpochTiny, 1000, 32, 0, 16),
	SchemeMini: newLayout(SchemeMini, EpochMini, 1, 41, 0, 7),
	Scheme48:   newLayout(Scheme48, Epoch48, 1000, 32, 3, 13),
	Scheme64:   newLayout(Scheme64, Epoch64, 1, 41, 10, 13),
	Scheme128:  newLayout(Scheme128, Epoch128, 1, 64, 48, 16),
}

// LayoutOf 返回方案的默认布局，未知方案返回零值
func LayoutOf(s Scheme) Layout {
	if !s.valid() {
		return Layout{}
	}
	return defaultLayouts[s]
}

// TinyLayout 以自定义块大小构造 tiny 布局，blockMs 至少为 1。
// 时间戳字段只有 32 位，块越小可表示的时间越短，生成器创建时会用当前时间再校验一次，
// 见 MinTinyBlock。
func TinyLayout(blockMs int64) (Layout, error) {
	if blockMs < 1 {
		return Layout{}, xerrors.Codef(ErrInvalidInput, "tiny_block_too_small", "block %dms", blockMs)
	}
	l := defaultLayouts[SchemeTiny]
	l.TickMs = blockMs
	return l, nil
}

// MinTinyBlock 返回 nowMs 时刻 tiny 时间戳字段不溢出所需的最小块大小（毫秒）
func MinTinyBlock(nowMs int64) int64 {
	l := &defaultLayouts[SchemeTiny]
	span := nowMs - l.Epoch
	if span < 0 {
		return 1
	}
	return span/(int64(l.TimestampMask)+1) + 1
}

// maxTick 时间戳字段能表示的最后一个 tick
func (l *Layout) maxTick() int64 {
	if l.TimestampBits >= 63 {
		return math.MaxInt64
	}
	return l.epochTick() + int64(l.TimestampMask)
}

// epochTick 纪元所在的 tick
func (l *Layout) epochTick() int64 {
	return l.Epoch / l.TickMs
}

// template 将节点号截断并移位到节点字段
func (l *Layout) template(nodeID uint64) uint64 {
	return (nodeID & l.NodeMask) << l.NodeShift
}

// pack 组装 48/64 位方案的 ID
func (l *Layout) pack(tick int64, template uint64, seq int64) uint64 {
	ts := uint64(tick-l.epochTick()) & l.TimestampMask
	return ts<<l.TimestampShift | template | uint64(seq)&l.SequenceMask
}

// pack128 组装 128 位 ID，Hi 为时间戳字段
func (l *Layout) pack128(tick int64, template uint64, seq int64) ID128 {
	return ID128{
		Hi: uint64(tick-l.epochTick()) & l.TimestampMask,
		Lo: template | uint64(seq)&l.SequenceMask,
	}
}

// ExtractTimestamp 从 ID 中还原 Unix 毫秒时间戳（对齐到 tick 边界）
func (l *Layout) ExtractTimestamp(id uint64) int64 {
	if l.TickMs == 0 {
		return 0
	}
	field := int64((id >> l.TimestampShift) & l.TimestampMask)
	return (field + l.epochTick()) * l.TickMs
}

// ExtractTimestamp128 从 128 位 ID 中还原 Unix 毫秒时间戳。
// 时间戳字段超出 int64 时（见 ID128.InRange）返回 math.MaxInt64。
func (l *Layout) ExtractTimestamp128(id ID128) int64 {
	if l.TickMs == 0 {
		return 0
	}
	field := id.Hi & l.TimestampMask
	if field > uint64(math.MaxInt64/l.TickMs-l.epochTick()) {
		return math.MaxInt64
	}
	return (int64(field) + l.epochTick()) * l.TickMs
}

// Decode 拆分 ID 的三个字段
func (l *Layout) Decode(id uint64) Parts {
	return Parts{
		Timestamp: l.ExtractTimestamp(id),
		Node:      (id >> l.NodeShift) & l.NodeMask,
		Sequence:  id & l.SequenceMask,
	}
}

// Decode128 拆分 128 位 ID 的三个字段
func (l *Layout) Decode128(id ID128) Parts {
	return Parts{
		Timestamp: l.ExtractTimestamp128(id),
		Node:      (id.Lo >> l.NodeShift) & l.NodeMask,
		Sequence:  id.Lo & l.SequenceMask,
	}
}

// Parts 是 ID 拆分后的字段
type Parts struct {
	Timestamp int64  // Unix 毫秒，对齐到 tick
	Node      uint64 // 截断后的节点号
	Sequence  uint64
}

package idgen

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/ceyewan/snowkit/xerrors"
)

// AsciiBase ascii 编码使用的进制（0-9a-z）
const AsciiBase = 36

// ID128 128 位 ID：Hi 为时间戳字段，Lo 为 node<<16 | sequence
type ID128 struct {
	Hi uint64
	Lo uint64
}

// Compare 按无符号 128 位整数比较，返回 -1、0 或 1
func (id ID128) Compare(other ID128) int {
	switch {
	case id.Hi < other.Hi:
		return -1
	case id.Hi > other.Hi:
		return 1
	case id.Lo < other.Lo:
		return -1
	case id.Lo > other.Lo:
		return 1
	default:
		return 0
	}
}

// InRange 报告时间戳字段是否落在 int64 毫秒范围内，生成器产生的 ID 恒为 true。
// Parse*128 接受任意 128 位值，解析外部输入后提取时间戳前应先检查。
func (id ID128) InRange() bool {
	return id.Hi <= math.MaxInt64
}

// Big 转换为 big.Int
func (id ID128) Big() *big.Int {
	n := new(big.Int).SetUint64(id.Hi)
	n.Lsh(n, 64)
	return n.Or(n, new(big.Int).SetUint64(id.Lo))
}

// Hex 小写十六进制，无前导零
func (id ID128) Hex() string {
	if id.Hi == 0 {
		return strconv.FormatUint(id.Lo, 16)
	}
	return strconv.FormatUint(id.Hi, 16) + fmt.Sprintf("%016x", id.Lo)
}

// Ascii 36 进制小写编码
func (id ID128) Ascii() string {
	if id.Hi == 0 {
		return strconv.FormatUint(id.Lo, AsciiBase)
	}
	return id.Big().Text(AsciiBase)
}

// Decimal 十进制编码
func (id ID128) Decimal() string {
	if id.Hi == 0 {
		return strconv.FormatUint(id.Lo, 10)
	}
	return id.Big().String()
}

func (id ID128) String() string {
	return id.Hex()
}

// FormatHex 将 ID 编码为小写十六进制
func FormatHex(id uint64) string {
	return strconv.FormatUint(id, 16)
}

// FormatAscii 将 ID 编码为 36 进制
func FormatAscii(id uint64) string {
	return strconv.FormatUint(id, AsciiBase)
}

// ParseHex 解析十六进制 ID，大小写均可，不接受 0x 前缀
func ParseHex(s string) (uint64, error) {
	return parseUint(s, 16, "invalid_hex")
}

// ParseAscii 解析 36 进制 ID，大小写均可
func ParseAscii(s string) (uint64, error) {
	return parseUint(s, AsciiBase, "invalid_ascii")
}

func parseUint(s string, base int, code string) (uint64, error) {
	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, malformed(s, code, err)
	}
	return n, nil
}

// ParseHex128 解析十六进制 128 位 ID
func ParseHex128(s string) (ID128, error) {
	return parseBig128(s, 16, "invalid_hex")
}

// ParseAscii128 解析 36 进制 128 位 ID
func ParseAscii128(s string) (ID128, error) {
	return parseBig128(s, AsciiBase, "invalid_ascii")
}

// ParseDecimal128 解析十进制 128 位 ID
func ParseDecimal128(s string) (ID128, error) {
	return parseBig128(s, 10, "invalid_decimal")
}

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

func parseBig128(s string, base int, code string) (ID128, error) {
	// big.Int 接受符号前缀，ID 不允许
	if s == "" || s[0] == '+' || s[0] == '-' {
		return ID128{}, malformed(s, code, nil)
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return ID128{}, malformed(s, code, nil)
	}
	if n.BitLen() > 128 {
		return ID128{}, malformed(s, "id_out_of_range", nil)
	}
	lo := new(big.Int).And(n, maxUint64).Uint64()
	hi := new(big.Int).Rsh(n, 64).Uint64()
	return ID128{Hi: hi, Lo: lo}, nil
}

func malformed(s, code string, cause error) error {
	err := xerrors.WithCode(ErrMalformedID, code)
	if cause != nil {
		err = xerrors.Combine(err, cause)
	}
	return xerrors.Wrapf(err, "parse %q", s)
}

// extractFromString 按布局选择 64 位或 128 位解析函数
func extractFromString(l Layout, str string,
	parse func(string) (uint64, error), parse128 func(string) (ID128, error)) (int64, error) {
	if l.TickMs == 0 {
		return 0, xerrors.WithCode(ErrInvalidInput, "unknown_scheme")
	}
	if l.Scheme == Scheme128 {
		id, err := parse128(str)
		if err != nil {
			return 0, err
		}
		if !id.InRange() {
			return 0, malformed(str, "timestamp_out_of_range", nil)
		}
		return l.ExtractTimestamp128(id), nil
	}
	id, err := parse(str)
	if err != nil {
		return 0, err
	}
	return l.ExtractTimestamp(id), nil
}

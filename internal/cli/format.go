package cli

import (
	"strconv"

	"github.com/ceyewan/snowkit/idgen"
	"github.com/ceyewan/snowkit/xerrors"
)

// 输出与解析使用的编码
const (
	formatDec   = "dec"
	formatHex   = "hex"
	formatASCII = "ascii"
)

func validateFormat(format string) error {
	switch format {
	case formatDec, formatHex, formatASCII:
		return nil
	}
	return xerrors.Codef(xerrors.ErrInvalidInput, "unknown_format", "format %q", format)
}

func formatID(id uint64, format string) string {
	switch format {
	case formatHex:
		return idgen.FormatHex(id)
	case formatASCII:
		return idgen.FormatAscii(id)
	}
	return strconv.FormatUint(id, 10)
}

func formatID128(id idgen.ID128, format string) string {
	switch format {
	case formatHex:
		return id.Hex()
	case formatASCII:
		return id.Ascii()
	}
	return id.Decimal()
}

func parseID(s, format string) (uint64, error) {
	switch format {
	case formatHex:
		return idgen.ParseHex(s)
	case formatASCII:
		return idgen.ParseAscii(s)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, xerrors.Codef(idgen.ErrMalformedID, "invalid_decimal", "parse %q", s)
	}
	return n, nil
}

func parseID128(s, format string) (idgen.ID128, error) {
	var (
		id  idgen.ID128
		err error
	)
	switch format {
	case formatHex:
		id, err = idgen.ParseHex128(s)
	case formatASCII:
		id, err = idgen.ParseAscii128(s)
	default:
		id, err = idgen.ParseDecimal128(s)
	}
	if err != nil {
		return idgen.ID128{}, err
	}
	if !id.InRange() {
		return idgen.ID128{}, xerrors.Codef(idgen.ErrMalformedID, "timestamp_out_of_range", "parse %q", s)
	}
	return id, nil
}

// layoutFor 返回 CLI 使用的布局，tiny 按配置的块大小
func layoutFor(s idgen.Scheme, tinyBlockMs int64) (idgen.Layout, error) {
	if s == idgen.SchemeTiny && tinyBlockMs > 0 {
		return idgen.TinyLayout(tinyBlockMs)
	}
	return idgen.LayoutOf(s), nil
}

package idgen

import "github.com/ceyewan/snowkit/xerrors"

var (
	// ErrInvalidInput 无效的输入或配置
	ErrInvalidInput = xerrors.Wrap(xerrors.ErrInvalidInput, "idgen")

	// ErrClockRegressed 时钟回拨，按回拨策略拒绝生成
	ErrClockRegressed = xerrors.New("idgen: clock moved backwards")

	// ErrTimestampOverflow 当前时间超出方案时间戳字段的表示范围
	ErrTimestampOverflow = xerrors.New("idgen: timestamp field overflow")

	// ErrMalformedID 无法解析的 ID 字符串
	ErrMalformedID = xerrors.New("idgen: malformed id")

	// ErrRegistryClosed Registry 已关闭
	ErrRegistryClosed = xerrors.New("idgen: registry closed")
)

package nodeid

import "github.com/ceyewan/snowkit/xerrors"

var (
	// ErrInvalidInput 无效的配置
	ErrInvalidInput = xerrors.Wrap(xerrors.ErrInvalidInput, "nodeid")

	// ErrConnectorNil 租约方式缺少连接器
	ErrConnectorNil = xerrors.New("nodeid: connector is nil")

	// ErrExhausted 所有槽位都已被占用
	ErrExhausted = xerrors.New("nodeid: no available node id")

	// ErrLeaseLost 租约过期或被他人占用
	ErrLeaseLost = xerrors.New("nodeid: lease lost")

	// ErrNotAcquired 尚未调用 Acquire
	ErrNotAcquired = xerrors.New("nodeid: not acquired")

	// ErrNoAddress 找不到可用的网卡地址
	ErrNoAddress = xerrors.New("nodeid: no usable network address")
)

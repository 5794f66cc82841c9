package connector

import "github.com/ceyewan/snowkit/xerrors"

var (
	// ErrConfig 配置缺失或不合法，错误码区分具体字段
	ErrConfig = xerrors.Wrap(xerrors.ErrInvalidInput, "connector")

	ErrConnection  = xerrors.New("connector: connection failed")
	ErrHealthCheck = xerrors.New("connector: health check failed")
)

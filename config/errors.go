package config

import "github.com/ceyewan/snowkit/xerrors"

// ErrInvalidConfig 配置文件无法解析或加载结果为空，错误码：
// config_empty、config_malformed、env_config_malformed
var ErrInvalidConfig = xerrors.Wrap(xerrors.ErrInvalidInput, "config")

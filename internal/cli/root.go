// Package cli 实现 snowkit 命令行工具。
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ceyewan/snowkit/idgen"
	"github.com/ceyewan/snowkit/nodeid"
	"github.com/ceyewan/snowkit/xerrors"
)

// NewRoot 构造根命令，注册 gen、decode 与 layout 子命令
func NewRoot() *cobra.Command {
	var o appOptions

	root := &cobra.Command{
		Use:           "snowkit",
		Short:         "Node-local snowflake id generator",
		Long:          "snowkit generates and decodes time-ordered ids in five bit layouts: tiny, mini, 48, 64 and 128.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&o.configDir, "config-dir", "", "directory containing snowkit.yaml (default: . and ./config)")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "override log.level (debug|info|warn|error)")

	root.AddCommand(newGenCommand(&o))
	root.AddCommand(newDecodeCommand(&o))
	root.AddCommand(newLayoutCommand(&o))
	return root
}

// 进程退出码
const (
	ExitFailure      = 1
	ExitUsage        = 2 // 参数、配置或待解码的 ID 不合法
	ExitClockRegress = 3 // 时钟回拨超出容忍范围
	ExitLeaseLost    = 4 // 节点号租约丢失
)

// ExitCode 将命令返回的错误映射为退出码，err 为 nil 时返回 0
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case xerrors.HasCode(err, "clock_regressed"):
		return ExitClockRegress
	case xerrors.Is(err, nodeid.ErrLeaseLost):
		return ExitLeaseLost
	case xerrors.Is(err, xerrors.ErrInvalidInput), xerrors.Is(err, idgen.ErrMalformedID):
		return ExitUsage
	}
	return ExitFailure
}

// Package clog 是 snowkit 各组件共用的结构化日志，底层为 log/slog。
//
//	logger, _ := clog.New(&clog.Config{Level: "info", Format: "json", Output: "stderr"},
//	    clog.WithNamespace("snowkit"))
//	logger.Info("generator ready", clog.Scheme("64"), clog.NodeID(5))
//
// 组件只依赖 Logger 接口；库的默认值是 Default()，测试里用 Discard()。
package clog

import "context"

// Logger 结构化日志接口。
//
// *Context 变体会按 WithContextField/WithRunID 的配置从 ctx 中取字段。
// Fatal 记录后调用 os.Exit(1)。
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	DebugContext(ctx context.Context, msg string, fields ...Field)
	InfoContext(ctx context.Context, msg string, fields ...Field)
	WarnContext(ctx context.Context, msg string, fields ...Field)
	ErrorContext(ctx context.Context, msg string, fields ...Field)
	FatalContext(ctx context.Context, msg string, fields ...Field)

	// With 返回携带固定字段的子 Logger
	With(fields ...Field) Logger
	// WithNamespace 在现有命名空间后追加，如 snowkit -> snowkit.nodeid
	WithNamespace(parts ...string) Logger

	// SetLevel 运行时调整级别，父子 Logger 共享同一级别
	SetLevel(level Level) error
	Flush()
}

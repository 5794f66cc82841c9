package clog

import "context"

// Discard 返回丢弃一切输出的 Logger，常用于测试与库的默认值。
// 返回值是共享的单例，With/WithNamespace 也返回它自身。
func Discard() Logger { return discard }

var discard Logger = &discardLogger{}

type discardLogger struct{}

func (*discardLogger) Debug(string, ...Field)                         {}
func (*discardLogger) Info(string, ...Field)                          {}
func (*discardLogger) Warn(string, ...Field)                          {}
func (*discardLogger) Error(string, ...Field)                         {}
func (*discardLogger) Fatal(string, ...Field)                         {}
func (*discardLogger) DebugContext(context.Context, string, ...Field) {}
func (*discardLogger) InfoContext(context.Context, string, ...Field)  {}
func (*discardLogger) WarnContext(context.Context, string, ...Field)  {}
func (*discardLogger) ErrorContext(context.Context, string, ...Field) {}
func (*discardLogger) FatalContext(context.Context, string, ...Field) {}
func (d *discardLogger) With(...Field) Logger                         { return d }
func (d *discardLogger) WithNamespace(...string) Logger               { return d }
func (*discardLogger) SetLevel(Level) error                           { return nil }
func (*discardLogger) Flush()                                         {}

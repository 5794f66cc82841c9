package clog

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"
)

type logger struct {
	handler slog.Handler
	opts    *options
	attrs   []slog.Attr
}

var background = context.Background()

func (l *logger) Debug(msg string, fields ...Field) { l.emit(background, DebugLevel, msg, fields) }
func (l *logger) Info(msg string, fields ...Field)  { l.emit(background, InfoLevel, msg, fields) }
func (l *logger) Warn(msg string, fields ...Field)  { l.emit(background, WarnLevel, msg, fields) }
func (l *logger) Error(msg string, fields ...Field) { l.emit(background, ErrorLevel, msg, fields) }
func (l *logger) Fatal(msg string, fields ...Field) { l.emit(background, FatalLevel, msg, fields) }

func (l *logger) DebugContext(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, DebugLevel, msg, fields)
}

func (l *logger) InfoContext(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, InfoLevel, msg, fields)
}

func (l *logger) WarnContext(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, WarnLevel, msg, fields)
}

func (l *logger) ErrorContext(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, ErrorLevel, msg, fields)
}

func (l *logger) FatalContext(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, FatalLevel, msg, fields)
}

// With 子 Logger 持有字段的独立副本，兄弟之间互不影响
func (l *logger) With(fields ...Field) Logger {
	attrs := make([]slog.Attr, 0, len(l.attrs)+len(fields))
	attrs = append(append(attrs, l.attrs...), fields...)
	return &logger{handler: l.handler, opts: l.opts, attrs: attrs}
}

func (l *logger) WithNamespace(parts ...string) Logger {
	return &logger{handler: l.handler, opts: l.opts.withNamespace(parts), attrs: l.attrs}
}

func (l *logger) SetLevel(level Level) error {
	if h, ok := l.handler.(*handler); ok {
		h.level.Set(level.slogLevel())
	}
	return nil
}

// Flush slog 的内置 Handler 同步写出，文件输出时执行 Sync
func (l *logger) Flush() {
	if h, ok := l.handler.(*handler); ok && h.file != nil {
		_ = h.file.Sync()
	}
}

func (l *logger) emit(ctx context.Context, level Level, msg string, fields []Field) {
	if !l.handler.Enabled(ctx, level.slogLevel()) {
		return
	}

	attrs := make([]slog.Attr, 0, len(l.attrs)+len(fields)+2)
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, fields...)
	attrs = l.opts.appendAttrs(ctx, attrs)

	// 跳过 runtime.Callers、emit 与 Info 等入口
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level.slogLevel(), msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.handler.Handle(ctx, r)

	if level == FatalLevel {
		os.Exit(1)
	}
}

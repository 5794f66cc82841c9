package clog

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/ceyewan/snowkit/xerrors"
)

// Field 即 slog.Attr，字段按值传递
type Field = slog.Attr

func String(k, v string) Field                 { return slog.String(k, v) }
func Int(k string, v int) Field                { return slog.Int(k, v) }
func Int64(k string, v int64) Field            { return slog.Int64(k, v) }
func Uint64(k string, v uint64) Field          { return slog.Uint64(k, v) }
func Float64(k string, v float64) Field        { return slog.Float64(k, v) }
func Bool(k string, v bool) Field              { return slog.Bool(k, v) }
func Time(k string, v time.Time) Field         { return slog.Time(k, v) }
func Duration(k string, v time.Duration) Field { return slog.Duration(k, v) }
func Any(k string, v any) Field                { return slog.Any(k, v) }

// NodeID 节点号字段，所有组件统一使用 node_id 作为键
func NodeID(id uint64) Field { return slog.Uint64("node_id", id) }

// Scheme ID 方案字段
func Scheme(name string) Field { return slog.String("scheme", name) }

// Error 输出 err_msg；错误经 xerrors.WithCode 包装过时附带 err_code。
// err 为 nil 时返回空字段，slog 会忽略它。
//
//	logger.Warn("renew failed", clog.Error(err))
//	// err_msg="[lease_lost] nodeid: lease lost" err_code=lease_lost
func Error(err error) Field {
	if err == nil {
		return slog.Attr{}
	}
	if code := xerrors.GetCode(err); code != "" {
		return slog.Group("", slog.String("err_msg", err.Error()), slog.String("err_code", code))
	}
	return slog.String("err_msg", err.Error())
}

// ErrorWithCode 以嵌套结构输出错误：error={msg=..., code=...}。
// code 为空时取错误链上的错误码。
func ErrorWithCode(err error, code string) Field {
	if code == "" {
		code = xerrors.GetCode(err)
	}
	attrs := make([]any, 0, 2)
	if err != nil {
		attrs = append(attrs, slog.String("msg", err.Error()))
	}
	if code != "" {
		attrs = append(attrs, slog.String("code", code))
	}
	if len(attrs) == 0 {
		return slog.Attr{}
	}
	return slog.Group("error", attrs...)
}

// ErrorWithStack 在 ErrorWithCode 的基础上附带类型与调用栈，只在排障时使用
func ErrorWithStack(err error) Field {
	if err == nil {
		return slog.Attr{}
	}
	attrs := []any{
		slog.String("msg", err.Error()),
		slog.String("type", fmt.Sprintf("%T", err)),
	}
	if code := xerrors.GetCode(err); code != "" {
		attrs = append(attrs, slog.String("code", code))
	}
	// 跳过 runtime.Callers、callers 与 ErrorWithStack 自身
	if stack := callers(3); stack != "" {
		attrs = append(attrs, slog.String("stack", stack))
	}
	return slog.Group("error", attrs...)
}

func callers(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", f.File, f.Line, f.Function)
		if !more {
			break
		}
	}
	return b.String()
}

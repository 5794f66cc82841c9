package clog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
)

// NamespaceKey 命名空间在日志中的字段名
const NamespaceKey = "namespace"

// RunIDKey 运行标识在日志中的字段名
const RunIDKey = "run_id"

type runIDKey struct{}

// WithRunIDContext 把一次运行（如一次 gen 调用）的标识放入 ctx，
// 启用 WithRunID 的 Logger 在 *Context 方法中输出它
func WithRunIDContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// Option 配置 Logger
type Option func(*options)

type contextField struct {
	key  any
	name string
}

type options struct {
	namespace     []string
	contextFields []contextField
	buffer        *bytes.Buffer
}

// WithNamespace 多级命名空间以 "." 连接：WithNamespace("snowkit", "idgen") 输出 namespace=snowkit.idgen
func WithNamespace(parts ...string) Option {
	return func(o *options) {
		o.namespace = append(o.namespace, parts...)
	}
}

// WithContextField 在 *Context 方法中把 ctx.Value(key) 以 name 输出
func WithContextField(key any, name string) Option {
	return func(o *options) {
		o.contextFields = append(o.contextFields, contextField{key: key, name: name})
	}
}

// WithRunID 输出 WithRunIDContext 放入的运行标识
func WithRunID() Option {
	return WithContextField(runIDKey{}, RunIDKey)
}

func applyOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// appendAttrs 追加 ctx 字段与命名空间
func (o *options) appendAttrs(ctx context.Context, attrs []slog.Attr) []slog.Attr {
	if ctx != nil {
		for _, cf := range o.contextFields {
			if v := ctx.Value(cf.key); v != nil {
				attrs = append(attrs, slog.Any(cf.name, v))
			}
		}
	}
	if len(o.namespace) > 0 {
		attrs = append(attrs, slog.String(NamespaceKey, strings.Join(o.namespace, ".")))
	}
	return attrs
}

func (o *options) withNamespace(parts []string) *options {
	c := *o
	c.namespace = append(append([]string(nil), o.namespace...), parts...)
	return &c
}

package clog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ceyewan/snowkit/xerrors"
)

// handler 在内置 slog.Handler 上附加可调级别与输出文件
type handler struct {
	slog.Handler
	level *slog.LevelVar
	file  *os.File
}

func newHandler(cfg *Config, o *options) (*handler, error) {
	w, file, err := openOutput(cfg.Output, o)
	if err != nil {
		return nil, err
	}

	lv, _ := ParseLevel(cfg.Level)
	h := &handler{level: new(slog.LevelVar), file: file}
	h.level.Set(lv.slogLevel())

	ho := &slog.HandlerOptions{
		AddSource:   cfg.AddSource,
		Level:       h.level,
		ReplaceAttr: replaceAttr(cfg.SourceRoot),
	}
	if strings.EqualFold(cfg.Format, "json") {
		h.Handler = slog.NewJSONHandler(w, ho)
	} else {
		h.Handler = slog.NewTextHandler(w, ho)
	}
	return h, nil
}

func openOutput(output string, o *options) (io.Writer, *os.File, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	case "buffer":
		if o.buffer == nil {
			return nil, nil, xerrors.Codef(ErrInvalidConfig, "invalid_output", "buffer output without buffer")
		}
		return o.buffer, nil, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, xerrors.Codef(err, "invalid_output", "clog: open %s", output)
	}
	return f, f, nil
}

// replaceAttr 级别输出为大写名，时间为毫秒精度，source 折叠为 caller=file:line
func replaceAttr(sourceRoot string) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return a
		}
		switch a.Key {
		case slog.LevelKey:
			if l, ok := a.Value.Any().(slog.Level); ok {
				a.Value = slog.StringValue(levelLabel(l))
			}
		case slog.TimeKey:
			if a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().Format(timeFormat))
			}
		case slog.SourceKey:
			if src, ok := a.Value.Any().(*slog.Source); ok {
				return slog.String("caller", fmt.Sprintf("%s:%d", relativeSource(src.File, sourceRoot), src.Line))
			}
		}
		return a
	}
}

func relativeSource(file, root string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, file); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	if i := strings.LastIndex(file, "snowkit/"); i != -1 {
		return file[i:]
	}
	return filepath.Base(file)
}

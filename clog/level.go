package clog

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/ceyewan/snowkit/xerrors"
)

// Level 日志级别，与 slog.Level 数值一致：Debug=-4，Info=0，Warn=4，Error=8，Fatal=12
type Level int

const (
	DebugLevel Level = Level(slog.LevelDebug)
	InfoLevel  Level = Level(slog.LevelInfo)
	WarnLevel  Level = Level(slog.LevelWarn)
	ErrorLevel Level = Level(slog.LevelError)
	FatalLevel Level = Level(slog.LevelError + 4)
)

var levelNames = []struct {
	level Level
	name  string
}{
	{DebugLevel, "debug"},
	{InfoLevel, "info"},
	{WarnLevel, "warn"},
	{ErrorLevel, "error"},
	{FatalLevel, "fatal"},
}

func (l Level) String() string {
	for _, ln := range levelNames {
		if ln.level == l {
			return ln.name
		}
	}
	return "level(" + strconv.Itoa(int(l)) + ")"
}

func (l Level) slogLevel() slog.Level { return slog.Level(l) }

// ParseLevel 不区分大小写；未知级别返回 InfoLevel 与 invalid_level 错误
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, ln := range levelNames {
		if ln.name == name {
			return ln.level, nil
		}
	}
	return InfoLevel, xerrors.Codef(ErrInvalidConfig, "invalid_level", "unknown level %q", s)
}

// levelLabel 输出到日志中的大写级别名，落在两个级别之间的取较低者
func levelLabel(l slog.Level) string {
	label := "DEBUG"
	for _, ln := range levelNames {
		if slog.Level(ln.level) <= l {
			label = strings.ToUpper(ln.name)
		}
	}
	return label
}

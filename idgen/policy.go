package idgen

import (
	"strings"
	"time"

	"github.com/ceyewan/snowkit/xerrors"
)

// DefaultMaxBackwards RegressionWait 默认可容忍的回拨幅度
const DefaultMaxBackwards = time.Second

// RegressionPolicy 决定 tick 小于上次 tick 时的行为
type RegressionPolicy int

const (
	// RegressionWait 回拨不超过 MaxBackwards 时阻塞等待时钟追上，超过则返回 ErrClockRegressed
	RegressionWait RegressionPolicy = iota
	// RegressionReject 立即返回 ErrClockRegressed
	RegressionReject
	// RegressionAccept 视为新的 tick 并重置序列号，可能产生比之前更小甚至重复的 ID
	RegressionAccept
)

func (p RegressionPolicy) String() string {
	switch p {
	case RegressionWait:
		return "wait"
	case RegressionReject:
		return "reject"
	case RegressionAccept:
		return "accept"
	default:
		return "unknown"
	}
}

// ParseRegressionPolicy 解析 wait|reject|accept，空字符串返回 RegressionWait
func ParseRegressionPolicy(s string) (RegressionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wait":
		return RegressionWait, nil
	case "reject":
		return RegressionReject, nil
	case "accept":
		return RegressionAccept, nil
	default:
		return 0, xerrors.Codef(ErrInvalidInput, "unknown_regression_policy", "policy %q", s)
	}
}

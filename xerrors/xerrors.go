// Package xerrors 是 snowkit 的错误约定。
//
// 各包在 errors.go 里声明哨兵错误，返回时用 Codef/WithCode 附加机器可读的错误码：
//
//	return xerrors.Codef(ErrInvalidInput, "ttl_too_small", "ttl %v", ttl)
//
// 调用方用 Is 判断类别，用 GetCode 区分具体原因；CLI 与日志直接输出错误码。
package xerrors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput 输入或配置不合法，各包的同名哨兵都包装它
	ErrInvalidInput = errors.New("invalid input")

	ErrNotFound = errors.New("not found")
)

var (
	New    = errors.New
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Wrap 前置上下文，nil 透传
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Must 用于 main 与示例中的初始化，err 非 nil 时 panic
func Must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("must: %v", err))
	}
	return v
}

package xerrors

import (
	"errors"
	"fmt"
)

// CodedError 给错误附加错误码，错误码是 snake_case 的短字符串，如 clock_regressed
type CodedError struct {
	Code  string
	Cause error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return "[" + e.Code + "]"
	}
	return "[" + e.Code + "] " + e.Cause.Error()
}

func (e *CodedError) Unwrap() error { return e.Cause }

// WithCode nil 透传
func WithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: code, Cause: err}
}

// Codef 等价于 Wrapf(WithCode(err, code), format, args...)
func Codef(err error, code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), &CodedError{Code: code, Cause: err})
}

// GetCode 返回错误链上最外层的错误码，没有时为空
func GetCode(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// HasCode 错误链上任意一层带有 code 即为 true
func HasCode(err error, code string) bool {
	for err != nil {
		if c, ok := err.(*CodedError); ok && c.Code == code {
			return true
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				if HasCode(e, code) {
					return true
				}
			}
			return false
		default:
			err = errors.Unwrap(err)
		}
	}
	return false
}

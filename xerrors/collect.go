package xerrors

import "errors"

// Collector 累积清理过程中的错误，零值可用
//
//	var errs xerrors.Collector
//	errs.Collect(provider.Release(ctx))
//	errs.Collect(conn.Close())
//	return errs.Err()
type Collector struct {
	errs []error
}

// Collect 忽略 nil
func (c *Collector) Collect(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

func (c *Collector) Len() int { return len(c.errs) }

// Err 没有错误时为 nil，只有一个时原样返回，否则合并
func (c *Collector) Err() error { return Combine(c.errs...) }

// Combine 合并非 nil 的错误，结果可被 Is/As 匹配到其中任意一个
func Combine(errs ...error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return errors.Join(kept...)
}

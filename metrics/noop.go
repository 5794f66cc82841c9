package metrics

import "context"

// Discard 所有指标都不记录
func Discard() Meter { return discard{} }

type discard struct{}

func (discard) Counter(string, string, ...MetricOption) (Counter, error)     { return discard{}, nil }
func (discard) Gauge(string, string, ...MetricOption) (Gauge, error)         { return discard{}, nil }
func (discard) Histogram(string, string, ...MetricOption) (Histogram, error) { return discard{}, nil }
func (discard) Shutdown(context.Context) error                               { return nil }
func (discard) Inc(context.Context, ...Label)                                {}
func (discard) Dec(context.Context, ...Label)                                {}
func (discard) Add(context.Context, float64, ...Label)                       {}
func (discard) Set(context.Context, float64, ...Label)                       {}
func (discard) Record(context.Context, float64, ...Label)                    {}

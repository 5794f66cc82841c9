package metrics

import "go.opentelemetry.io/otel/attribute"

// Label 标签值要求低基数，如 scheme、policy；节点号与 ID 不能作为标签
type Label struct {
	Key   string
	Value string
}

func L(key, value string) Label { return Label{Key: key, Value: value} }

// attributeSet 标签顺序不影响结果
func attributeSet(labels []Label) attribute.Set {
	if len(labels) == 0 {
		return *attribute.EmptySet()
	}
	kvs := make([]attribute.KeyValue, len(labels))
	for i, l := range labels {
		kvs[i] = attribute.String(l.Key, l.Value)
	}
	return attribute.NewSet(kvs...)
}

package qdrant

import (
	"fmt"
	"sort"
	"strings"
)

type translatedFilter struct {
	Must    []any
	Should  []any
	MustNot []any
}

func (f translatedFilter) asMap() map[string]any {
	out := map[string]any{}
	if len(f.Must) > 0 {
		out["must"] = f.Must
	}
	if len(f.Should) > 0 {
		out["should"] = f.Should
	}
	if len(f.MustNot) > 0 {
		out["must_not"] = f.MustNot
	}
	return out
}

func (f translatedFilter) empty() bool {
	return len(f.Must) == 0 && len(f.Should) == 0 && len(f.MustNot) == 0
}

// payloadFilter builds a conjunction of exact payload matches. A []string
// value becomes a match-any condition. Keys are emitted in sorted order so
// request bodies are stable.
func payloadFilter(fields map[string]any) (translatedFilter, error) {
	out := translatedFilter{}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		k := strings.TrimSpace(key)
		if k == "" {
			continue
		}
		switch v := fields[key].(type) {
		case string, bool, int, int64:
			out.Must = append(out.Must, qdrantMatchCondition(k, v))
		case []string:
			if len(v) == 0 {
				continue
			}
			vals := make([]any, 0, len(v))
			for _, s := range v {
				vals = append(vals, s)
			}
			out.Must = append(out.Must, map[string]any{
				"key":   k,
				"match": map[string]any{"any": vals},
			})
		default:
			return translatedFilter{}, opErr(
				"filter_translate",
				OperationErrorUnsupportedFilter,
				fmt.Sprintf("unsupported value type %T for key %q", v, k),
				nil,
			)
		}
	}
	return out, nil
}

func qdrantMatchCondition(key string, value any) map[string]any {
	return map[string]any{
		"key":   key,
		"match": map[string]any{"value": value},
	}
}

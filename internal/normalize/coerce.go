package normalize

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// object is a loosely typed JSON object with alias-tolerant lookups.
type object map[string]any

func asObject(v any) (object, bool) {
	m, ok := v.(map[string]any)
	return object(m), ok
}

// canonKey folds snake_case, camelCase and PascalCase spellings onto one key.
func canonKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range strings.ToLower(k) {
		if r == '_' || r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// get returns the first non-null value stored under key or one of its aliases,
// in any casing.
func (o object) get(key string, aliases ...string) (any, bool) {
	if o == nil {
		return nil, false
	}
	names := append([]string{key}, aliases...)
	for _, name := range names {
		if v, ok := o[name]; ok && v != nil {
			return v, true
		}
	}
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range names {
		want := canonKey(name)
		for _, k := range keys {
			if v := o[k]; v != nil && canonKey(k) == want {
				return v, true
			}
		}
	}
	return nil, false
}

func (o object) str(key string, aliases ...string) string {
	v, _ := o.get(key, aliases...)
	return coerceString(v)
}

func (o object) list(key string, aliases ...string) []any {
	v, _ := o.get(key, aliases...)
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

func (o object) obj(key string, aliases ...string) object {
	v, _ := o.get(key, aliases...)
	m, _ := asObject(v)
	return m
}

func (o object) boolean(key string, aliases ...string) bool {
	v, _ := o.get(key, aliases...)
	return coerceBool(v)
}

func (o object) value(key string, aliases ...string) any {
	v, _ := o.get(key, aliases...)
	return v
}

func (o object) float(key string, aliases ...string) float64 {
	v, _ := o.get(key, aliases...)
	return coerceFloat(v)
}

func (o object) stringList(key string, aliases ...string) []string {
	v, _ := o.get(key, aliases...)
	return coerceStrings(v)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "y", "met", "matched", "match":
			return true
		}
		return false
	case float64:
		return val != 0
	default:
		return false
	}
}

// coerceFloat returns NaN when v carries no usable number.
func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// textKeys are the fields tried when a list element is an object but a plain
// string was expected.
var textKeys = []string{"text", "description", "name", "title", "value", "item"}

// coerceStrings flattens a string, a list of strings, or a list of objects into
// a non-nil slice of non-empty strings.
func coerceStrings(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range val {
			if s := itemText(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func itemText(item any) string {
	if m, ok := asObject(item); ok {
		return m.str(textKeys[0], textKeys[1:]...)
	}
	return coerceString(item)
}

// unitScore maps a model-supplied score into [0,1]. A "%" suffix or a value
// above 10 reads as a percentage and a value in (1,10] as a ten-point rating.
// Missing or invalid values become def.
func unitScore(v any, def float64) float64 {
	f := coerceFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	if s, ok := v.(string); ok && strings.HasSuffix(strings.TrimSpace(s), "%") {
		return clamp01(f / 100)
	}
	switch {
	case f > 10:
		f /= 100
	case f > 1:
		f /= 10
	}
	return clamp01(f)
}

// unitWeight clamps a criterion weight into [0,1]. Weights only matter
// relative to each other, so they are never rescaled.
func unitWeight(v any, def float64) float64 {
	f := coerceFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return clamp01(f)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		k := strings.ToLower(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

func ratioText(matched, total int, noun string) string {
	if total == 0 {
		return fmt.Sprintf("no %s comparison available", noun)
	}
	return fmt.Sprintf("%d of %d %s matched", matched, total, noun)
}

// Package cast provides coercion helpers for the untyped values that flow through
// template data and extension calls.
package cast

import (
	"fmt"
	"math"
	"strconv"
)

// ToFloat64 converts a numeric value to float64. Supports int/uint/float types.
func ToFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

// ToInt64 converts an integer value to int64. Clamps uint64/uint to math.MaxInt64 when out of range.
// Floats are accepted only when they carry no fractional part.
func ToInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return math.MaxInt64, true
		}
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return math.MaxInt64, true
		}
		return int64(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}

// ToStringSlice converts v to []string. Accepts []string or []any where each element is string.
func ToStringSlice(v any) ([]string, bool) {
	if ss, ok := v.([]string); ok {
		return ss, true
	}
	slice, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(slice))
	for _, e := range slice {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Flatten expands one level of []any / []int / []float64 / []string arguments so that
// f(1, 2, 3) and f([1, 2, 3]) see the same values.
func Flatten(args []any) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		switch x := a.(type) {
		case []any:
			out = append(out, x...)
		case []int:
			for _, n := range x {
				out = append(out, n)
			}
		case []float64:
			for _, n := range x {
				out = append(out, n)
			}
		case []string:
			for _, s := range x {
				out = append(out, s)
			}
		default:
			out = append(out, a)
		}
	}
	return out
}

// ToText renders v the way it should appear in template output.
// nil becomes the empty string; everything else goes through fmt.
func ToText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	default:
		if n, ok := ToInt64(v); ok {
			return strconv.FormatInt(n, 10)
		}
		return fmt.Sprint(v)
	}
}

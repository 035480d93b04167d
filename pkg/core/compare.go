package core

import (
	"cmp"
	"encoding/json"
	"fmt"
	"strings"
)

// Compare orders two sort keys. Numbers (booleans count as 0 and 1) compare
// numerically, strings lexicographically and arrays element by element,
// ordered by the first pair of elements that are not equal.
// Anything else, including nil, mappings and mixed kinds, is incomparable.
func Compare(a, b any) (int, error) {
	if na, ok := toNumber(a); ok {
		if nb, ok := toNumber(b); ok {
			return na.compare(nb), nil
		}
		return 0, incomparable(a, b)
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case []any:
		if y, ok := b.([]any); ok {
			for i := 0; i < len(x) && i < len(y); i++ {
				if equal(x[i], y[i]) {
					continue
				}
				return Compare(x[i], y[i])
			}
			return cmp.Compare(len(x), len(y)), nil
		}
	}
	return 0, incomparable(a, b)
}

// equal reports whether two values are the same JSON value. Numbers of any
// kind are equal when numerically equal.
func equal(a, b any) bool {
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		return ok && na.compare(nb) == 0
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !equal(v, w) {
				return false
			}
		}
		return true
	}
	return false
}

func incomparable(a, b any) error {
	return fmt.Errorf("%w: %s and %s", ErrIncomparable, typeName(a), typeName(b))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		if _, ok := toNumber(v); ok {
			return "number"
		}
		return fmt.Sprintf("%T", v)
	}
}

// number keeps integers exact and falls back to float64 otherwise.
type number struct {
	i     int64
	f     float64
	isInt bool
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func (n number) compare(o number) int {
	if n.isInt && o.isInt {
		return cmp.Compare(n.i, o.i)
	}
	return cmp.Compare(n.float(), o.float())
}

func toNumber(v any) (number, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return number{i: 1, isInt: true}, true
		}
		return number{isInt: true}, true
	case int:
		return number{i: int64(x), isInt: true}, true
	case int8:
		return number{i: int64(x), isInt: true}, true
	case int16:
		return number{i: int64(x), isInt: true}, true
	case int32:
		return number{i: int64(x), isInt: true}, true
	case int64:
		return number{i: x, isInt: true}, true
	case uint:
		return number{f: float64(x)}, true
	case uint8:
		return number{i: int64(x), isInt: true}, true
	case uint16:
		return number{i: int64(x), isInt: true}, true
	case uint32:
		return number{i: int64(x), isInt: true}, true
	case uint64:
		return number{f: float64(x)}, true
	case float32:
		return number{f: float64(x)}, true
	case float64:
		return number{f: x}, true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return number{i: i, isInt: true}, true
		}
		if f, err := x.Float64(); err == nil {
			return number{f: f}, true
		}
	}
	return number{}, false
}

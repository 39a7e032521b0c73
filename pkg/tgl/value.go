package tgl

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Normalize converts decoded JSON/YAML values into the shapes the
// interpreter works with: float64 numbers, map[string]any objects and []any
// lists. json.Number, sized integers and map[any]any are all accepted.
func Normalize(v any) any {
	switch c := v.(type) {
	case json.Number:
		f, err := c.Float64()
		if err != nil {
			return c.String()
		}
		return f
	case int:
		return float64(c)
	case int8:
		return float64(c)
	case int16:
		return float64(c)
	case int32:
		return float64(c)
	case int64:
		return float64(c)
	case uint:
		return float64(c)
	case uint8:
		return float64(c)
	case uint16:
		return float64(c)
	case uint32:
		return float64(c)
	case uint64:
		return float64(c)
	case float32:
		return float64(c)
	case map[string]any:
		out := make(map[string]any, len(c))
		for k, e := range c {
			out[k] = Normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(c))
		for k, e := range c {
			out[ToString(Normalize(k))] = Normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, e := range c {
			out[i] = Normalize(e)
		}
		return out
	case []string:
		out := make([]any, len(c))
		for i, e := range c {
			out[i] = e
		}
		return out
	}
	return v
}

// ToNumber coerces numbers and numeric strings; everything else is NaN.
func ToNumber(v any) float64 {
	switch c := v.(type) {
	case float64:
		return c
	case int:
		return float64(c)
	case int64:
		return float64(c)
	case string:
		s := strings.TrimSpace(c)
		if s == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		if math.IsInf(f, 0) && !strings.HasSuffix(s, "Infinity") {
			// ParseFloat accepts "inf"; only the spelled-out form is numeric here
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// ToString renders a value the way it appears in generated text.
func ToString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return formatNumber(c)
	case int:
		return strconv.Itoa(c)
	case bool:
		return strconv.FormatBool(c)
	case []any:
		parts := make([]string, len(c))
		for i, e := range c {
			parts[i] = ToString(e)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		b, err := json.Marshal(c)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return ""
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Truthy reports the boolean sense of a value: nil, false, 0, NaN and ""
// are false.
func Truthy(v any) bool {
	switch c := v.(type) {
	case nil:
		return false
	case bool:
		return c
	case float64:
		return c != 0 && !math.IsNaN(c)
	case int:
		return c != 0
	case string:
		return c != ""
	}
	return true
}

// Equal is strict equality: operands of different kinds are never equal.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return reflect.DeepEqual(a, b)
}

// ClampWeight turns an evaluated weight into a usable one:
// non-numeric counts as 1, negative as 0.
func ClampWeight(v any) float64 {
	n := ToNumber(v)
	if math.IsNaN(n) {
		return 1
	}
	if n < 0 {
		return 0
	}
	return n
}

// WeightedIndex draws an index from weights using one uniform sample in
// [0, total). The first positive-weight entry whose cumulative weight meets
// or exceeds the sample wins. A zero total selects index 0; an empty slice -1.
func WeightedIndex(weights []float64, rng interface{ Float64() float64 }) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}

	sample := rng.Float64() * total
	acc := 0.0
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if acc >= sample {
			return i
		}
	}
	return last
}

// field selects key from a map or list value.
func field(v any, key string) (any, bool) {
	switch c := v.(type) {
	case map[string]any:
		e, ok := c[key]
		return e, ok
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(c) {
			return nil, false
		}
		return c[i], true
	}
	return nil, false
}

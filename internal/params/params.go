// Package params holds template parameter sets and the rules callers'
// overrides must satisfy.
package params

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Set maps slot names to values. Values are string, int, float64, bool or
// nil; Normalize converts the other numeric kinds.
type Set map[string]any

// Clone returns a shallow copy of s. A nil Set clones to an empty one.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns defaults overlaid with caller. Caller values always win.
func Merge(defaults, caller Set) Set {
	out := make(Set, len(defaults)+len(caller))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range caller {
		out[k] = v
	}
	return out
}

// Keys returns the names in s, sorted.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether name is present, even with a nil value.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Normalize maps v onto the closed set of parameter value types.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int, float64:
		return x, nil
	case int8:
		return int(x), nil
	case int16:
		return int(x), nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint:
		return int(x), nil
	case uint8:
		return int(x), nil
	case uint16:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", x)
		}
		return int(x), nil
	case float32:
		return float64(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", x.String())
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// ParseValue interprets a command-line value: integers, then floats, then
// booleans; anything else stays a string.
func ParseValue(raw string) any {
	s := strings.TrimSpace(raw)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

// ParseAssignment splits "key=value" and parses the value.
func ParseAssignment(arg string) (string, any, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("expected key=value, got %q", arg)
	}
	return key, ParseValue(value), nil
}

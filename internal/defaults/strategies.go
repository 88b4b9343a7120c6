package defaults

import (
	"fmt"
	"strings"

	"stratforge/internal/naming"
)

// TimestampLayout formats generated dates.
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultAuthor is written into manifests that do not name one.
const DefaultAuthor = "Stratforge <stratforge@example.com>"

// Generators derives identifier slots from whatever the caller supplied.
// A generator declines when its inputs are absent.
type Generators struct{}

func (Generators) Name() string { return "generator" }

func (Generators) Attempt(slot string, env Env) (any, bool) {
	gen, ok := generators[slot]
	if !ok {
		return nil, false
	}
	v, ok := gen(env)
	if !ok {
		return nil, false
	}
	return v, true
}

var generators = map[string]func(Env) (string, bool){
	"strategy_name":        genStrategyName,
	"strategy_description": genStrategyDescription,
	"strategy_class_name":  genClassName,
	"project_name":         genProjectName,
	"base_name":            genBaseName,
	"image_name":           genImageName,
	"generated_at": func(env Env) (string, bool) {
		return env.Now.Format(TimestampLayout), true
	},
}

func callerString(env Env, key string) (string, bool) {
	s, ok := env.Caller[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func genStrategyName(env Env) (string, bool) {
	if d, ok := callerString(env, "strategy_description"); ok {
		if terms := naming.Terms(d); len(terms) > 0 {
			return naming.DisplayName(terms), true
		}
	}
	if b, ok := callerString(env, "base_name"); ok {
		return naming.DisplayName(naming.Tokenize(b)), true
	}
	return "", false
}

func genStrategyDescription(env Env) (string, bool) {
	if n, ok := callerString(env, "strategy_name"); ok {
		return n + " trading algorithm", true
	}
	return "", false
}

func genClassName(env Env) (string, bool) {
	for _, key := range []string{"strategy_name", "base_name", "strategy_description"} {
		if s, ok := callerString(env, key); ok {
			return naming.TypeName(s), true
		}
	}
	return "", false
}

func genBaseName(env Env) (string, bool) {
	d, ok := callerString(env, "strategy_description")
	if !ok || len(naming.Terms(d)) == 0 {
		return "", false
	}
	return env.Rules.BaseName(d), true
}

func genProjectName(env Env) (string, bool) {
	base, ok := callerString(env, "base_name")
	if !ok {
		if base, ok = genBaseName(env); !ok {
			base = env.Rules.Fallback
		}
	}
	return env.Rules.ProjectName(base, env.Now), true
}

func genImageName(env Env) (string, bool) {
	if base, ok := callerString(env, "base_name"); ok {
		return env.Rules.ImageName(base), true
	}
	if base, ok := genBaseName(env); ok {
		return env.Rules.ImageName(base), true
	}
	return "", false
}

// Table supplies configured defaults.
type Table struct{}

func (Table) Name() string { return "table" }

func (Table) Attempt(slot string, env Env) (any, bool) {
	v, ok := env.Table[slot]
	return v, ok
}

// Heuristics guesses a value from the shape of the slot name. Rules are
// tried in order and the first match wins.
type Heuristics struct{}

func (Heuristics) Name() string { return "heuristic" }

type heuristic struct {
	// substrings match anywhere in the lowercased slot name; segments
	// match whole underscore-separated parts only.
	substrings []string
	segments   []string
	value      func(slot string, env Env) any
}

func constant(v any) func(string, Env) any {
	return func(string, Env) any { return v }
}

var heuristics = []heuristic{
	{substrings: []string{"threshold"}, value: constant(0.5)},
	{substrings: []string{"period", "lookback"}, value: constant(5)},
	{substrings: []string{"cooldown"}, segments: []string{"ms"}, value: constant(100)},
	{substrings: []string{"port"}, value: constant(3000)},
	{substrings: []string{"host"}, segments: []string{"ip"}, value: constant("127.0.0.1")},
	{substrings: []string{"name"}, value: func(slot string, _ Env) any {
		return "Generated_" + titleWords(slot)
	}},
	{substrings: []string{"description"}, value: func(slot string, _ Env) any {
		return "Auto-generated " + strings.ReplaceAll(slot, "_", " ")
	}},
	{substrings: []string{"version"}, value: constant("0.1.0")},
	{substrings: []string{"author"}, value: constant(DefaultAuthor)},
	{substrings: []string{"timestamp", "date"}, value: func(_ string, env Env) any {
		return env.Now.Format(TimestampLayout)
	}},
}

func (Heuristics) Attempt(slot string, env Env) (any, bool) {
	lower := strings.ToLower(slot)
	parts := strings.Split(lower, "_")
	for _, h := range heuristics {
		if h.matches(lower, parts) {
			return h.value(slot, env), true
		}
	}
	return nil, false
}

func (h heuristic) matches(lower string, parts []string) bool {
	for _, s := range h.substrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	for _, seg := range h.segments {
		for _, p := range parts {
			if p == seg {
				return true
			}
		}
	}
	return false
}

func titleWords(slot string) string {
	words := strings.FieldsFunc(slot, func(r rune) bool { return r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// Fallback accepts every slot.
type Fallback struct{}

func (Fallback) Name() string { return "fallback" }

func (Fallback) Attempt(slot string, _ Env) (any, bool) {
	return fmt.Sprintf("default_%s", slot), true
}

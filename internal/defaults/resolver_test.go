package defaults

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratforge/internal/naming"
	"stratforge/internal/params"
	"stratforge/internal/slots"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func newResolver(table map[string]any) *Resolver {
	return New(WithTable(table), WithClock(func() time.Time { return fixedNow }))
}

func env(caller params.Set) Env {
	return Env{Caller: caller, Table: params.Set{}, Rules: naming.ProjectRules, Now: fixedNow}
}

func TestResolve_OnlyTheGap(t *testing.T) {
	r := newResolver(nil)
	required := slots.NewSet("a", "b", "imbalance_threshold")
	caller := params.Set{"a": "x"}

	got := r.Resolve(required, caller)

	want := params.Set{"b": "default_b", "imbalance_threshold": 0.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Total(t *testing.T) {
	r := newResolver(nil)
	required := slots.NewSet("x", "y_ms", "strategy_name", "generated_at", "A_B_9")

	got := r.Resolve(required, nil)

	assert.Len(t, got, len(required))
	for name := range required {
		assert.True(t, got.Has(name), name)
	}
}

func TestResolve_CallerNilValueCountsAsPresent(t *testing.T) {
	r := newResolver(nil)
	got := r.Resolve(slots.NewSet("note"), params.Set{"note": nil})
	assert.Empty(t, got)
}

func TestResolve_TableBeatsHeuristics(t *testing.T) {
	r := newResolver(map[string]any{"imbalance_threshold": 0.6, "custom": "from-table"})

	got := r.Resolve(slots.NewSet("imbalance_threshold", "custom"), nil)

	assert.Equal(t, 0.6, got["imbalance_threshold"])
	assert.Equal(t, "from-table", got["custom"])
}

func TestResolve_GeneratorsBeatTable(t *testing.T) {
	r := newResolver(map[string]any{"strategy_name": "Generic Trading Strategy"})
	caller := params.Set{"strategy_description": "RSI momentum scalping strategy"}

	got := r.Resolve(slots.NewSet("strategy_name", "base_name", "strategy_class_name", "image_name", "project_name"), caller)

	assert.Equal(t, "Rsi Momentum Scalping Strategy", got["strategy_name"])
	assert.Equal(t, "rsi-momentum", got["base_name"])
	assert.Equal(t, "RsiMomentumScalpingStrategy", got["strategy_class_name"])
	assert.Equal(t, "rsi-momentum-algo", got["image_name"])
	assert.Equal(t, "rsi-momentum_20240309_140507", got["project_name"])
}

func TestResolve_GeneratorDeclinesToTable(t *testing.T) {
	r := newResolver(map[string]any{"strategy_name": "Generic Trading Strategy", "base_name": "generic"})

	got := r.Resolve(slots.NewSet("strategy_name", "base_name"), params.Set{"strategy_description": "no known words here"})

	assert.Equal(t, "Generic Trading Strategy", got["strategy_name"])
	assert.Equal(t, "generic", got["base_name"])
}

func TestResolve_TemplateScenario(t *testing.T) {
	tmpl := "name={a}, thr={b_threshold}"
	r := newResolver(nil)

	got := r.Resolve(slots.Extract(tmpl), params.Set{"a": "x"})

	assert.Equal(t, params.Set{"b_threshold": 0.5}, got)
}

func TestWithStrategies_StillTotal(t *testing.T) {
	r := New(WithStrategies(Table{}))
	got := r.Resolve(slots.NewSet("anything"), nil)
	assert.Equal(t, "default_anything", got["anything"])
}

func TestHeuristics(t *testing.T) {
	tests := []struct {
		slot string
		want any
	}{
		{"imbalance_threshold", 0.5},
		{"lookback_periods", 5},
		{"rolling_period", 5},
		{"signal_cooldown_ms", 100},
		{"timeout_ms", 100},
		{"metrics_port", 3000},
		{"db_host", "127.0.0.1"},
		{"source_ip", "127.0.0.1"},
		{"bot_name", "Generated_Bot Name"},
		{"long_description", "Auto-generated long description"},
		{"crate_version", "0.1.0"},
		{"author", DefaultAuthor},
		{"build_date", "2024-03-09 14:05:07"},
	}
	for _, tt := range tests {
		t.Run(tt.slot, func(t *testing.T) {
			got, ok := Heuristics{}.Attempt(tt.slot, env(nil))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeuristics_ShortMarkersNeedWholeSegments(t *testing.T) {
	// "description" contains "ip" and "terms" contains "ms"; neither is a segment.
	got, ok := Heuristics{}.Attempt("description", env(nil))
	require.True(t, ok)
	assert.Equal(t, "Auto-generated description", got)

	_, ok = Heuristics{}.Attempt("terms", env(nil))
	assert.False(t, ok)

	_, ok = Heuristics{}.Attempt("shipping", env(nil))
	assert.False(t, ok)
}

func TestGenerators(t *testing.T) {
	t.Run("class name from strategy name", func(t *testing.T) {
		got, ok := Generators{}.Attempt("strategy_class_name", env(params.Set{"strategy_name": "Grid Trader"}))
		require.True(t, ok)
		assert.Equal(t, "GridTraderStrategy", got)
	})

	t.Run("strategy name from base name", func(t *testing.T) {
		got, ok := Generators{}.Attempt("strategy_name", env(params.Set{"base_name": "grid-dca"}))
		require.True(t, ok)
		assert.Equal(t, "Grid Dca Strategy", got)
	})

	t.Run("project name falls back to rules", func(t *testing.T) {
		got, ok := Generators{}.Attempt("project_name", env(nil))
		require.True(t, ok)
		assert.Equal(t, "generic-algo_20240309_140507", got)
	})

	t.Run("declines without inputs", func(t *testing.T) {
		for _, slot := range []string{"strategy_name", "strategy_description", "strategy_class_name", "base_name", "image_name"} {
			_, ok := Generators{}.Attempt(slot, env(nil))
			assert.False(t, ok, slot)
		}
	})

	t.Run("ignores unknown slots", func(t *testing.T) {
		_, ok := Generators{}.Attempt("lookback_periods", env(nil))
		assert.False(t, ok)
	})

	t.Run("generated_at", func(t *testing.T) {
		got, ok := Generators{}.Attempt("generated_at", env(nil))
		require.True(t, ok)
		assert.Equal(t, "2024-03-09 14:05:07", got)
	})
}

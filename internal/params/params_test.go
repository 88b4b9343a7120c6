package params

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_CallerWins(t *testing.T) {
	defaults := Set{"a": 1, "b": "x"}
	caller := Set{"b": "y", "c": nil}

	got := Merge(defaults, caller)

	assert.Equal(t, Set{"a": 1, "b": "y", "c": nil}, got)
	assert.Equal(t, "x", defaults["b"], "inputs are not mutated")
}

func TestSet_CloneKeysHas(t *testing.T) {
	s := Set{"z": 1, "a": nil}
	c := s.Clone()
	c["m"] = true

	assert.Equal(t, []string{"a", "z"}, s.Keys())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("m"))
	assert.Empty(t, Set(nil).Clone())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{int64(5), 5},
		{uint8(7), 7},
		{float32(0.5), 0.5},
		{json.Number("12"), 12},
		{json.Number("0.25"), 0.25},
		{"s", "s"},
		{nil, nil},
		{true, true},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Normalize([]string{"x"})
	assert.Error(t, err)
	_, err = Normalize(map[string]any{})
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, 7, ParseValue("7"))
	assert.Equal(t, 0.7, ParseValue("0.7"))
	assert.Equal(t, true, ParseValue("true"))
	assert.Equal(t, false, ParseValue("FALSE"))
	assert.Equal(t, "hello", ParseValue("hello"))
	assert.Equal(t, "NaN", ParseValue("NaN"))
}

func TestParseAssignment(t *testing.T) {
	k, v, err := ParseAssignment("lookback_periods=9")
	require.NoError(t, err)
	assert.Equal(t, "lookback_periods", k)
	assert.Equal(t, 9, v)

	k, v, err = ParseAssignment("note=a=b")
	require.NoError(t, err)
	assert.Equal(t, "note", k)
	assert.Equal(t, "a=b", v)

	_, _, err = ParseAssignment("novalue")
	assert.Error(t, err)
	_, _, err = ParseAssignment("=3")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("accepts and normalizes", func(t *testing.T) {
		got, err := Validate(Set{
			"imbalance_threshold":  1,
			"min_volume_threshold": 0,
			"lookback_periods":     10.0,
			"signal_cooldown_ms":   int64(0),
			"project_name":         "My_proj-1",
			"extra":                "free text",
		})
		require.NoError(t, err)
		assert.Equal(t, 1.0, got["imbalance_threshold"])
		assert.Equal(t, 0.0, got["min_volume_threshold"])
		assert.Equal(t, 10, got["lookback_periods"])
		assert.Equal(t, 0, got["signal_cooldown_ms"])
		assert.Equal(t, "free text", got["extra"])
	})

	tests := []struct {
		name  string
		in    Set
		field string
	}{
		{"threshold above range", Set{"imbalance_threshold": 1.5}, "imbalance_threshold"},
		{"threshold as string", Set{"imbalance_threshold": "0.5"}, "imbalance_threshold"},
		{"negative volume", Set{"min_volume_threshold": -0.1}, "min_volume_threshold"},
		{"fractional lookback", Set{"lookback_periods": 2.5}, "lookback_periods"},
		{"zero lookback", Set{"lookback_periods": 0}, "lookback_periods"},
		{"bool cooldown", Set{"signal_cooldown_ms": true}, "signal_cooldown_ms"},
		{"project name with space", Set{"project_name": "my project"}, "project_name"},
		{"project name not string", Set{"project_name": 12}, "project_name"},
		{"unsupported type", Set{"tags": []string{"a"}}, "tags"},
		{"port as string", Set{"streaming_source_port": "abc"}, "streaming_source_port"},
		{"port above range", Set{"signal_output_port": 70000}, "signal_output_port"},
		{"port zero", Set{"signal_output_port": 0}, "signal_output_port"},
		{"fractional port", Set{"streaming_source_port": 80.5}, "streaming_source_port"},
		{"host with space", Set{"streaming_source_ip": "10.0.0.1; rm"}, "streaming_source_ip"},
		{"host not string", Set{"database_host": 12}, "database_host"},
		{"image name with space", Set{"image_name": "Bad Image!"}, "image_name"},
		{"image name uppercase", Set{"image_name": "Algo"}, "image_name"},
		{"image name leading dot", Set{"image_name": ".algo"}, "image_name"},
		{"quoted description", Set{"strategy_description": "short\""}, "strategy_description"},
		{"description not string", Set{"strategy_description": 5}, "strategy_description"},
		{"author with quote", Set{"author": `a"b`}, "author"},
		{"author with backslash", Set{"author": `a\b`}, "author"},
		{"name with brace", Set{"strategy_name": "My {x} bot"}, "strategy_name"},
		{"newline in string", Set{"crate_version": "0.1\n[x]"}, "crate_version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidate_TemplateSlots(t *testing.T) {
	got, err := Validate(Set{
		"streaming_source_port": 9000,
		"signal_output_port":    float64(9001),
		"streaming_source_ip":   "feed.example.com",
		"image_name":            "my-algo.v2",
		"strategy_description":  `  order book "imbalance" strategy \ v2 `,
		"author":                "Desk <desk@example.com>",
	})
	require.NoError(t, err)
	assert.Equal(t, 9000, got["streaming_source_port"])
	assert.Equal(t, 9001, got["signal_output_port"])
	assert.Equal(t, "feed.example.com", got["streaming_source_ip"])
	assert.Equal(t, "my-algo.v2", got["image_name"])
	assert.Equal(t, "order book 'imbalance' strategy / v2", got["strategy_description"])
	assert.Equal(t, "Desk <desk@example.com>", got["author"])
}

func TestValidateDescription(t *testing.T) {
	got, err := ValidateDescription(`  RSI "momentum" scalping \ strategy  `)
	require.NoError(t, err)
	assert.Equal(t, "RSI 'momentum' scalping / strategy", got)

	got, err = ValidateDescription("line one\nline two (with notes)")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two (with notes)", got)

	tests := []struct {
		name   string
		in     string
		reason string
	}{
		{"too short", "   short   ", "at least"},
		{"too long", strings.Repeat("x", 1001), "at most"},
		{"control char", "momentum \x00 strategy", "control character"},
		{"unbalanced paren", "momentum (strategy with", "unbalanced"},
		{"unbalanced brace", "momentum {strategy} }", "unbalanced"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateDescription(tt.in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "description", verr.Field)
			assert.Contains(t, verr.Reason, tt.reason)
		})
	}

	_, err = ValidateDescription(strings.Repeat("é", 1000))
	assert.NoError(t, err, "length counts characters, not bytes")
}

func TestDecode(t *testing.T) {
	dir := t.TempDir()

	t.Run("jsonc with comments", func(t *testing.T) {
		path := filepath.Join(dir, "p.jsonc")
		doc := `{
  // tuned for BTC
  "imbalance_threshold": 0.7,
  "lookback_periods": 8,
  "exchange": "kraken",
}`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

		got, err := Decode(path)
		require.NoError(t, err)
		assert.Equal(t, Set{"imbalance_threshold": 0.7, "lookback_periods": 8, "exchange": "kraken"}, got)
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "p.yaml")
		require.NoError(t, os.WriteFile(path, []byte("signal_cooldown_ms: 250\nverbose: true\n"), 0644))

		got, err := Decode(path)
		require.NoError(t, err)
		assert.Equal(t, Set{"signal_cooldown_ms": 250, "verbose": true}, got)
	})

	t.Run("nested values rejected", func(t *testing.T) {
		path := filepath.Join(dir, "nested.yaml")
		require.NoError(t, os.WriteFile(path, []byte("a:\n  b: 1\n"), 0644))

		_, err := Decode(path)
		assert.Error(t, err)
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := filepath.Join(dir, "p.toml")
		require.NoError(t, os.WriteFile(path, []byte("a = 1"), 0644))

		_, err := Decode(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported")
	})
}

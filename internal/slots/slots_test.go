package slots

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []string
	}{
		{"empty", "", []string{}},
		{"no slots", "plain text", []string{}},
		{"single", "hello {name}", []string{"name"}},
		{"duplicates collapse", "{a} and {a} and {b}", []string{"a", "b"}},
		{"escaped braces are not slots", "struct X {{ a: {a} }}", []string{"a"}},
		{"doubled escape around slot", "{{{a}}}", []string{"a"}},
		{"literal pair only", "{{not_a_slot}}", []string{}},
		{"case sensitive", "{Name} {name}", []string{"Name", "name"}},
		{"malformed skipped", "{ bad } {good} {", []string{"good"}},
		{"digits and underscores", "{lookback_periods_2}", []string{"lookback_periods_2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.template).Names()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract(%q) mismatch (-want +got):\n%s", tt.template, diff)
			}
		})
	}
}

// Every {name} that is not part of an escape sequence must be found, and
// nothing else.
func TestExtract_Totality(t *testing.T) {
	slotPattern := regexp.MustCompile(`\{(\w+)\}`)
	templates := []string{
		"name={a}, thr={b}",
		"fn main() {{ let x = {x}; let y = {y}; }}",
		"{a}{b}{c}{a}",
		"ENV={env_name}\nPORT={port}\n",
	}
	for _, tmpl := range templates {
		got := Extract(tmpl)
		for _, m := range slotPattern.FindAllStringSubmatch(strings.ReplaceAll(strings.ReplaceAll(tmpl, "{{", ""), "}}", ""), -1) {
			assert.True(t, got.Has(m[1]), "template %q: missing %q", tmpl, m[1])
		}
		for name := range got {
			assert.Contains(t, tmpl, "{"+name+"}", "template %q: extraneous %q", tmpl, name)
		}
	}
}

func TestScan_Tokens(t *testing.T) {
	tokens, err := Scan("a{{b}}{c}d")
	require.NoError(t, err)
	want := []Token{
		{Kind: TokenText, Value: "a{b}", Offset: 0},
		{Kind: TokenSlot, Value: "c", Offset: 6},
		{Kind: TokenText, Value: "d", Offset: 9},
	}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("Scan mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_Malformed(t *testing.T) {
	tests := []struct {
		template string
		offset   int
		reason   string
	}{
		{"abc {", 4, "unmatched '{'"},
		{"abc }", 4, "single '}'"},
		{"x {} y", 2, "empty slot name"},
		{"x {a b}", 2, "invalid character"},
		{"{a}}", 3, "single '}'"},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			_, err := Scan(tt.template)
			require.Error(t, err)
			var syn *SyntaxError
			require.True(t, errors.As(err, &syn))
			assert.Equal(t, tt.offset, syn.Offset)
			assert.Contains(t, syn.Reason, tt.reason)
		})
	}
}

func TestSet_Helpers(t *testing.T) {
	s := NewSet("a", "b", "c")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("z"))

	rest := s.Minus(func(n string) bool { return n == "b" })
	assert.Equal(t, []string{"a", "c"}, rest.Names())

	u := s.Union(NewSet("d"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, u.Names())

	assert.Equal(t, []string{"x"}, s.Missing([]string{"a", "x"}))
	assert.Nil(t, s.Missing([]string{"a", "b"}))
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("base_name"))
	assert.False(t, IsName(""))
	assert.False(t, IsName("base-name"))
}

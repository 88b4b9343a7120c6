package format

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratforge/internal/defaults"
	"stratforge/internal/params"
	"stratforge/internal/slots"
)

func newFormatter() *Formatter {
	clock := func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return New(defaults.New(defaults.WithClock(clock)))
}

func TestFormat_FillsGapFromDefaults(t *testing.T) {
	r, err := newFormatter().Format("name={a}, thr={b_threshold}", params.Set{"a": "x"})
	require.NoError(t, err)

	assert.Equal(t, "name=x, thr=0.5", r.Text)
	assert.Equal(t, []string{"b_threshold"}, r.Defaulted)
	assert.Equal(t, slots.NewSet("a", "b_threshold"), r.Slots)
}

func TestFormat_CallerWins(t *testing.T) {
	r, err := newFormatter().Format("{imbalance_threshold}", params.Set{"imbalance_threshold": 0.9})
	require.NoError(t, err)
	assert.Equal(t, "0.9", r.Text)
	assert.Empty(t, r.Defaulted)
}

func TestFormat_Escapes(t *testing.T) {
	r, err := newFormatter().Format("struct {name} {{ x: u8 }}", params.Set{"name": "Foo"})
	require.NoError(t, err)
	assert.Equal(t, "struct Foo { x: u8 }", r.Text)
}

func TestFormat_EmptyTemplate(t *testing.T) {
	r, err := newFormatter().Format("", nil)
	require.NoError(t, err)
	assert.Equal(t, "", r.Text)
	assert.Empty(t, r.Slots)
}

func TestFormat_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   string
		offset int
	}{
		{"unmatched open", "value {abc", 6},
		{"lone close", "value } here", 6},
		{"bad slot char", "{a-b}", 0},
		{"empty slot", "x{}", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := newFormatter().Format(tt.tmpl, nil)
			assert.Nil(t, r)
			require.ErrorIs(t, err, ErrMalformedTemplate)

			var ferr *FormattingError
			require.True(t, errors.As(err, &ferr))
			assert.Equal(t, tt.offset, ferr.Offset)
			assert.Contains(t, err.Error(), "offset")
		})
	}
}

func TestFormat_StrictMissingVariable(t *testing.T) {
	r, err := New(nil).Format("{present} {absent}", params.Set{"present": 1})
	assert.Nil(t, r)
	require.ErrorIs(t, err, ErrMissingVariable)

	var ferr *FormattingError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "absent", ferr.Slot)
	assert.Contains(t, err.Error(), "absent")
}

func TestFormat_NilValueRendersEmpty(t *testing.T) {
	r, err := New(nil).Format("[{note}]", params.Set{"note": nil})
	require.NoError(t, err)
	assert.Equal(t, "[]", r.Text)
}

func TestValue(t *testing.T) {
	tests := []struct {
		name string
		slot string
		in   any
		want string
	}{
		{"bool true", "flag", true, "true"},
		{"bool false", "flag", false, "false"},
		{"nil", "x", nil, ""},
		{"int", "n", 42, "42"},
		{"int64", "n", int64(-7), "-7"},
		{"integral float keeps fraction", "min_volume_threshold", 10.0, "10.0"},
		{"fractional float", "imbalance_threshold", 0.6, "0.6"},
		{"string verbatim", "x", "  keep  me ", "  keep  me "},
		{"multiline description collapses", "strategy_description", "  line one \n\n line two\n", "line one line two"},
		{"multiline other slot kept", "body", "a\nb", "a\nb"},
		{"description match ignores case", "Long_DESCRIPTION", "a\nb", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(tt.slot, tt.in))
		})
	}
}

// Package format renders templates: it fills slots with caller values and
// resolved defaults, normalizing each value to its textual form.
package format

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"stratforge/internal/defaults"
	"stratforge/internal/logging"
	"stratforge/internal/params"
	"stratforge/internal/slots"
)

var (
	// ErrMissingVariable is returned when a slot has no value and no
	// resolver is available to supply one.
	ErrMissingVariable = errors.New("missing variable")

	// ErrMalformedTemplate is returned when the template's brace syntax is
	// invalid.
	ErrMalformedTemplate = errors.New("malformed template")
)

// FormattingError describes why a template could not be rendered.
type FormattingError struct {
	Slot   string // set for ErrMissingVariable
	Offset int
	Err    error
	Detail string
}

func (e *FormattingError) Error() string {
	switch {
	case e.Slot != "":
		return fmt.Sprintf("template formatting failed: %v: %s", e.Err, e.Slot)
	case e.Detail != "":
		return fmt.Sprintf("template formatting failed: %v at offset %d: %s", e.Err, e.Offset, e.Detail)
	default:
		return fmt.Sprintf("template formatting failed: %v", e.Err)
	}
}

func (e *FormattingError) Unwrap() error { return e.Err }

// Rendered is a successfully formatted template.
type Rendered struct {
	Text string
	// Slots is every slot the template referenced.
	Slots slots.Set
	// Values is the merged parameter set used for substitution.
	Values params.Set
	// Defaulted lists the slots filled by the resolver, sorted.
	Defaulted []string
}

// Formatter renders templates. A nil resolver makes it strict: every slot
// must be supplied by the caller.
type Formatter struct {
	resolver *defaults.Resolver
}

// New returns a formatter backed by resolver.
func New(resolver *defaults.Resolver) *Formatter {
	return &Formatter{resolver: resolver}
}

// Format renders template with caller's values, filling the gap from the
// resolver. Caller values always win. On error no output is produced.
func (f *Formatter) Format(template string, caller params.Set) (*Rendered, error) {
	log := logging.Get(logging.CategoryFormat)

	tokens, err := slots.Scan(template)
	if err != nil {
		var syn *slots.SyntaxError
		if errors.As(err, &syn) {
			return nil, &FormattingError{Offset: syn.Offset, Err: ErrMalformedTemplate, Detail: syn.Reason}
		}
		return nil, &FormattingError{Err: ErrMalformedTemplate, Detail: err.Error()}
	}

	required := make(slots.Set)
	for _, tok := range tokens {
		if tok.Kind == slots.TokenSlot {
			required[tok.Value] = struct{}{}
		}
	}

	var resolved params.Set
	if f.resolver != nil {
		resolved = f.resolver.Resolve(required, caller)
	}
	values := params.Merge(resolved, caller)

	var b strings.Builder
	b.Grow(len(template))
	for _, tok := range tokens {
		if tok.Kind == slots.TokenText {
			b.WriteString(tok.Value)
			continue
		}
		v, ok := values[tok.Value]
		if !ok {
			return nil, &FormattingError{Slot: tok.Value, Offset: tok.Offset, Err: ErrMissingVariable}
		}
		b.WriteString(Value(tok.Value, v))
	}

	r := &Rendered{
		Text:      b.String(),
		Slots:     required,
		Values:    values,
		Defaulted: resolved.Keys(),
	}
	log.Debug("rendered %d slots (%d defaulted) into %d bytes", len(required), len(r.Defaulted), len(r.Text))
	return r, nil
}

// Value renders v as the text substituted for slot. Multi-line strings in
// description slots collapse to one line of trimmed, non-empty lines.
func Value(slot string, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		if strings.Contains(x, "\n") && strings.Contains(strings.ToLower(slot), "description") {
			return collapseLines(x)
		}
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	default:
		return fmt.Sprint(x)
	}
}

// formatFloat keeps a fractional part on integral values so 10.0 stays a
// floating-point literal in the generated source.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func collapseLines(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}

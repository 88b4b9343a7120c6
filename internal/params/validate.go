package params

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"stratforge/internal/naming"
)

const (
	// MinDescriptionLength and MaxDescriptionLength bound a trimmed
	// description, counted in characters.
	MinDescriptionLength = 10
	MaxDescriptionLength = 1000
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var (
	projectNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	hostPattern        = regexp.MustCompile(`^[A-Za-z0-9.-]+$`)
)

type numberRule struct {
	integer bool
	min     float64
	max     float64
	reason  string
}

// numberRules constrains the strategy parameters the generated source
// compiles in as numeric literals.
var numberRules = map[string]numberRule{
	"imbalance_threshold":  {min: 0, max: 1, reason: "must be a number between 0.0 and 1.0"},
	"min_volume_threshold": {min: 0, max: math.Inf(1), reason: "must be a non-negative number"},
	"lookback_periods":     {integer: true, min: 1, max: math.MaxInt32, reason: "must be a positive integer"},
	"signal_cooldown_ms":   {integer: true, min: 0, max: math.MaxInt32, reason: "must be a non-negative integer"},
}

// portRule applies to every *_port slot.
var portRule = numberRule{integer: true, min: 1, max: 65535, reason: "must be an integer port between 1 and 65535"}

func ruleFor(name string) (numberRule, bool) {
	if rule, ok := numberRules[name]; ok {
		return rule, true
	}
	if strings.HasSuffix(name, "_port") {
		return portRule, true
	}
	return numberRule{}, false
}

func isHostSlot(name string) bool {
	return strings.HasSuffix(name, "_ip") || strings.HasSuffix(name, "_host")
}

// Validate checks caller overrides and returns a normalized copy. Numeric
// kinds are unified to int and float64. The strategy parameters take the
// type the generated source declares: an integral float is accepted where
// an integer is required and an integer is widened where a float is.
// Nothing else is coerced.
func Validate(overrides Set) (Set, error) {
	out := make(Set, len(overrides))
	for _, name := range overrides.Keys() {
		v, err := Normalize(overrides[name])
		if err != nil {
			return nil, invalid(name, "%v", err)
		}

		if rule, ok := ruleFor(name); ok {
			if v, err = checkNumber(name, v, rule); err != nil {
				return nil, err
			}
			out[name] = v
			continue
		}

		s, isString := v.(string)
		switch {
		case name == "project_name":
			if !isString || !projectNamePattern.MatchString(s) {
				return nil, invalid(name, "must contain only letters, digits, '-' and '_'")
			}
		case name == "image_name":
			if !isString || !naming.ImageRules.Valid(s) {
				return nil, invalid(name, "must be at most %d lowercase letters, digits, '-', '_' or '.' starting with a letter or digit", naming.MaxLength)
			}
		case isHostSlot(name):
			if !isString || !hostPattern.MatchString(s) {
				return nil, invalid(name, "must be a host name or IP address")
			}
		case name == "strategy_description":
			if !isString {
				return nil, invalid(name, "must be a string")
			}
			if v, err = checkDescription(name, s); err != nil {
				return nil, err
			}
		case isString:
			if err := checkLiteral(name, s); err != nil {
				return nil, err
			}
		}

		out[name] = v
	}
	return out, nil
}

func checkNumber(name string, v any, rule numberRule) (any, error) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case float64:
		f = x
	default:
		return nil, invalid(name, "%s", rule.reason)
	}
	if math.IsNaN(f) || f < rule.min || f > rule.max {
		return nil, invalid(name, "%s", rule.reason)
	}
	if !rule.integer {
		return f, nil
	}
	if f != math.Trunc(f) {
		return nil, invalid(name, "%s", rule.reason)
	}
	return int(f), nil
}

// ValidateDescription trims a strategy description and checks its length,
// characters and delimiter balance. Double quotes become single quotes and
// backslashes become slashes so the text can sit inside quoted strings of
// the generated manifest and source.
func ValidateDescription(description string) (string, error) {
	return checkDescription("description", description)
}

func checkDescription(field, description string) (string, error) {
	d := strings.TrimSpace(description)
	n := utf8.RuneCountInString(d)
	if n < MinDescriptionLength {
		return "", invalid(field, "must be at least %d characters long", MinDescriptionLength)
	}
	if n > MaxDescriptionLength {
		return "", invalid(field, "must be at most %d characters long", MaxDescriptionLength)
	}
	if !utf8.ValidString(d) {
		return "", invalid(field, "is not valid UTF-8")
	}
	for _, r := range d {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return "", invalid(field, "contains control character %U", r)
		}
	}
	if pair, ok := unbalanced(d); ok {
		return "", invalid(field, "has unbalanced %s", pair)
	}
	d = strings.ReplaceAll(d, `"`, "'")
	d = strings.ReplaceAll(d, `\`, "/")
	return d, nil
}

// checkLiteral rejects text that cannot sit inside a quoted string of the
// generated manifest or inside a Rust format string.
func checkLiteral(field, s string) error {
	if !utf8.ValidString(s) {
		return invalid(field, "is not valid UTF-8")
	}
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			return invalid(field, "must not contain quotes or backslashes")
		case r == '{' || r == '}':
			return invalid(field, "must not contain braces")
		case unicode.IsControl(r):
			return invalid(field, "contains control character %U", r)
		}
	}
	return nil
}

// unbalanced reports the first delimiter pair whose counts differ.
func unbalanced(s string) (string, bool) {
	for _, pair := range []string{"()", "[]", "{}"} {
		if strings.Count(s, pair[:1]) != strings.Count(s, pair[1:]) {
			return "'" + pair + "'", true
		}
	}
	return "", false
}

// Package naming derives ecosystem-safe identifiers from free-text strategy
// descriptions.
package naming

import (
	"strings"
	"unicode"
)

const (
	// MaxLength bounds every sanitized identifier.
	MaxLength = 50

	// Prefix is prepended when a sanitized identifier would start with a
	// character other than a letter or digit.
	Prefix = "algo-"

	// Fallback is used when nothing usable survives sanitization.
	Fallback = "generic-algo"

	// Separator joins the words of a base identifier.
	Separator = "-"
)

// Rules controls which characters survive sanitization.
type Rules struct {
	// Extra lists the non-alphanumeric characters that are allowed.
	Extra string
	// Separator replaces whitespace and must be one of Extra.
	Separator byte
	Prefix    string
	Fallback  string
	MaxLength int
}

var (
	// ProjectRules produce project and package names: [a-z0-9_-].
	ProjectRules = Rules{Extra: "-_", Separator: '-', Prefix: Prefix, Fallback: Fallback, MaxLength: MaxLength}

	// ImageRules produce container image names: [a-z0-9_.-], alphanumeric
	// first character.
	ImageRules = Rules{Extra: "-_.", Separator: '-', Prefix: Prefix, Fallback: Fallback, MaxLength: MaxLength}
)

// Sanitize applies ProjectRules to candidate.
func Sanitize(candidate string) string {
	return ProjectRules.Sanitize(candidate)
}

// Sanitize lowercases candidate, turns whitespace into the separator, drops
// characters outside the allowed set, collapses runs of separators, and
// guarantees an alphanumeric first character and a bounded length. The
// result is a fixed point: sanitizing it again returns it unchanged.
func (r Rules) Sanitize(candidate string) string {
	var b strings.Builder
	lastSep := false
	for _, c := range strings.ToLower(candidate) {
		switch {
		case unicode.IsSpace(c):
			c = rune(r.Separator)
		case c > unicode.MaxASCII:
			continue
		case isAlnum(byte(c)):
		case strings.IndexByte(r.Extra, byte(c)) >= 0:
		default:
			continue
		}
		sep := !isAlnum(byte(c))
		if sep && lastSep {
			continue
		}
		lastSep = sep
		b.WriteRune(c)
	}

	out := b.String()
	if strings.Trim(out, r.Extra) == "" {
		out = r.Fallback
	}
	if !isAlnum(out[0]) {
		out = r.Prefix + strings.TrimLeft(out, r.Extra)
	}
	if len(out) > r.MaxLength {
		out = out[:r.MaxLength]
	}
	return strings.TrimRight(out, r.Extra)
}

// Valid reports whether name already satisfies the rules.
func (r Rules) Valid(name string) bool {
	return name != "" && r.Sanitize(name) == name
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// Package slots finds the named substitution points in a template.
//
// A slot is written {name} where name is one or more ASCII letters, digits,
// or underscores. A doubled delimiter ({{ or }}) is an escaped literal brace
// and never starts or ends a slot.
package slots

import (
	"fmt"
	"sort"
)

// TokenKind distinguishes literal text from slot references.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenSlot
)

// Token is one lexical unit of a template. For TokenText, Value holds the
// literal text with escapes already collapsed; for TokenSlot it holds the
// slot name.
type Token struct {
	Kind   TokenKind
	Value  string
	Offset int
}

// SyntaxError reports a malformed delimiter sequence.
type SyntaxError struct {
	Offset int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Reason)
}

// Scan splits a template into tokens. It fails on an opening brace that does
// not introduce a well-formed slot and on a lone closing brace.
func Scan(template string) ([]Token, error) {
	tokens, errs := scan(template, true)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return tokens, nil
}

// Extract returns the set of slot names referenced by template. It never
// fails: malformed fragments are skipped and scanning continues after them.
func Extract(template string) Set {
	tokens, _ := scan(template, false)
	set := make(Set)
	for _, tok := range tokens {
		if tok.Kind == TokenSlot {
			set[tok.Value] = struct{}{}
		}
	}
	return set
}

func scan(template string, strict bool) ([]Token, []*SyntaxError) {
	var (
		tokens []Token
		errs   []*SyntaxError
		text   []byte
		start  int
	)

	flush := func() {
		if len(text) > 0 {
			tokens = append(tokens, Token{Kind: TokenText, Value: string(text), Offset: start})
			text = nil
		}
	}

	i := 0
	for i < len(template) {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				if len(text) == 0 {
					start = i
				}
				text = append(text, '{')
				i += 2
				continue
			}
			end := i + 1
			for end < len(template) && isNameByte(template[end]) {
				end++
			}
			if end < len(template) && template[end] == '}' && end > i+1 {
				flush()
				tokens = append(tokens, Token{Kind: TokenSlot, Value: template[i+1 : end], Offset: i})
				i = end + 1
				start = i
				continue
			}
			errs = append(errs, &SyntaxError{Offset: i, Reason: openReason(template, i, end)})
			if strict {
				return nil, errs
			}
			if len(text) == 0 {
				start = i
			}
			text = append(text, c)
			i++
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				if len(text) == 0 {
					start = i
				}
				text = append(text, '}')
				i += 2
				continue
			}
			errs = append(errs, &SyntaxError{Offset: i, Reason: "single '}' encountered"})
			if strict {
				return nil, errs
			}
			if len(text) == 0 {
				start = i
			}
			text = append(text, c)
			i++
		default:
			if len(text) == 0 {
				start = i
			}
			text = append(text, c)
			i++
		}
	}
	flush()
	return tokens, errs
}

func openReason(template string, open, end int) string {
	switch {
	case end >= len(template):
		return "unmatched '{'"
	case end == open+1 && template[end] == '}':
		return "empty slot name"
	default:
		return fmt.Sprintf("invalid character %q in slot name", template[end])
	}
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// IsName reports whether s is a valid slot name.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

// Set is an unordered collection of slot names.
type Set map[string]struct{}

// NewSet builds a set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members in lexical order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Minus returns the members of s for which present reports false.
func (s Set) Minus(present func(string) bool) Set {
	out := make(Set)
	for n := range s {
		if !present(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Union returns a new set holding the members of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for n := range s {
		out[n] = struct{}{}
	}
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}

// Missing returns the members of required that are not in s, sorted.
func (s Set) Missing(required []string) []string {
	var out []string
	for _, n := range required {
		if !s.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

package validate

import (
	"strings"

	"stratforge/internal/artifact"
	"stratforge/internal/slots"
)

// Policy decides what errors from a checker mean for generation.
type Policy int

const (
	// Hard errors abort generation.
	Hard Policy = iota
	// Soft errors are reported as warnings.
	Soft
)

func (p Policy) String() string {
	if p == Soft {
		return "soft"
	}
	return "hard"
}

// Checker validates one artifact kind.
type Checker interface {
	Kind() artifact.Kind
	Policy() Policy
	// PreRender inspects the raw template.
	PreRender(template string) Report
	// PostRender inspects the rendered text.
	PostRender(text string) Report
}

var checkers = map[artifact.Kind]Checker{
	artifact.KindSource:         sourceChecker{},
	artifact.KindManifest:       manifestChecker{},
	artifact.KindContainerBuild: containerChecker{},
	artifact.KindIgnoreFile:     plainChecker{kind: artifact.KindIgnoreFile},
	artifact.KindDocumentation:  docChecker{},
	artifact.KindEnvExample:     envChecker{},
}

// For returns the checker for kind. Unknown kinds get a hard checker that
// only applies the common post-render checks.
func For(kind artifact.Kind) Checker {
	if c, ok := checkers[kind]; ok {
		return c
	}
	return plainChecker{kind: kind}
}

// requireSlots reports each name in required that template does not use.
func requireSlots(r *Report, template string, required ...string) {
	missing := slots.Extract(template).Missing(required)
	if len(missing) > 0 {
		r.Errorf("missing required variables: %s", strings.Join(missing, ", "))
	}
}

// Common runs the checks every rendered artifact must pass: paired
// delimiters balance and no doubled braces remain.
func Common(text string) Report {
	var r Report
	for _, pair := range [][2]string{{"(", ")"}, {"{", "}"}, {"[", "]"}} {
		opened, closed := strings.Count(text, pair[0]), strings.Count(text, pair[1])
		if opened != closed {
			r.Errorf("unbalanced %s%s: %d opening, %d closing", pair[0], pair[1], opened, closed)
		}
	}
	if strings.Contains(text, "{{") || strings.Contains(text, "}}") {
		r.Errorf("residual placeholder syntax: doubled braces remain after rendering")
	}
	return r
}

// plainChecker has no kind-specific rules.
type plainChecker struct{ kind artifact.Kind }

func (c plainChecker) Kind() artifact.Kind         { return c.kind }
func (plainChecker) Policy() Policy                { return Hard }
func (plainChecker) PreRender(string) Report       { return Report{} }
func (plainChecker) PostRender(text string) Report { return Common(text) }

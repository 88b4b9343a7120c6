// Package validate checks templates before rendering and generated text
// after it. Each artifact kind has a Checker; its Policy decides whether
// errors abort generation or are downgraded to warnings.
package validate

import (
	"fmt"
	"strings"

	"stratforge/internal/artifact"
)

// Severity ranks an issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Issue is one finding.
type Issue struct {
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Severity, i.Message)
}

// Report is an ordered list of issues.
type Report struct {
	Issues []Issue
}

// Errorf records an error.
func (r *Report) Errorf(format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a warning.
func (r *Report) Warnf(format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// Merge appends other's issues.
func (r *Report) Merge(other Report) {
	r.Issues = append(r.Issues, other.Issues...)
}

// HasErrors reports whether any issue is an error.
func (r Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity issues.
func (r Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the warning-severity issues.
func (r Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Stage names when a check ran.
type Stage string

const (
	StagePreRender  Stage = "pre-render"
	StagePostRender Stage = "post-render"
)

// StructuralError is returned when a hard checker reports errors.
type StructuralError struct {
	Kind   artifact.Kind
	Stage  Stage
	Issues []Issue
}

func (e *StructuralError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Message
	}
	return fmt.Sprintf("%s %s validation failed: %s", e.Kind, e.Stage, strings.Join(msgs, "; "))
}

// Enforce applies c's policy to a report. Under a hard policy errors become
// a *StructuralError and warnings are returned; under a soft policy every
// issue is returned as a warning.
func Enforce(c Checker, stage Stage, r Report) ([]Issue, error) {
	if c.Policy() == Soft {
		out := make([]Issue, 0, len(r.Issues))
		for _, i := range r.Issues {
			out = append(out, Issue{Severity: SeverityWarning, Message: i.Message})
		}
		return out, nil
	}
	if r.HasErrors() {
		return r.Warnings(), &StructuralError{Kind: c.Kind(), Stage: stage, Issues: r.Errors()}
	}
	return r.Warnings(), nil
}

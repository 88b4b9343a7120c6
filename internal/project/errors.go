package project

import (
	"context"
	"errors"
	"fmt"

	"stratforge/internal/artifact"
	"stratforge/internal/format"
	"stratforge/internal/params"
	"stratforge/internal/templates"
	"stratforge/internal/validate"
)

// Stage names the step of generation that failed.
type Stage string

const (
	StageRequest    Stage = "request"
	StageLoad       Stage = "load"
	StagePreRender  Stage = "pre-render"
	StageFormat     Stage = "format"
	StagePostRender Stage = "post-render"
)

// ErrorKind classifies generation failures for callers that only need the
// category.
type ErrorKind string

const (
	ErrorValidation         ErrorKind = "validation"
	ErrorTemplateLoad       ErrorKind = "template_load"
	ErrorTemplateFormatting ErrorKind = "template_formatting"
	ErrorStructural         ErrorKind = "structural_validation"
	ErrorCanceled           ErrorKind = "canceled"
)

// GenerationError wraps the cause of an aborted generation with the
// artifact and stage it happened in.
type GenerationError struct {
	Stage Stage
	Err   error

	kind   artifact.Kind
	scoped bool
}

func requestError(err error) *GenerationError {
	return &GenerationError{Stage: StageRequest, Err: err}
}

func artifactError(kind artifact.Kind, stage Stage, err error) *GenerationError {
	return &GenerationError{Stage: stage, Err: err, kind: kind, scoped: true}
}

// ArtifactKind returns the artifact being generated when the error
// occurred; ok is false for request-level failures.
func (e *GenerationError) ArtifactKind() (kind artifact.Kind, ok bool) {
	return e.kind, e.scoped
}

func (e *GenerationError) Error() string {
	if e.scoped {
		return fmt.Sprintf("generating %s (%s): %v", e.kind.Path(), e.Stage, e.Err)
	}
	return fmt.Sprintf("generation %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ErrorKind classifies the wrapped cause.
func (e *GenerationError) ErrorKind() ErrorKind {
	var (
		verr *params.ValidationError
		lerr *templates.LoadError
		ferr *format.FormattingError
		serr *validate.StructuralError
	)
	switch {
	case errors.As(e.Err, &verr):
		return ErrorValidation
	case errors.As(e.Err, &lerr):
		return ErrorTemplateLoad
	case errors.As(e.Err, &ferr):
		return ErrorTemplateFormatting
	case errors.As(e.Err, &serr):
		return ErrorStructural
	case errors.Is(e.Err, context.Canceled), errors.Is(e.Err, context.DeadlineExceeded):
		return ErrorCanceled
	default:
		return ErrorValidation
	}
}

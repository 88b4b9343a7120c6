package project

import (
	"context"
	"errors"
)

// ErrorInfo describes a failed generation to external callers.
type ErrorInfo struct {
	Kind         ErrorKind `json:"kind"`
	Message      string    `json:"message"`
	ArtifactKind string    `json:"artifact_kind,omitempty"`
}

// Result is the collaborator-facing outcome of a generation request.
type Result struct {
	Success   bool              `json:"success"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
	Warnings  []string          `json:"warnings"`
	Error     *ErrorInfo        `json:"error,omitempty"`

	// Project is the generated project on success.
	Project *Project `json:"-"`
}

// Run generates a project and folds the outcome into a Result. Artifacts
// are absent on failure.
func (a *Assembler) Run(ctx context.Context, req Request) Result {
	p, err := a.Generate(ctx, req)
	if err != nil {
		return Result{Warnings: []string{}, Error: Describe(err)}
	}
	return Result{
		Success:   true,
		Artifacts: p.Files(),
		Warnings:  p.WarningStrings(),
		Project:   p,
	}
}

// Describe converts an error from Generate into its external form.
func Describe(err error) *ErrorInfo {
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		return &ErrorInfo{Kind: ErrorValidation, Message: err.Error()}
	}
	info := &ErrorInfo{Kind: gerr.ErrorKind(), Message: gerr.Err.Error()}
	if kind, ok := gerr.ArtifactKind(); ok {
		info.ArtifactKind = kind.String()
	}
	return info
}

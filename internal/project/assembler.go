// Package project assembles the six artifacts of a generated strategy
// project from a description and optional parameter overrides.
package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stratforge/internal/artifact"
	"stratforge/internal/config"
	"stratforge/internal/defaults"
	"stratforge/internal/format"
	"stratforge/internal/logging"
	"stratforge/internal/naming"
	"stratforge/internal/params"
	"stratforge/internal/slots"
	"stratforge/internal/templates"
	"stratforge/internal/validate"
)

// State is a step of the generation state machine.
type State string

const (
	StateStart     State = "start"
	StateNaming    State = "naming"
	StateRendering State = "rendering"
	StateComplete  State = "complete"
	StateFailed    State = "failed"
)

// Request is one generation request.
type Request struct {
	Description string
	Overrides   params.Set
	// RequestID correlates log entries; generated when empty.
	RequestID string
}

// Warning is a soft validation issue recorded against an artifact.
type Warning struct {
	Kind    artifact.Kind  `json:"kind"`
	Stage   validate.Stage `json:"stage"`
	Message string         `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind.Path(), w.Message)
}

// Project is a complete, validated artifact set.
type Project struct {
	RequestID   string
	Name        string
	Description string
	Identity    naming.Identity
	// Params is the parameter set every artifact was rendered with.
	Params    params.Set
	Artifacts []artifact.Artifact
	Warnings  []Warning
	Digest    artifact.Hash
	CreatedAt time.Time
}

// Artifact returns the artifact of the given kind.
func (p *Project) Artifact(kind artifact.Kind) (artifact.Artifact, bool) {
	for _, a := range p.Artifacts {
		if a.Kind == kind {
			return a, true
		}
	}
	return artifact.Artifact{}, false
}

// Files maps each artifact's relative path to its content.
func (p *Project) Files() map[string]string {
	out := make(map[string]string, len(p.Artifacts))
	for _, a := range p.Artifacts {
		out[a.Path] = a.Content
	}
	return out
}

// WarningStrings renders the warnings as "path: message".
func (p *Project) WarningStrings() []string {
	out := make([]string, len(p.Warnings))
	for i, w := range p.Warnings {
		out[i] = w.String()
	}
	return out
}

// Assembler generates projects. It holds no per-request state and is safe
// for concurrent use; the template store is the only shared resource.
type Assembler struct {
	store    *templates.Store
	strategy params.Set
	table    map[string]any
	rules    naming.Rules
	now      func() time.Time
	newID    func() string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithStore sets the template store.
func WithStore(store *templates.Store) Option {
	return func(a *Assembler) { a.store = store }
}

// WithConfig applies a loaded configuration: template sources, naming
// rules, strategy parameters and the default table.
func WithConfig(cfg *config.Config) Option {
	return func(a *Assembler) {
		a.store = StoreFor(cfg)
		a.strategy = params.Set(cfg.StrategyValues())
		a.table = cfg.DefaultValues()
		a.rules = cfg.NamingRules()
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithIDGenerator replaces the request ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(a *Assembler) { a.newID = gen }
}

// StoreFor builds the template store a configuration describes.
func StoreFor(cfg *config.Config) *templates.Store {
	opts := []templates.Option{templates.WithDir(cfg.Templates.Dir)}
	for name, file := range cfg.Templates.Files {
		kind, err := artifact.ParseKind(name)
		if err != nil {
			logging.Get(logging.CategoryAssembler).Warn("ignoring template file for unknown kind %q", name)
			continue
		}
		opts = append(opts, templates.WithFile(kind, file))
	}
	return templates.NewStore(opts...)
}

// New returns an assembler over the default configuration unless options
// say otherwise.
func New(opts ...Option) *Assembler {
	a := &Assembler{now: time.Now, newID: uuid.NewString}
	WithConfig(config.DefaultConfig())(a)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// run carries the state of one generation.
type run struct {
	id    string
	state State
	log   *logging.Logger
	audit *logging.AuditLogger
}

func (r *run) transition(next State) {
	r.log.Debug("state %s -> %s", r.state, next)
	r.state = next
}

func (r *run) fail(err *GenerationError) (*Project, error) {
	r.transition(StateFailed)
	kind := ""
	if k, ok := err.ArtifactKind(); ok {
		kind = k.String()
	}
	r.log.Error("generation failed: %v", err)
	r.audit.GenerateFailed(kind, string(err.Stage), err.Err)
	return nil, err
}

// Generate produces a complete project or an error; it never returns a
// partial artifact set. Errors are *GenerationError.
func (a *Assembler) Generate(ctx context.Context, req Request) (*Project, error) {
	r := &run{id: req.RequestID, state: StateStart}
	if r.id == "" {
		r.id = a.newID()
	}
	r.log = logging.WithRequestID(logging.CategoryAssembler, r.id)
	r.audit = logging.Audit(r.id)
	timer := logging.StartTimer(logging.CategoryAssembler, "generate")
	r.audit.GenerateStart(len(req.Description), len(req.Overrides))

	description, err := params.ValidateDescription(req.Description)
	if err != nil {
		return r.fail(requestError(err))
	}
	overrides, err := params.Validate(req.Overrides)
	if err != nil {
		return r.fail(requestError(err))
	}
	if err := ctx.Err(); err != nil {
		return r.fail(requestError(err))
	}

	r.transition(StateNaming)
	now := a.now()
	identity := a.rules.Derive(description, now)
	base := params.Merge(a.strategy, params.Set{
		"strategy_description": description,
		"strategy_name":        identity.StrategyName,
		"strategy_class_name":  identity.ClassName,
		"base_name":            identity.BaseName,
		"project_name":         identity.ProjectName,
		"image_name":           identity.ImageName,
	})
	caller := params.Merge(base, overrides)

	r.transition(StateRendering)
	tmpls, err := a.store.LoadAll()
	if err != nil {
		var lerr *templates.LoadError
		if errors.As(err, &lerr) {
			return r.fail(artifactError(lerr.Kind, StageLoad, err))
		}
		return r.fail(requestError(err))
	}

	required := make(slots.Set)
	for _, t := range tmpls {
		required = required.Union(slots.Extract(t.Body))
	}
	resolver := defaults.New(
		defaults.WithTable(a.table),
		defaults.WithRules(a.rules),
		defaults.WithClock(func() time.Time { return now }),
	)
	values := params.Merge(resolver.Resolve(required, caller), caller)
	formatter := format.New(nil)

	project := &Project{
		RequestID:   r.id,
		Name:        format.Value("project_name", values["project_name"]),
		Description: description,
		Identity:    identity,
		Params:      values,
		Artifacts:   make([]artifact.Artifact, 0, len(tmpls)),
		CreatedAt:   now,
	}

	for _, t := range tmpls {
		if err := ctx.Err(); err != nil {
			return r.fail(artifactError(t.Kind, StagePreRender, err))
		}
		out, warnings, gerr := render(formatter, t, values)
		if gerr != nil {
			return r.fail(gerr)
		}
		for _, w := range warnings {
			r.audit.ArtifactWarning(t.Kind.String(), w.Message)
		}
		project.Artifacts = append(project.Artifacts, out)
		project.Warnings = append(project.Warnings, warnings...)
		r.audit.ArtifactRendered(t.Kind.String(), out.Path, out.Size(), len(warnings))
	}

	project.Digest = artifact.HashProject(project.Artifacts)
	r.transition(StateComplete)
	elapsed := timer.Stop()
	r.log.Info("generated %s (%d artifacts, %d warnings)", project.Name, len(project.Artifacts), len(project.Warnings))
	r.audit.GenerateComplete(project.Name, project.Digest.String(), len(project.Warnings), elapsed.Milliseconds())
	return project, nil
}

// render runs one template through pre-validation, formatting and
// post-validation.
func render(f *format.Formatter, t *templates.Template, values params.Set) (artifact.Artifact, []Warning, *GenerationError) {
	checker := validate.For(t.Kind)
	var warnings []Warning
	collect := func(stage validate.Stage, issues []validate.Issue) {
		for _, i := range issues {
			warnings = append(warnings, Warning{Kind: t.Kind, Stage: stage, Message: i.Message})
		}
	}

	issues, err := validate.Enforce(checker, validate.StagePreRender, checker.PreRender(t.Body))
	if err != nil {
		return artifact.Artifact{}, nil, artifactError(t.Kind, StagePreRender, err)
	}
	collect(validate.StagePreRender, issues)

	rendered, err := f.Format(t.Body, values)
	if err != nil {
		return artifact.Artifact{}, nil, artifactError(t.Kind, StageFormat, err)
	}

	issues, err = validate.Enforce(checker, validate.StagePostRender, checker.PostRender(rendered.Text))
	if err != nil {
		return artifact.Artifact{}, nil, artifactError(t.Kind, StagePostRender, err)
	}
	collect(validate.StagePostRender, issues)

	return artifact.New(t.Kind, rendered.Text), warnings, nil
}

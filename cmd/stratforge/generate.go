package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"stratforge/internal/format"
	"stratforge/internal/logging"
	"stratforge/internal/naming"
	"stratforge/internal/params"
	"stratforge/internal/project"
	"stratforge/internal/store"
	"stratforge/internal/workspace"
)

// setFlag collects repeated --set key=value flags.
type setFlag struct {
	values params.Set
}

var _ pflag.Value = (*setFlag)(nil)

func newSetFlag() *setFlag { return &setFlag{values: params.Set{}} }

func (f *setFlag) String() string {
	parts := make([]string, 0, len(f.values))
	for _, k := range f.values.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, f.values[k]))
	}
	return strings.Join(parts, ",")
}

func (f *setFlag) Set(s string) error {
	k, v, err := params.ParseAssignment(s)
	if err != nil {
		return err
	}
	f.values[k] = v
	return nil
}

func (f *setFlag) Type() string { return "key=value" }

type generateOptions struct {
	set         *setFlag
	paramsFile  string
	outputDir   string
	bundle      string
	interactive bool
	dryRun      bool
	noRecord    bool
	jsonOut     bool
}

// generateOutput is the --json document: the result plus where it went.
type generateOutput struct {
	project.Result
	Path   string `json:"path,omitempty"`
	Bundle string `json:"bundle,omitempty"`
	Digest string `json:"digest,omitempty"`
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{set: newSetFlag()}
	cmd := &cobra.Command{
		Use:   "generate [description...]",
		Short: "Generate a strategy project from a description",
		Long: `Generates the six project files (src/main.rs, Cargo.toml, Dockerfile,
.dockerignore, README.md, .env.example) for a strategy description.

Nothing is written unless every file renders and passes validation.`,
		Example: `  stratforge generate RSI momentum scalping strategy
  stratforge generate "order book imbalance" --set imbalance_threshold=0.7
  stratforge generate "volume breakout" --params-file tuned.yaml --bundle out.tar.zst`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.Var(opts.set, "set", "Override a template parameter (repeatable)")
	f.StringVar(&opts.paramsFile, "params-file", "", "YAML or JSONC file of parameter overrides")
	f.StringVarP(&opts.outputDir, "output", "o", "", "Output directory (default from config)")
	f.StringVar(&opts.bundle, "bundle", "", "Also write a .tar.zst archive of the project")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for the description and strategy parameters")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Render and validate without writing the project directory")
	f.BoolVar(&opts.noRecord, "no-record", false, "Do not add the project to the registry")
	f.BoolVar(&opts.jsonOut, "json", false, "Print the result as JSON")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, opts *generateOptions, args []string) error {
	out := cmd.OutOrStdout()
	description := strings.Join(args, " ")

	overrides := params.Set{}
	if opts.paramsFile != "" {
		fromFile, err := params.Decode(opts.paramsFile)
		if err != nil {
			return err
		}
		overrides = fromFile
	}
	overrides = params.Merge(overrides, opts.set.values)

	if opts.interactive {
		var err error
		description, overrides, err = promptRequest(description, overrides, a.cfg)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(description) == "" {
		return errors.New("a strategy description is required (pass it as arguments or use --interactive)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assembler := project.New(project.WithConfig(a.cfg))
	res := assembler.Run(ctx, project.Request{Description: description, Overrides: overrides})
	if !res.Success {
		if opts.jsonOut {
			if err := writeJSON(out, generateOutput{Result: res}); err != nil {
				return err
			}
		}
		if res.Error.ArtifactKind != "" {
			return fmt.Errorf("%s error in %s: %s", res.Error.Kind, res.Error.ArtifactKind, res.Error.Message)
		}
		return fmt.Errorf("%s error: %s", res.Error.Kind, res.Error.Message)
	}

	p := res.Project
	audit := logging.Audit(p.RequestID)
	tree := workspace.Tree{Name: p.Name, ModTime: p.CreatedAt, Artifacts: p.Artifacts}
	doc := generateOutput{Result: res, Digest: p.Digest.String()}

	if !opts.dryRun {
		root := a.cfg.Output.Dir
		if opts.outputDir != "" {
			root = opts.outputDir
		}
		dir, err := tree.Write(root)
		if err != nil {
			return err
		}
		doc.Path = dir
		audit.ProjectWritten(dir, len(p.Artifacts))
	}

	if err := a.finish(p, tree, opts, &doc); err != nil {
		if doc.Path == "" {
			return err
		}
		if rerr := os.RemoveAll(doc.Path); rerr != nil {
			return fmt.Errorf("%w (project directory %s was left in place: %v)", err, doc.Path, rerr)
		}
		a.logger.Debug("removed project directory after failure", zap.String("path", doc.Path))
		return fmt.Errorf("%w (removed %s)", err, doc.Path)
	}

	if opts.jsonOut {
		return writeJSON(out, doc)
	}
	printGenerated(out, p, doc)
	return nil
}

// finish runs the steps after the project directory is written. A failure
// here means the directory should not be kept.
func (a *app) finish(p *project.Project, tree workspace.Tree, opts *generateOptions, doc *generateOutput) error {
	if opts.bundle != "" {
		if err := writeBundle(tree, opts.bundle); err != nil {
			return err
		}
		doc.Bundle = opts.bundle
	}
	if a.cfg.Store.Enabled && !opts.dryRun && !opts.noRecord {
		if err := a.record(p, doc.Path); err != nil {
			if doc.Bundle != "" {
				os.Remove(doc.Bundle)
				doc.Bundle = ""
			}
			return err
		}
	}
	return nil
}

func writeBundle(tree workspace.Tree, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return tree.Bundle(f)
}

func (a *app) record(p *project.Project, dir string) error {
	s, err := store.NewProjectStore(a.cfg.Store.DatabasePath)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Record(store.FromProject(p, dir))
	if err != nil {
		return err
	}
	logging.Audit(p.RequestID).ProjectRecorded(rec.ID, rec.Name)
	a.logger.Debug("project recorded", zap.String("id", rec.ID), zap.String("name", rec.Name))
	return nil
}

func printGenerated(w io.Writer, p *project.Project, doc generateOutput) {
	if doc.Path != "" {
		title(w, "Generated "+p.Name)
		field(w, "directory", doc.Path)
	} else {
		title(w, "Rendered "+p.Name+" (dry run)")
	}
	if doc.Bundle != "" {
		field(w, "bundle", doc.Bundle)
	}
	image := format.Value("image_name", p.Params["image_name"])
	field(w, "strategy", format.Value("strategy_name", p.Params["strategy_name"]))
	field(w, "type", format.Value("strategy_class_name", p.Params["strategy_class_name"]))
	field(w, "image", image)
	field(w, "digest", p.Digest.Short())

	files := make([]string, 0, len(p.Artifacts))
	for _, art := range p.Artifacts {
		files = append(files, fmt.Sprintf("%-14s %6d bytes  %s", art.Path, art.Size(), mutedStyle.Render(art.Digest.Short())))
	}
	section(w, "Files", files)

	warnings := make([]string, 0, len(p.Warnings))
	for _, warn := range p.Warnings {
		warnings = append(warnings, warnStyle.Render(warn.String()))
	}
	section(w, "Warnings", warnings)

	if doc.Path != "" {
		cmds := naming.CommandsFor(image, p.Identity.BaseName)
		section(w, "Next steps", append([]string{"cd " + doc.Path}, cmds.Build[0], cmds.Run[0]))
	}
}

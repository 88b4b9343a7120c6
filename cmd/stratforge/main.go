// Command stratforge turns a natural-language strategy description into a
// containerized Rust trading-strategy project.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stratforge/internal/config"
	"stratforge/internal/logging"
)

// app carries state shared by every command of one invocation.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "stratforge",
		Short: "Generate containerized Rust trading strategies from descriptions",
		Long: `stratforge derives project names from a free-text strategy description,
fills the built-in Rust templates with validated parameters, checks every
rendered file, and writes the six-file project to the output directory.

Strategy parameters come from the configuration file, overridden per run
with --set key=value or --params-file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "stratforge.yaml", "Configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newGenerateCmd(a),
		newNameCmd(a),
		newTemplatesCmd(a),
		newProjectsCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads configuration and installs the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration %s: %w", a.configPath, err)
	}

	opts := cfg.LoggingOptions()
	if a.verbose {
		opts.Level = "debug"
	}
	if err := logging.Initialize(opts); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logging.Get(logging.CategoryBoot).Debug("loaded %s (templates=%q, store=%v)", a.configPath, cfg.Templates.Dir, cfg.Store.Enabled)

	a.cfg = cfg
	a.logger = logging.Zap().Named(string(logging.CategoryCLI))
	a.logger.Debug("configuration loaded", zap.String("path", a.configPath), zap.String("output", cfg.Output.Dir))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stratforge/internal/artifact"
	"stratforge/internal/format"
	"stratforge/internal/store"
	"stratforge/internal/workspace"
)

func (a *app) openStore() (*store.ProjectStore, error) {
	if !a.cfg.Store.Enabled {
		return nil, fmt.Errorf("the project registry is disabled (store.enabled in %s)", a.configPath)
	}
	return store.NewProjectStore(a.cfg.Store.DatabasePath)
}

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "List, inspect and remove generated projects",
	}
	cmd.AddCommand(newProjectsListCmd(a), newProjectsShowCmd(a), newProjectsRmCmd(a), newProjectsPruneCmd(a))
	return cmd
}

func newProjectsListCmd(a *app) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated projects, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			recs, err := s.List(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				if recs == nil {
					recs = []store.Record{}
				}
				return writeJSON(out, recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("no projects generated yet"))
				return nil
			}
			for _, r := range recs {
				fmt.Fprintf(out, "%s  %s  %s\n",
					titleStyle.Render(r.Name),
					r.StrategyName,
					mutedStyle.Render(r.CreatedAt.Local().Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum projects to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func newProjectsShowCmd(a *app) *cobra.Command {
	var (
		render  bool
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "show <name|id>",
		Short: "Show a generated project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := s.Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, r)
			}

			title(out, r.Name)
			field(out, "id", r.ID)
			field(out, "strategy", r.StrategyName)
			field(out, "type", r.ClassName)
			field(out, "image", r.ImageName)
			field(out, "path", r.Path)
			field(out, "digest", r.Digest)
			field(out, "created", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			field(out, "description", r.Description)

			values := make([]string, 0, len(r.Params))
			for _, k := range r.Params.Keys() {
				values = append(values, fmt.Sprintf("%s = %s", k, format.Value(k, r.Params[k])))
			}
			section(out, "Parameters", values)
			section(out, "Warnings", r.Warnings)

			if !render {
				return nil
			}
			if r.Path == "" {
				return fmt.Errorf("project %s was not written to disk", r.Name)
			}
			tree, err := workspace.Read(r.Path)
			if err != nil {
				return err
			}
			if digest := artifact.HashProject(tree.Artifacts).String(); digest != r.Digest {
				fmt.Fprintln(out, warnStyle.Render("\nfiles on disk differ from the generated project"))
			}
			for _, art := range tree.Artifacts {
				if art.Kind != artifact.KindDocumentation {
					continue
				}
				renderer, err := glamour.NewTermRenderer(
					glamour.WithAutoStyle(),
					glamour.WithWordWrap(80),
				)
				if err != nil {
					return err
				}
				md, err := renderer.Render(art.Content)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, md)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render the project README")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func newProjectsRmCmd(a *app) *cobra.Command {
	var files bool
	cmd := &cobra.Command{
		Use:   "rm <name|id>",
		Short: "Remove a project from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := s.Get(args[0])
			if err != nil {
				return err
			}
			if err := s.Delete(r.ID); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if files && r.Path != "" {
				if !strings.HasSuffix(r.Path, r.Name) {
					return fmt.Errorf("refusing to delete %s: path does not end in the project name", r.Path)
				}
				if err := os.RemoveAll(r.Path); err != nil {
					return fmt.Errorf("failed to remove %s: %w", r.Path, err)
				}
				a.logger.Info("removed project files", zap.String("path", r.Path))
				fmt.Fprintf(out, "removed %s and %s\n", r.Name, r.Path)
				return nil
			}
			fmt.Fprintf(out, "removed %s\n", r.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&files, "files", false, "Also delete the project directory")
	return cmd
}

func newProjectsPruneCmd(a *app) *cobra.Command {
	var (
		keep      int
		olderThan time.Duration
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Forget old projects, keeping the newest",
		Long: `Removes registry entries beyond the newest --keep projects, or those
older than --older-than. Project directories are left on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			var stats *store.CleanupStats
			if olderThan > 0 {
				stats, err = s.PruneOlderThan(time.Now().Add(-olderThan))
			} else {
				stats, err = s.PruneKeepNewest(keep)
			}
			if err != nil {
				return err
			}
			a.logger.Info("pruned registry", zap.Int("deleted", stats.Deleted))
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d projects\n", stats.Deleted)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 50, "Number of newest projects to keep")
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Prune projects older than this age instead (e.g. 720h)")
	return cmd
}

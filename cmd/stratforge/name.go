package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stratforge/internal/naming"
)

type nameOutput struct {
	Terms        []string `json:"terms"`
	Keywords     []string `json:"keywords"`
	BaseName     string   `json:"base_name"`
	ProjectName  string   `json:"project_name"`
	StrategyName string   `json:"strategy_name"`
	ClassName    string   `json:"class_name"`
	ImageName    string   `json:"image_name"`
	Commands     []string `json:"commands"`
}

func newNameCmd(a *app) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "name <text...>",
		Short: "Show the identifiers derived from a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			id := a.cfg.NamingRules().Derive(strings.Join(args, " "), time.Now())
			cmds := naming.CommandsFor(id.ImageName, id.BaseName)

			if jsonOut {
				return writeJSON(out, nameOutput{
					Terms:        nonNil(id.Terms),
					Keywords:     nonNil(id.Keywords),
					BaseName:     id.BaseName,
					ProjectName:  id.ProjectName,
					StrategyName: id.StrategyName,
					ClassName:    id.ClassName,
					ImageName:    id.ImageName,
					Commands:     cmds.All(),
				})
			}

			title(out, id.StrategyName)
			field(out, "terms", strings.Join(id.Terms, ", "))
			field(out, "base name", id.BaseName)
			field(out, "project", id.ProjectName)
			field(out, "type", id.ClassName)
			field(out, "image", id.ImageName)
			section(out, "Build", cmds.Build)
			section(out, "Run", cmds.Run)
			section(out, "Manage", cmds.Manage)
			section(out, "Debug", cmds.Debug)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stratforge/internal/artifact"
	"stratforge/internal/project"
	"stratforge/internal/slots"
	"stratforge/internal/validate"
)

func newTemplatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the configured template corpus",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List each template and the slots it uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			tmpls, err := project.StoreFor(a.cfg).LoadAll()
			if err != nil {
				return err
			}
			for _, t := range tmpls {
				title(out, t.Kind.Path())
				field(out, "kind", t.Kind.String())
				field(out, "template", t.Name)
				field(out, "slots", strings.Join(slots.Extract(t.Body).Names(), ", "))
			}
			return nil
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Run pre-render validation on every template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s := project.StoreFor(a.cfg)

			failed := 0
			for _, kind := range artifact.Kinds {
				t, err := s.Load(kind)
				if err != nil {
					fmt.Fprintf(out, "%s %s: %v\n", errorStyle.Render("FAIL"), kind.Path(), err)
					failed++
					continue
				}

				var problems []string
				if _, err := slots.Scan(t.Body); err != nil {
					problems = append(problems, errorStyle.Render(err.Error()))
				}
				c := validate.For(kind)
				warnings, err := validate.Enforce(c, validate.StagePreRender, c.PreRender(t.Body))
				if err != nil {
					problems = append(problems, errorStyle.Render(err.Error()))
				}

				status := titleStyle.Render("ok")
				if len(problems) > 0 {
					status = errorStyle.Render("FAIL")
					failed++
				}
				fmt.Fprintf(out, "%s %s (%s)\n", status, kind.Path(), t.Name)
				for _, p := range problems {
					fmt.Fprintf(out, "    %s\n", p)
				}
				for _, w := range warnings {
					fmt.Fprintf(out, "    %s\n", warnStyle.Render("warning: "+w.Message))
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d templates failed validation", failed, len(artifact.Kinds))
			}
			return nil
		},
	}

	cmd.AddCommand(list, check)
	return cmd
}

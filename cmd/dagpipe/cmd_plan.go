package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/dagpipe/render"
)

func newPlanCmd(flags *rootFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "plan <name|file.yaml>",
		Short: "Render the execution order of a pipeline definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, targets []string) error {
			switch format {
			case "table", "markdown", "dot":
			default:
				return fmt.Errorf("unknown format %q (want table, markdown or dot)", format)
			}
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				def, err := loadDefinition(app.Loader, targets[0])
				if err != nil {
					return err
				}
				p, err := outline(app.Loader, def)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch format {
				case "dot":
					fmt.Fprint(out, render.DOT(p))
				case "markdown":
					fmt.Fprintln(out, render.Plan(p, render.Markdown))
				default:
					fmt.Fprintln(out, render.Plan(p, render.ASCII))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, markdown or dot")
	return cmd
}

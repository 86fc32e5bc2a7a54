package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/dagpipe/dag"
	"github.com/kbukum/dagpipe/logger"
)

func newValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <name|file.yaml>...",
		Short: "Check that pipeline definitions build",
		Long:  "Validate parses each definition, resolves nested pipelines and node\nreferences, and orders the result. Task implementations are not required.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, targets []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				out := cmd.OutOrStdout()
				failed := 0
				for _, target := range targets {
					p, err := validate(app.Loader, target)
					if err != nil {
						failed++
						app.Logger.WithError(err).Debug("definition invalid", logger.Fields("target", target))
						fmt.Fprintf(out, "FAIL  %s: %v\n", target, err)
						continue
					}
					fmt.Fprintf(out, "ok    %s (%d nodes)\n", p.Name(), len(p.Nodes()))
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d definitions invalid", failed, len(targets))
				}
				return nil
			})
		},
	}
}

func validate(loader dag.Loader, target string) (*dag.Pipeline, error) {
	def, err := loadDefinition(loader, target)
	if err != nil {
		return nil, err
	}
	return outline(loader, def)
}

// File: cmd/run.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/automaweb/internal/observability"
	"github.com/xkilldash9x/automaweb/internal/recipe"
)

func newRunCmd() *cobra.Command {
	var validateOnly bool

	runCmd := &cobra.Command{
		Use:   "run <recipe.yaml>",
		Short: "Run a YAML recipe of browser steps",
		Long: `Run executes the steps of a recipe in order and stops at the first
failing step. The browser is closed when the recipe ends.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}

			rec, err := recipe.Load(appFs, args[0])
			if err != nil {
				return err
			}
			if validateOnly {
				fmt.Fprintf(cmd.OutOrStdout(), "Recipe %q is valid (%d steps).\n", rec.Name, len(rec.Steps))
				return nil
			}

			nav, _ := newNavigator(cfg)
			defer closeNavigator(ctx, nav)

			runner := recipe.NewRunner(nav, observability.GetLogger(),
				recipe.WithDefaultTimeout(cfg.Browser().WaitTimeout),
			)
			if err := runner.Run(ctx, rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recipe %q completed (%d steps).\n", rec.Name, len(rec.Steps))
			return nil
		},
	}

	runCmd.Flags().BoolVar(&validateOnly, "validate", false, "parse and validate the recipe without starting a browser")
	return runCmd
}

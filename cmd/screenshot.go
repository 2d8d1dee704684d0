// File: cmd/screenshot.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/dialog"
)

func newScreenshotCmd() *cobra.Command {
	var name string

	screenshotCmd := &cobra.Command{
		Use:   "screenshot <url>",
		Short: "Save a PNG of a page in the downloads directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			var path string
			err = withSession(ctx, cfg, args[0], func(ctx context.Context, nav *browser.Navigator, _ dialog.Dialogs) error {
				var err error
				path, err = nav.Screenshot(ctx, name)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	screenshotCmd.Flags().StringVar(&name, "name", "", "file name without extension (default screenshot_YYYYMMDD_HHMMSS)")
	return screenshotCmd
}

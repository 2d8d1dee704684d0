// File: cmd/cookies.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/dialog"
)

func newCookiesCmd() *cobra.Command {
	cookiesCmd := &cobra.Command{
		Use:   "cookies",
		Short: "Save or restore a logged-in browser session",
	}
	cookiesCmd.PersistentFlags().String("file", "", "cookie file (default is cookies.file from the config)")

	saveCmd := &cobra.Command{
		Use:   "save <url>",
		Short: "Open url, wait for a manual login, then save the session cookies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			path := cookieFile(cmd, cfg.Cookies().File)
			err = withSession(ctx, cfg, args[0], func(ctx context.Context, nav *browser.Navigator, _ dialog.Dialogs) error {
				return nav.SaveCookies(ctx, path)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cookies saved to %s\n", path)
			return nil
		},
	}

	loadCmd := &cobra.Command{
		Use:   "load <url>",
		Short: "Open url with saved cookies and keep the browser until confirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			path := cookieFile(cmd, cfg.Cookies().File)
			return withSession(ctx, cfg, args[0], func(ctx context.Context, nav *browser.Navigator, dlg dialog.Dialogs) error {
				if err := nav.LoadCookies(ctx, path); err != nil {
					return err
				}
				return dlg.Acknowledge(ctx, "Attention", "Session restored.\nConfirm to close the browser.")
			})
		},
	}

	cookiesCmd.AddCommand(saveCmd, loadCmd)
	return cookiesCmd
}

func cookieFile(cmd *cobra.Command, fallback string) string {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		return path
	}
	return fallback
}

// File: cmd/files.go
package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/automaweb/internal/config"
	"github.com/xkilldash9x/automaweb/internal/dialog"
	"github.com/xkilldash9x/automaweb/internal/fsutil"
	"github.com/xkilldash9x/automaweb/internal/observability"
)

// filesEnv bundles the helpers every files subcommand needs.
type filesEnv struct {
	cfg   *config.Config
	files *fsutil.Files
	dlg   dialog.Dialogs
}

func loadFilesEnv(cmd *cobra.Command) (*filesEnv, error) {
	cfg, err := configFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	logger := observability.GetLogger()
	dlg := newDialogs(cfg.Dialogs(), logger)
	files := fsutil.New(appFs, logger,
		fsutil.WithNotifier(dlg),
		fsutil.WithPollInterval(cfg.Files().PollInterval),
	)
	return &filesEnv{cfg: cfg, files: files, dlg: dlg}, nil
}

// filesRunE adapts a files handler to cobra.
func filesRunE(fn func(cmd *cobra.Command, env *filesEnv, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := loadFilesEnv(cmd)
		if err != nil {
			return err
		}
		return fn(cmd, env, args)
	}
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Manage downloaded files and folders",
	}
	filesCmd.AddCommand(
		newFilesNewestCmd(),
		newFilesListCmd(),
		newFilesZipCmd(),
		newFilesUnzipCmd(),
		newFilesWaitCmd(),
		newFilesPickCmd(),
		&cobra.Command{
			Use:   "copy <src> <dst>",
			Short: "Copy a file, keeping its permissions and modification time",
			Args:  cobra.ExactArgs(2),
			RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
				return env.files.Copy(args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "move <src> <dst>",
			Short: "Move a file, across devices if needed",
			Args:  cobra.ExactArgs(2),
			RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
				return env.files.Move(args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "rename <path> <new-name>",
			Short: "Rename a file inside its directory",
			Args:  cobra.ExactArgs(2),
			RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
				path, err := env.files.Rename(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rm <path>",
			Short: "Delete a file; a missing file is only logged",
			Args:  cobra.ExactArgs(1),
			RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
				return env.files.Delete(args[0])
			}),
		},
		&cobra.Command{
			Use:   "rmdir <dir>",
			Short: "Delete a folder and everything in it",
			Args:  cobra.ExactArgs(1),
			RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
				return env.files.DeleteTree(cmd.Context(), args[0])
			}),
		},
		&cobra.Command{
			Use:   "mkdir <dir>",
			Short: "Create a folder and any missing parents",
			Args:  cobra.ExactArgs(1),
			RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
				return env.files.CreateDir(args[0])
			}),
		},
	)
	return filesCmd
}

func newFilesNewestCmd() *cobra.Command {
	var ext string
	c := &cobra.Command{
		Use:   "newest [dir]",
		Short: "Print the most recently modified file (default dir is the downloads directory)",
		Args:  cobra.MaximumNArgs(1),
		RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
			dir := env.cfg.Browser().DownloadsDir
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := env.files.Newest(dir, ext)
			if err != nil {
				return err
			}
			if path != "" {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		}),
	}
	c.Flags().StringVar(&ext, "ext", "", "only consider files with this extension, e.g. .pdf")
	return c
}

func newFilesListCmd() *cobra.Command {
	var (
		ext       string
		recursive bool
		emptyOnly bool
	)
	c := &cobra.Command{
		Use:   "list <dir>",
		Short: "List files in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
			if emptyOnly {
				empty, err := env.files.IsEmpty(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), empty)
				return nil
			}

			list := env.files.List
			if recursive {
				list = env.files.ListRecursive
			}
			paths, err := list(args[0], ext)
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), paths)
			return nil
		}),
	}
	c.Flags().StringVar(&ext, "ext", "", "only list files with this extension")
	c.Flags().BoolVarP(&recursive, "recursive", "r", false, "include files in subfolders")
	c.Flags().BoolVar(&emptyOnly, "is-empty", false, "print whether the folder is empty instead of listing it")
	return c
}

func newFilesZipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zip <src> <archive-name>",
		Short: "Compress a file or folder into <archive-name>.zip",
		Args:  cobra.ExactArgs(2),
		RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
			path, err := env.files.Compress(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	}
}

func newFilesUnzipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unzip <archive> <dest>",
		Short: "Extract a zip archive into a folder",
		Args:  cobra.ExactArgs(2),
		RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
			return env.files.Extract(cmd.Context(), args[0], args[1])
		}),
	}
}

func newFilesWaitCmd() *cobra.Command {
	var timeout time.Duration
	c := &cobra.Command{
		Use:   "wait <path>",
		Short: "Block until a file appears, e.g. a finished download",
		Args:  cobra.ExactArgs(1),
		RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
			if timeout <= 0 {
				timeout = env.cfg.Files().WaitTimeout
			}
			if err := env.files.WaitForFile(cmd.Context(), args[0], timeout); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), args[0])
			return nil
		}),
	}
	c.Flags().DurationVar(&timeout, "timeout", 0, "how long to wait (default is files.wait_timeout from the config)")
	return c
}

func newFilesPickCmd() *cobra.Command {
	var (
		dir      bool
		multiple bool
		title    string
		filters  []string
	)
	c := &cobra.Command{
		Use:   "pick",
		Short: "Ask for a file or folder with a dialog and print the choice",
		Args:  cobra.NoArgs,
		RunE: filesRunE(func(cmd *cobra.Command, env *filesEnv, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			switch {
			case dir:
				path, err := env.dlg.SelectDir(ctx, titleOr(title, dialog.TitleSelectDir))
				if err != nil {
					return err
				}
				if path != "" {
					fmt.Fprintln(out, path)
				}
			case multiple:
				paths, err := env.dlg.SelectFiles(ctx, titleOr(title, dialog.TitleSelectFiles))
				if err != nil {
					return err
				}
				printLines(out, paths)
			default:
				var fs []dialog.Filter
				if len(filters) > 0 {
					fs = append(fs, dialog.Filter{Name: "Files", Patterns: filters})
				}
				path, err := env.dlg.SelectFile(ctx, titleOr(title, dialog.TitleSelectFile), fs...)
				if err != nil {
					return err
				}
				if path != "" {
					fmt.Fprintln(out, path)
				}
			}
			return nil
		}),
	}
	c.Flags().BoolVar(&dir, "dir", false, "pick a folder")
	c.Flags().BoolVar(&multiple, "multiple", false, "pick several files")
	c.Flags().StringVar(&title, "title", "", "dialog title")
	c.Flags().StringSliceVar(&filters, "filter", nil, "file name patterns, e.g. --filter '*.pdf'")
	return c
}

func titleOr(title, fallback string) string {
	if title != "" {
		return title
	}
	return fallback
}

// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/browser/launcher"
	"github.com/xkilldash9x/automaweb/internal/config"
	"github.com/xkilldash9x/automaweb/internal/dialog"
	"github.com/xkilldash9x/automaweb/internal/observability"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const configKey contextKey = "config"

// Function variables for dependency injection in tests.
var (
	launchBrowser browser.Launcher = launcher.Launch
	newDialogs                     = dialog.New
	appFs                          = afero.NewOsFs()
)

// persistentFlagKeys maps root flags onto the config keys they override.
var persistentFlagKeys = map[string]string{
	"browser":  "browser.name",
	"driver":   "browser.driver",
	"headless": "browser.headless",
}

// NewRootCommand returns a fresh command tree, for callers that run more than
// one command in a process.
func NewRootCommand() *cobra.Command {
	return newRootCmd()
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "automaweb",
		Short: "automaweb drives a web browser and tidies up the files it downloads.",
		Long: `automaweb runs scripted browser sessions (Chrome, Edge or Firefox),
saves and restores login cookies, and manages downloaded files.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			// 1. Config file, environment and flags.
			if err := initializeConfig(cmd, v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			// 2. Build and validate the config object.
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.Initialize(fallbackLoggerConfig(), consoleWriter(cmd))
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			// 3. Logger.
			observability.Initialize(cfg.Logger(), consoleWriter(cmd),
				observability.WithFileFields(observability.RunFields(cmd.Name(), Version)...))
			observability.GetLogger().Debug("Starting automaweb", zap.String("version", Version))

			// 4. Hand the config to subcommands.
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("browser", config.BrowserEdge, "browser to drive: edge, chrome or firefox")
	rootCmd.PersistentFlags().String("driver", config.DriverAuto, "automation backend: auto, chromedp or playwright")
	rootCmd.PersistentFlags().Bool("headless", false, "run the browser without a window")
	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	rootCmd.AddCommand(
		newRunCmd(),
		newCookiesCmd(),
		newScreenshotCmd(),
		newFilesCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command tree with a signal-aware context and logs the
// failure, if any. The caller decides the exit code.
func Execute(ctx context.Context) error {
	err := newRootCmd().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
	}
	observability.Sync()
	return err
}

// initializeConfig reads the config file and environment and binds the root flags.
func initializeConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("AUTOMAWEB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment apply.
	}

	for flag, key := range persistentFlagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// configFromContext returns the config stored by PersistentPreRunE.
func configFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

func consoleWriter(cmd *cobra.Command) zapcore.WriteSyncer {
	return zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr()))
}

func fallbackLoggerConfig() config.LoggerConfig {
	return config.LoggerConfig{Level: "info", Format: "console", ServiceName: "automaweb"}
}

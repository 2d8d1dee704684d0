// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Supported browser names.
const (
	BrowserChrome  = "chrome"
	BrowserEdge    = "edge"
	BrowserFirefox = "firefox"
)

// Supported driver backends.
const (
	DriverAuto       = "auto"
	DriverChromedp   = "chromedp"
	DriverPlaywright = "playwright"
)

// Config holds the entire application configuration.
// Sections are exported for viper's decoder; callers normally go through the getters.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	CookiesCfg CookiesConfig `mapstructure:"cookies" yaml:"cookies"`
	DialogsCfg DialogsConfig `mapstructure:"dialogs" yaml:"dialogs"`
	FilesCfg   FilesConfig   `mapstructure:"files" yaml:"files"`
}

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Cookies() CookiesConfig { return c.CookiesCfg }
func (c *Config) Dialogs() DialogsConfig { return c.DialogsCfg }
func (c *Config) Files() FilesConfig     { return c.FilesCfg }

// Browser Setters
func (c *Config) SetBrowserName(name string) { c.BrowserCfg.Name = name }
func (c *Config) SetBrowserHeadless(b bool)  { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserDriver(d string)  { c.BrowserCfg.Driver = d }
func (c *Config) SetDialogsEnabled(b bool)   { c.DialogsCfg.Enabled = b }
func (c *Config) SetCookiesFile(path string) { c.CookiesCfg.File = path }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the controlled browser.
type BrowserConfig struct {
	// Name is one of chrome, edge or firefox.
	Name string `mapstructure:"name" yaml:"name"`
	// Driver selects the backend. "auto" picks chromedp for Chromium browsers
	// and playwright for firefox.
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Headless bool   `mapstructure:"headless" yaml:"headless"`
	// ExecPath overrides the browser binary (chromedp only).
	ExecPath string   `mapstructure:"exec_path" yaml:"exec_path"`
	Args     []string `mapstructure:"args" yaml:"args"`
	// WaitTimeout bounds every element lookup. It is fixed when the session opens.
	WaitTimeout time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	// ActionDelay is slept before every element action.
	ActionDelay  time.Duration `mapstructure:"action_delay" yaml:"action_delay"`
	DownloadsDir string        `mapstructure:"downloads_dir" yaml:"downloads_dir"`
	Retry        RetryConfig   `mapstructure:"retry" yaml:"retry"`
}

// RetryConfig tunes the retry applied to interactions that fail transiently.
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts" yaml:"attempts"`
	Delay    time.Duration `mapstructure:"delay" yaml:"delay"`
}

// CookiesConfig configures cookie persistence.
type CookiesConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// DialogsConfig toggles native OS dialogs. When disabled, notifications are
// logged and confirmations are acknowledged automatically.
type DialogsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// FilesConfig configures the filesystem helpers.
type FilesConfig struct {
	WaitTimeout  time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "automaweb")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Browser --
	v.SetDefault("browser.name", BrowserEdge)
	v.SetDefault("browser.driver", DriverAuto)
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.wait_timeout", "10s")
	v.SetDefault("browser.action_delay", "0s")
	v.SetDefault("browser.downloads_dir", DefaultDownloadsDir())
	v.SetDefault("browser.retry.attempts", 3)
	v.SetDefault("browser.retry.delay", "1s")

	// -- Cookies --
	v.SetDefault("cookies.file", filepath.Join(DefaultDownloadsDir(), "cookies.json"))

	// -- Dialogs --
	v.SetDefault("dialogs.enabled", true)

	// -- Files --
	v.SetDefault("files.wait_timeout", "20s")
	v.SetDefault("files.poll_interval", "250ms")
}

// DefaultDownloadsDir returns ~/Downloads, or "Downloads" relative to the
// working directory when the home directory cannot be resolved.
func DefaultDownloadsDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return "Downloads"
	}
	return filepath.Join(home, "Downloads")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Paths may be written with a leading ~ in config files.
	var err error
	if cfg.CookiesCfg.File, err = homedir.Expand(cfg.CookiesCfg.File); err != nil {
		return nil, fmt.Errorf("invalid cookies.file: %w", err)
	}
	if cfg.BrowserCfg.DownloadsDir, err = homedir.Expand(cfg.BrowserCfg.DownloadsDir); err != nil {
		return nil, fmt.Errorf("invalid browser.downloads_dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.BrowserCfg.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	if c.FilesCfg.PollInterval <= 0 {
		return fmt.Errorf("files.poll_interval must be a positive duration")
	}
	if c.FilesCfg.WaitTimeout < 0 {
		return fmt.Errorf("files.wait_timeout must not be negative")
	}
	return nil
}

// Validate checks the browser settings.
func (b *BrowserConfig) Validate() error {
	b.Name = strings.ToLower(strings.TrimSpace(b.Name))
	switch b.Name {
	case BrowserChrome, BrowserEdge, BrowserFirefox:
	default:
		return fmt.Errorf("name %q is not supported (choose edge, chrome or firefox)", b.Name)
	}

	switch b.Driver {
	case DriverAuto, DriverChromedp, DriverPlaywright:
	default:
		return fmt.Errorf("driver %q is not supported (choose auto, chromedp or playwright)", b.Driver)
	}
	if b.Driver == DriverChromedp && b.Name == BrowserFirefox {
		return fmt.Errorf("the chromedp driver cannot control firefox")
	}

	if b.WaitTimeout <= 0 {
		return fmt.Errorf("wait_timeout must be a positive duration")
	}
	if b.ActionDelay < 0 {
		return fmt.Errorf("action_delay must not be negative")
	}
	if b.Retry.Attempts <= 0 {
		return fmt.Errorf("retry.attempts must be a positive integer")
	}
	if b.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay must not be negative")
	}
	return nil
}

// ResolvedDriver returns the backend that will actually be used.
func (b BrowserConfig) ResolvedDriver() string {
	if b.Driver != DriverAuto && b.Driver != "" {
		return b.Driver
	}
	if b.Name == BrowserFirefox {
		return DriverPlaywright
	}
	return DriverChromedp
}

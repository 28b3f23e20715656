// Package config assembles runtime settings from defaults, an optional
// YAML file, a .env file, UIVERIFY_* environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ui_verification/infrastructure/browser"
	"ui_verification/infrastructure/scenario"
	"ui_verification/infrastructure/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "UIVERIFY"

type Config struct {
	LogLevel     string        `mapstructure:"log_level"`
	ScenarioFile string        `mapstructure:"scenario_file"`
	ReportDir    string        `mapstructure:"report_dir"`
	NoFail       bool          `mapstructure:"no_fail"`
	Browser      BrowserConfig `mapstructure:"browser"`
	Targets      TargetConfig  `mapstructure:"targets"`
	S3           S3Config      `mapstructure:"s3"`
}

type BrowserConfig struct {
	Name              string        `mapstructure:"name"`
	Headless          bool          `mapstructure:"headless"`
	ViewportWidth     int           `mapstructure:"viewport_width"`
	ViewportHeight    int           `mapstructure:"viewport_height"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	AssertTimeout     time.Duration `mapstructure:"assert_timeout"`
	SlowMo            time.Duration `mapstructure:"slow_mo"`
}

type TargetConfig struct {
	AdminURL      string        `mapstructure:"admin_url"`
	DashboardURL  string        `mapstructure:"dashboard_url"`
	LoginCode     string        `mapstructure:"login_code"`
	ScreenshotDir string        `mapstructure:"screenshot_dir"`
	SettleDelay   time.Duration `mapstructure:"settle_delay"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// SetDefaults registers every key so environment variables can override it
func SetDefaults(v *viper.Viper) {
	bo := browser.DefaultOptions()
	targets := scenario.DefaultBuiltinConfig()

	v.SetDefault("log_level", "info")
	v.SetDefault("scenario_file", "")
	v.SetDefault("report_dir", "verification/reports")
	v.SetDefault("no_fail", false)

	v.SetDefault("browser.name", bo.Browser)
	v.SetDefault("browser.headless", bo.Headless)
	v.SetDefault("browser.viewport_width", bo.ViewportWidth)
	v.SetDefault("browser.viewport_height", bo.ViewportHeight)
	v.SetDefault("browser.navigation_timeout", bo.NavigationTimeout)
	v.SetDefault("browser.assert_timeout", bo.AssertTimeout)
	v.SetDefault("browser.slow_mo", time.Duration(0))

	v.SetDefault("targets.admin_url", targets.AdminURL)
	v.SetDefault("targets.dashboard_url", targets.DashboardURL)
	v.SetDefault("targets.login_code", targets.LoginCode)
	v.SetDefault("targets.screenshot_dir", targets.ScreenshotDir)
	v.SetDefault("targets.settle_delay", targets.SettleDelay)

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "ui-verification")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.use_path_style", false)
}

// Load reads the configuration. configFile may be empty; a missing .env
// file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would make every run fail
func (c *Config) Validate() error {
	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		return fmt.Errorf("viewport size must not be negative")
	}
	if c.Browser.NavigationTimeout < 0 || c.Browser.AssertTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.ReportDir == "" {
		return fmt.Errorf("report_dir must be set")
	}
	return nil
}

// BrowserOptions maps the browser section onto launcher options
func (c *Config) BrowserOptions() browser.Options {
	return browser.Options{
		Browser:           c.Browser.Name,
		Headless:          c.Browser.Headless,
		ViewportWidth:     c.Browser.ViewportWidth,
		ViewportHeight:    c.Browser.ViewportHeight,
		NavigationTimeout: c.Browser.NavigationTimeout,
		AssertTimeout:     c.Browser.AssertTimeout,
		SlowMo:            c.Browser.SlowMo,
	}
}

// Builtins maps the targets section onto the built-in scenario settings
func (c *Config) Builtins() scenario.BuiltinConfig {
	return scenario.BuiltinConfig{
		AdminURL:      c.Targets.AdminURL,
		DashboardURL:  c.Targets.DashboardURL,
		LoginCode:     c.Targets.LoginCode,
		ScreenshotDir: c.Targets.ScreenshotDir,
		SettleDelay:   c.Targets.SettleDelay,
	}
}

// ArchiveEnabled reports whether runs should be uploaded to S3
func (c *Config) ArchiveEnabled() bool {
	return c.S3.Bucket != ""
}

// S3Archive maps the s3 section onto archive settings
func (c *Config) S3Archive() storage.S3Config {
	return storage.S3Config{
		Endpoint:        c.S3.Endpoint,
		Region:          c.S3.Region,
		AccessKeyID:     c.S3.AccessKeyID,
		SecretAccessKey: c.S3.SecretAccessKey,
		Bucket:          c.S3.Bucket,
		Prefix:          c.S3.Prefix,
		UsePathStyle:    c.S3.UsePathStyle,
	}
}

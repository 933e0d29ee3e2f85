package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Flow     FlowConfig     `mapstructure:"flow"`
	Reveal   RevealConfig   `mapstructure:"reveal"`
	Intake   IntakeConfig   `mapstructure:"intake"`
	Identify IdentifyConfig `mapstructure:"identify"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
}

// FlowConfig holds step transition settings.
type FlowConfig struct {
	ProcessingDelay  time.Duration `mapstructure:"processing_delay"`
	DefaultSelection string        `mapstructure:"default_selection"`
}

type RevealConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// IntakeConfig controls the file picker. AllowedTypes only filters what is
// listed; dropped paths of any type are still read.
type IntakeConfig struct {
	StartDir     string   `mapstructure:"start_dir"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// IdentifyConfig selects the identifier: "static" or "catalog".
type IdentifyConfig struct {
	Mode  string `mapstructure:"mode"`
	Limit int    `mapstructure:"limit"`
}

// CatalogConfig holds sqlite settings for the drug catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

const (
	ModeStatic  = "static"
	ModeCatalog = "catalog"
)

// Load reads configuration from file and env. Env var overrides use prefix PILLRX_.
// An explicit path takes precedence over PILLRX_CONFIG.
func Load(path string) (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("flow.processing_delay", "3s")
	v.SetDefault("flow.default_selection", "Benadryl")
	v.SetDefault("reveal.threshold", 0.25)
	v.SetDefault("intake.start_dir", ".")
	v.SetDefault("intake.allowed_types", []string{".jpg", ".jpeg", ".png"})
	v.SetDefault("identify.mode", ModeStatic)
	v.SetDefault("identify.limit", 9)
	v.SetDefault("catalog.path", filepath.Join(home, ".local", "share", "pillrx", "catalog.db"))
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "pillrx", "pillrx.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := path
	if cfgPath == "" {
		cfgPath = os.Getenv("PILLRX_CONFIG")
	}
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "pillrx"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PILLRX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// only a missing default config is tolerated
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Identify.Mode = strings.ToLower(strings.TrimSpace(c.Identify.Mode))
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the wizard cannot run with.
func (c Config) Validate() error {
	if c.Flow.ProcessingDelay <= 0 {
		return fmt.Errorf("flow.processing_delay must be positive, got %s", c.Flow.ProcessingDelay)
	}
	if c.Reveal.Threshold <= 0 || c.Reveal.Threshold > 1 {
		return fmt.Errorf("reveal.threshold must be in (0, 1], got %v", c.Reveal.Threshold)
	}
	switch strings.ToLower(strings.TrimSpace(c.Identify.Mode)) {
	case ModeStatic, ModeCatalog:
	default:
		return fmt.Errorf("identify.mode must be %q or %q, got %q", ModeStatic, ModeCatalog, c.Identify.Mode)
	}
	return nil
}

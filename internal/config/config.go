package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Dataset
	DataPath         string   `mapstructure:"data_path" yaml:"data_path"`
	Delimiter        string   `mapstructure:"delimiter" yaml:"delimiter"`
	TargetColumn     string   `mapstructure:"target_column" yaml:"target_column"`
	NominalColumns   []string `mapstructure:"nominal_columns" yaml:"nominal_columns"`
	MissingThreshold float64  `mapstructure:"missing_threshold" yaml:"missing_threshold"`
	HistogramBins    int      `mapstructure:"histogram_bins" yaml:"histogram_bins"`

	// Dashboard defaults
	DefaultCategorical string `mapstructure:"default_categorical" yaml:"default_categorical"`
	DefaultComparison  string `mapstructure:"default_comparison" yaml:"default_comparison"`
	DefaultX           string `mapstructure:"default_x" yaml:"default_x"`
	DefaultY           string `mapstructure:"default_y" yaml:"default_y"`
	ChartWidth         int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight        int    `mapstructure:"chart_height" yaml:"chart_height"`

	// HTTP server
	ListenAddr         string `mapstructure:"listen_addr" yaml:"listen_addr"`
	SessionTTLMin      int    `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`
	ReadTimeoutSec     int    `mapstructure:"read_timeout_sec" yaml:"read_timeout_sec"`
	WriteTimeoutSec    int    `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`

	// Logging
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
	LogEncoding    string `mapstructure:"log_encoding" yaml:"log_encoding"`
	LogDevelopment bool   `mapstructure:"log_development" yaml:"log_development"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"data_path", "delimiter", "target_column", "nominal_columns", "missing_threshold", "histogram_bins",
	"default_categorical", "default_comparison", "default_x", "default_y", "chart_width", "chart_height",
	"listen_addr", "session_ttl_min", "read_timeout_sec", "write_timeout_sec", "shutdown_timeout_sec",
	"log_level", "log_encoding", "log_development",
}

// Dir returns ~/.housedash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".housedash"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_path", "train.csv")
	v.SetDefault("delimiter", "")
	v.SetDefault("target_column", "SalePrice")
	v.SetDefault("nominal_columns", []string{"MSSubClass"})
	v.SetDefault("missing_threshold", 0.5)
	v.SetDefault("histogram_bins", 50)

	v.SetDefault("default_categorical", "Neighborhood")
	v.SetDefault("default_comparison", "SalePrice")
	v.SetDefault("default_x", "GrLivArea")
	v.SetDefault("default_y", "SalePrice")
	v.SetDefault("chart_width", 960)
	v.SetDefault("chart_height", 540)

	v.SetDefault("listen_addr", "127.0.0.1:8050")
	v.SetDefault("session_ttl_min", 60)
	v.SetDefault("read_timeout_sec", 15)
	v.SetDefault("write_timeout_sec", 60)
	v.SetDefault("shutdown_timeout_sec", 10)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_encoding", "console")
	v.SetDefault("log_development", false)
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.housedash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("HOUSEDASH")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ranges that would otherwise fail deep inside the server.
func (c *Global) Validate() error {
	if c.MissingThreshold <= 0 || c.MissingThreshold > 1 {
		return fmt.Errorf("missing_threshold must be in (0, 1], got %v", c.MissingThreshold)
	}
	if c.HistogramBins <= 0 {
		return fmt.Errorf("histogram_bins must be positive, got %d", c.HistogramBins)
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.ChartWidth, c.ChartHeight)
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	return nil
}

// DelimiterRune decodes the delimiter setting. Zero means "sniff from the
// file extension".
func (c *Global) DelimiterRune() (rune, error) {
	switch strings.ToLower(c.Delimiter) {
	case "", "auto":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	}
	r := []rune(c.Delimiter)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	return r[0], nil
}

// SessionTTL is the idle lifetime of a dashboard session.
func (c *Global) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (c *Global) ReadTimeout() time.Duration     { return seconds(c.ReadTimeoutSec) }
func (c *Global) WriteTimeout() time.Duration    { return seconds(c.WriteTimeoutSec) }
func (c *Global) ShutdownTimeout() time.Duration { return seconds(c.ShutdownTimeoutSec) }

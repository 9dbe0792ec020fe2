package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// DataDir holds the persisted collections (datasets, audits, config).
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
	// DefaultMode is the dataset combination mode used when --mode is not given.
	DefaultMode string `mapstructure:"default_mode" yaml:"default_mode"`
	// ComputeTimeoutSec bounds the background computation before the
	// orchestrator falls back to synchronous execution.
	ComputeTimeoutSec int `mapstructure:"compute_timeout_sec" yaml:"compute_timeout_sec"`
	// RefreshIntervalSec is the live-refresh period for audit --watch.
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`
	// ChartTopN caps the number of categories drawn in the snapshot chart.
	ChartTopN int `mapstructure:"chart_top_n" yaml:"chart_top_n"`
	// SchemaSampleRows is how many leading rows schema discovery inspects.
	SchemaSampleRows int `mapstructure:"schema_sample_rows" yaml:"schema_sample_rows"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.insight/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".insight")
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
	v.SetEnvPrefix("INSIGHT")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("default_mode", "single")
	v.SetDefault("compute_timeout_sec", 10)
	v.SetDefault("refresh_interval_sec", 60)
	v.SetDefault("chart_top_n", 8)
	v.SetDefault("schema_sample_rows", 10)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".insight")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve data_dir default: ~/.insight/data
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, ".insight", "data")
	}
	return &c, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultExistingURL = "https://raw.githubusercontent.com/pandemic-tracking/bi/main/US%20states%20breakthrough%20reporting%20-%20Snapshot.csv"

// Global configuration structure.
type Global struct {
	// Column schema of the tracked sheet.
	KeyColumn          string   `mapstructure:"key_column" yaml:"key_column"`
	FirstNumericColumn string   `mapstructure:"first_numeric_column" yaml:"first_numeric_column"`
	LastNumericColumn  string   `mapstructure:"last_numeric_column" yaml:"last_numeric_column"`
	DecreaseWhitelist  []string `mapstructure:"decrease_whitelist" yaml:"decrease_whitelist"`
	IncreaseMultiplier float64  `mapstructure:"increase_multiplier" yaml:"increase_multiplier"`

	// Snapshot sources and report destination.
	SnapshotSheet  string `mapstructure:"snapshot_sheet" yaml:"snapshot_sheet"`
	ExistingURL    string `mapstructure:"existing_url" yaml:"existing_url"`
	ChecksWorkbook string `mapstructure:"checks_workbook" yaml:"checks_workbook"`

	// HTTP configuration
	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.bicheck/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".bicheck")
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
	v.SetEnvPrefix("BICHECK")
	v.AutomaticEnv()

	// Defaults match the tracked sheet's reporting schema.
	v.SetDefault("key_column", "Abbr")
	v.SetDefault("first_numeric_column", "BI cases")
	v.SetDefault("last_numeric_column", "Total Individuals not fully vaccinated")
	v.SetDefault("decrease_whitelist", []string{"Total Individuals not fully vaccinated"})
	v.SetDefault("increase_multiplier", 2.0)
	v.SetDefault("snapshot_sheet", "Snapshot")
	v.SetDefault("existing_url", defaultExistingURL)
	v.SetDefault("checks_workbook", "")
	v.SetDefault("http_timeout_sec", 60)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".bicheck")
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
	return &c, nil
}

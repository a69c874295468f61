// Package config handles configuration loading for the alpha/beta
// analyzer. It supports YAML config files with environment variable
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/seenimoa/alphabeta/pkg/models"
)

// Config represents the complete application configuration.
type Config struct {
	Analysis   AnalysisConfig   `mapstructure:"analysis"   yaml:"analysis"`
	Datasource DatasourceConfig `mapstructure:"datasource" yaml:"datasource"`
	API        APIConfig        `mapstructure:"api"        yaml:"api"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
}

// AnalysisConfig holds the default analysis parameters. Individual CLI
// flags and API request fields override these per run.
type AnalysisConfig struct {
	RiskFreeRatePct float64 `mapstructure:"risk_free_rate"   yaml:"risk_free_rate"` // annual %, e.g. 5.0
	PeriodWeeks     int     `mapstructure:"period_weeks"     yaml:"period_weeks"`   // 156 (3y) or 260 (5y)
	WindowWeeks     int     `mapstructure:"window_weeks"     yaml:"window_weeks"`
	StepWeeks       int     `mapstructure:"step_weeks"       yaml:"step_weeks"`
	UseLogReturns   bool    `mapstructure:"log_returns"      yaml:"log_returns"`
	ResultCacheTTL  int     `mapstructure:"result_cache_ttl" yaml:"result_cache_ttl"` // seconds
}

// DatasourceConfig holds Yahoo Finance client settings.
type DatasourceConfig struct {
	CacheTTL          int `mapstructure:"cache_ttl"           yaml:"cache_ttl"` // seconds
	ConcurrentFetches int `mapstructure:"concurrent_fetches"  yaml:"concurrent_fetches"`
	RequestsPerSecond int `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.alphabeta/config.yaml (home directory)
//  3. /etc/alphabeta/config.yaml (system)
//
// Environment variables override config file values.
// Format: ALPHABETA_<SECTION>_<KEY>, e.g., ALPHABETA_API_PORT
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".alphabeta"))
	v.AddConfigPath("/etc/alphabeta")

	v.SetEnvPrefix("ALPHABETA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("ALPHABETA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects parameter values outside their supported ranges.
func (c *Config) Validate() error {
	if c.Analysis.RiskFreeRatePct < 0 || c.Analysis.RiskFreeRatePct > 20 {
		return fmt.Errorf("analysis.risk_free_rate %.2f out of range [0, 20]", c.Analysis.RiskFreeRatePct)
	}
	if c.Analysis.PeriodWeeks != models.DefaultPeriodWeeks && c.Analysis.PeriodWeeks != 260 {
		return fmt.Errorf("analysis.period_weeks %d unsupported (use 156 or 260)", c.Analysis.PeriodWeeks)
	}
	if c.Analysis.WindowWeeks < 2 {
		return fmt.Errorf("analysis.window_weeks %d too small", c.Analysis.WindowWeeks)
	}
	if c.Analysis.StepWeeks < 1 {
		return fmt.Errorf("analysis.step_weeks %d too small", c.Analysis.StepWeeks)
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	return nil
}

// Params converts the configured analysis defaults into run parameters for
// the given instrument pair.
func (c *Config) Params(stock, benchmark string) models.AnalysisParams {
	return models.AnalysisParams{
		Stock:           stock,
		Benchmark:       benchmark,
		RiskFreeRatePct: c.Analysis.RiskFreeRatePct,
		PeriodWeeks:     c.Analysis.PeriodWeeks,
		UseLogReturns:   c.Analysis.UseLogReturns,
		WindowWeeks:     c.Analysis.WindowWeeks,
		StepWeeks:       c.Analysis.StepWeeks,
	}
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Analysis defaults: 3-year weekly horizon, quarterly rolling step.
	v.SetDefault("analysis.risk_free_rate", 5.0)
	v.SetDefault("analysis.period_weeks", models.DefaultPeriodWeeks)
	v.SetDefault("analysis.window_weeks", models.DefaultWindowWeeks)
	v.SetDefault("analysis.step_weeks", models.DefaultStepWeeks)
	v.SetDefault("analysis.log_returns", false)
	v.SetDefault("analysis.result_cache_ttl", 300) // 5 minutes

	// Datasource defaults
	v.SetDefault("datasource.cache_ttl", 900) // 15 minutes
	v.SetDefault("datasource.concurrent_fetches", 4)
	v.SetDefault("datasource.requests_per_second", 5)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

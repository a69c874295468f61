package config

import (
	"os"
	"path/filepath"
	"testing"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	// Unset any env vars that would interfere
	envVars := []string{
		"ALPHABETA_ANALYSIS_RISK_FREE_RATE", "ALPHABETA_ANALYSIS_PERIOD_WEEKS",
		"ALPHABETA_API_PORT", "ALPHABETA_LOGGING_LEVEL",
	}
	for _, e := range envVars {
		os.Unsetenv(e)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Analysis defaults
	if cfg.Analysis.RiskFreeRatePct != 5.0 {
		t.Errorf("Analysis.RiskFreeRatePct: got %f, want 5.0", cfg.Analysis.RiskFreeRatePct)
	}
	if cfg.Analysis.PeriodWeeks != 156 {
		t.Errorf("Analysis.PeriodWeeks: got %d, want 156", cfg.Analysis.PeriodWeeks)
	}
	if cfg.Analysis.WindowWeeks != 156 {
		t.Errorf("Analysis.WindowWeeks: got %d, want 156", cfg.Analysis.WindowWeeks)
	}
	if cfg.Analysis.StepWeeks != 13 {
		t.Errorf("Analysis.StepWeeks: got %d, want 13", cfg.Analysis.StepWeeks)
	}
	if cfg.Analysis.UseLogReturns {
		t.Error("Analysis.UseLogReturns should be false by default")
	}
	if cfg.Analysis.ResultCacheTTL != 300 {
		t.Errorf("Analysis.ResultCacheTTL: got %d, want 300", cfg.Analysis.ResultCacheTTL)
	}

	// Datasource defaults
	if cfg.Datasource.CacheTTL != 900 {
		t.Errorf("Datasource.CacheTTL: got %d, want 900", cfg.Datasource.CacheTTL)
	}
	if cfg.Datasource.ConcurrentFetches != 4 {
		t.Errorf("Datasource.ConcurrentFetches: got %d, want 4", cfg.Datasource.ConcurrentFetches)
	}
	if cfg.Datasource.RequestsPerSecond != 5 {
		t.Errorf("Datasource.RequestsPerSecond: got %d, want 5", cfg.Datasource.RequestsPerSecond)
	}

	// API defaults
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
analysis:
  risk_free_rate: 4.5
  period_weeks: 260
  log_returns: true
datasource:
  concurrent_fetches: 8
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Analysis.RiskFreeRatePct != 4.5 {
		t.Errorf("Analysis.RiskFreeRatePct: got %f, want 4.5", cfg.Analysis.RiskFreeRatePct)
	}
	if cfg.Analysis.PeriodWeeks != 260 {
		t.Errorf("Analysis.PeriodWeeks: got %d, want 260", cfg.Analysis.PeriodWeeks)
	}
	if !cfg.Analysis.UseLogReturns {
		t.Error("Analysis.UseLogReturns should be true")
	}
	if cfg.Analysis.WindowWeeks != 156 {
		t.Errorf("Analysis.WindowWeeks should keep default 156, got %d", cfg.Analysis.WindowWeeks)
	}
	if cfg.Datasource.ConcurrentFetches != 8 {
		t.Errorf("Datasource.ConcurrentFetches: got %d, want 8", cfg.Datasource.ConcurrentFetches)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

// ── Validate ──

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			Analysis: AnalysisConfig{RiskFreeRatePct: 5, PeriodWeeks: 156, WindowWeeks: 156, StepWeeks: 13},
			API:      APIConfig{Port: 8080},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative risk-free rate", func(c *Config) { c.Analysis.RiskFreeRatePct = -1 }},
		{"risk-free rate above 20", func(c *Config) { c.Analysis.RiskFreeRatePct = 25 }},
		{"unsupported period", func(c *Config) { c.Analysis.PeriodWeeks = 100 }},
		{"window below 2", func(c *Config) { c.Analysis.WindowWeeks = 1 }},
		{"step below 1", func(c *Config) { c.Analysis.StepWeeks = 0 }},
		{"port zero", func(c *Config) { c.API.Port = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should reject this config")
			}
		})
	}

	if err := base().Validate(); err != nil {
		t.Errorf("Validate() rejected a valid config: %v", err)
	}
}

// ── Params ──

func TestParamsCarriesDefaults(t *testing.T) {
	cfg := &Config{
		Analysis: AnalysisConfig{RiskFreeRatePct: 4.0, PeriodWeeks: 260, WindowWeeks: 104, StepWeeks: 26, UseLogReturns: true},
	}
	p := cfg.Params("AAPL", "SPY")

	if p.Stock != "AAPL" || p.Benchmark != "SPY" {
		t.Errorf("instruments: got %q vs %q", p.Stock, p.Benchmark)
	}
	if p.RiskFreeRatePct != 4.0 {
		t.Errorf("RiskFreeRatePct: got %f, want 4.0", p.RiskFreeRatePct)
	}
	if p.PeriodWeeks != 260 || p.WindowWeeks != 104 || p.StepWeeks != 26 {
		t.Errorf("weeks: got %d/%d/%d", p.PeriodWeeks, p.WindowWeeks, p.StepWeeks)
	}
	if !p.UseLogReturns {
		t.Error("UseLogReturns should carry over")
	}
}

// ── homeDir ──

func TestHomeDirReturnsNonEmpty(t *testing.T) {
	h := homeDir()
	if h == "" {
		t.Error("homeDir() should not return empty string")
	}
}

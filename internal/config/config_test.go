package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_TYPE", "")
	t.Setenv("SESSION_DURATION", "")
	t.Setenv("RATE_LIMIT_BURST", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %v, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %v, want sqlite", cfg.DatabaseType)
	}
	if cfg.SessionDuration != 7*24*time.Hour {
		t.Errorf("SessionDuration = %v, want one week", cfg.SessionDuration)
	}
	if cfg.RateLimitBurst != 5 {
		t.Errorf("RateLimitBurst = %v, want 5", cfg.RateLimitBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(*Config) bool
	}{
		{
			name:  "database type is lowercased",
			key:   "DB_TYPE",
			value: "Postgres",
			check: func(c *Config) bool { return c.DatabaseType == "postgres" },
		},
		{
			name:  "session duration parses",
			key:   "SESSION_DURATION",
			value: "2h",
			check: func(c *Config) bool { return c.SessionDuration == 2*time.Hour },
		},
		{
			name:  "invalid duration falls back",
			key:   "SESSION_DURATION",
			value: "soon",
			check: func(c *Config) bool { return c.SessionDuration == 7*24*time.Hour },
		},
		{
			name:  "debug flag",
			key:   "DEBUG",
			value: "true",
			check: func(c *Config) bool { return c.Debug },
		},
		{
			name:  "invalid int falls back",
			key:   "RATE_LIMIT_RPS",
			value: "many",
			check: func(c *Config) bool { return c.RateLimitRPS == 1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if cfg := Load(); !tt.check(cfg) {
				t.Errorf("Load() with %s=%q did not apply override", tt.key, tt.value)
			}
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ArenaSize != 7 || cfg.TickRate != 20 {
		t.Fatalf("defaults = arena %d tick %d, want 7 and 20", cfg.ArenaSize, cfg.TickRate)
	}
	if cfg.TickInterval() != 50*time.Millisecond {
		t.Fatalf("tick interval = %v, want 50ms", cfg.TickInterval())
	}
}

func TestLoadLayersEnvFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "WORDFIGHT_ARENA_SIZE=9\nWORDFIGHT_TICK_RATE=30\nWORDFIGHT_TOKEN_TTL=2m\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// godotenv 不覆盖已有变量，测试结束后清理
	t.Cleanup(func() {
		os.Unsetenv("WORDFIGHT_ARENA_SIZE")
		os.Unsetenv("WORDFIGHT_TICK_RATE")
		os.Unsetenv("WORDFIGHT_TOKEN_TTL")
	})
	t.Setenv("WORDFIGHT_TICK_RATE", "40")

	cfg, err := Load(envFile, []string{"-arena-size", "11"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ArenaSize != 11 {
		t.Fatalf("arena size = %d, want flag value 11", cfg.ArenaSize)
	}
	if cfg.TickRate != 40 {
		t.Fatalf("tick rate = %d, want env value 40", cfg.TickRate)
	}
	if cfg.TokenTTL != 2*time.Minute {
		t.Fatalf("token ttl = %v, want 2m from .env", cfg.TokenTTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "arena too small", mutate: func(c *Config) { c.ArenaSize = 1 }},
		{name: "tick rate zero", mutate: func(c *Config) { c.TickRate = 0 }},
		{name: "token without secret", mutate: func(c *Config) { c.RequireToken = true }},
		{name: "no input budget", mutate: func(c *Config) { c.InputBurst = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("WORDFIGHT_ARENA_SIZE", "seven")
	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected error for non-numeric arena size")
	}
}

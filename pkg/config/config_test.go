package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
auth:
  api_key: test-key
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Jobs.Retention != 24*time.Hour {
		t.Fatalf("expected 24h retention, got %v", cfg.Jobs.Retention)
	}
	if cfg.Jobs.MaxStored != 1000 {
		t.Fatalf("expected 1000 max stored, got %d", cfg.Jobs.MaxStored)
	}
	if cfg.Store.Backend != "memory" {
		t.Fatalf("expected memory backend, got %s", cfg.Store.Backend)
	}
	if cfg.OpenAI.Model != "gpt-3.5-turbo" {
		t.Fatalf("expected default model, got %s", cfg.OpenAI.Model)
	}
	if cfg.Sources.CacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %v", cfg.Sources.CacheTTL)
	}
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatalf("expected validation error for missing api key")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	cfg := minimalConfig + `
store:
  backend: cassandra
`
	if _, err := Load(writeConfig(t, cfg)); err == nil {
		t.Fatalf("expected validation error for unknown backend")
	}
}

func TestLoadRejectsRedisWithoutAddr(t *testing.T) {
	cfg := minimalConfig + `
store:
  backend: redis
`
	if _, err := Load(writeConfig(t, cfg)); err == nil {
		t.Fatalf("expected validation error for redis without addr")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("API_KEY", "env-key")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Auth.APIKey != "env-key" {
		t.Fatalf("expected env api key override, got %s", cfg.Auth.APIKey)
	}
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("expected kafka enabled with 2 brokers, got %+v", cfg.Kafka)
	}
}

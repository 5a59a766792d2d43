package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.CoordinatorURL != "http://localhost:8080" {
		t.Errorf("unexpected coordinator URL: %s", cfg.CoordinatorURL)
	}
	if cfg.WorkerPort != "8081" {
		t.Errorf("unexpected worker port: %s", cfg.WorkerPort)
	}
	if cfg.MaxTasks != 1 {
		t.Errorf("expected max tasks 1, got %d", cfg.MaxTasks)
	}
	if cfg.IdentityStrategy != IdentityFromEnv {
		t.Errorf("expected env strategy, got %s", cfg.IdentityStrategy)
	}
	if cfg.RunOnce {
		t.Error("run-once should be off by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COORDINATOR_URL", "http://coordinator:9000")
	t.Setenv("MAX_CONCURRENT_TASKS", "4")
	t.Setenv("IDENTITY_STRATEGY", IdentityBootstrap)
	t.Setenv("RUN_ONCE", "true")

	cfg := Load()

	if cfg.CoordinatorURL != "http://coordinator:9000" {
		t.Errorf("override not applied: %s", cfg.CoordinatorURL)
	}
	if cfg.MaxTasks != 4 {
		t.Errorf("expected max tasks 4, got %d", cfg.MaxTasks)
	}
	if cfg.IdentityStrategy != IdentityBootstrap {
		t.Errorf("expected bootstrap strategy, got %s", cfg.IdentityStrategy)
	}
	if !cfg.RunOnce {
		t.Error("run-once override not applied")
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_TASKS", "not-a-number")

	cfg := Load()
	if cfg.MaxTasks != 1 {
		t.Errorf("invalid value should fall back to default, got %d", cfg.MaxTasks)
	}

	t.Setenv("MAX_CONCURRENT_TASKS", "-3")
	cfg = Load()
	if cfg.MaxTasks != 1 {
		t.Errorf("non-positive value should fall back to default, got %d", cfg.MaxTasks)
	}
}

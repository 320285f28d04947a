package app

import (
	"testing"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != ":50051" {
		t.Errorf("expected GRPCAddr :50051, got %s", cfg.GRPCAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected MetricsAddr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.StorageDriver != StorageDriverMemory {
		t.Errorf("expected StorageDriver %s, got %s", StorageDriverMemory, cfg.StorageDriver)
	}
	if !cfg.PostgresAutoMigrate {
		t.Error("expected PostgresAutoMigrate to be true")
	}
	if cfg.KafkaBrokers != "" {
		t.Errorf("expected kafka to be disabled by default, got %q", cfg.KafkaBrokers)
	}
	if cfg.Outbox.PollInterval <= 0 {
		t.Error("expected Outbox.PollInterval to be > 0")
	}
	if cfg.Outbox.BatchSize <= 0 {
		t.Error("expected Outbox.BatchSize to be > 0")
	}
	if cfg.Outbox.MaxAttempts <= 0 {
		t.Error("expected Outbox.MaxAttempts to be > 0")
	}
	if cfg.Outbox.RetryBaseDelay < 0 {
		t.Error("expected Outbox.RetryBaseDelay to be >= 0")
	}
	if cfg.OutboxMaxPending <= 0 {
		t.Error("expected OutboxMaxPending to be > 0")
	}
	if cfg.OutboxRetention <= 0 || cfg.OutboxCleanupInterval <= 0 {
		t.Error("expected outbox cleanup to be enabled by default")
	}
	if cfg.KafkaBreakerFailures <= 0 || cfg.KafkaBreakerReset <= 0 {
		t.Error("expected kafka breaker to be configured")
	}
}

func TestConfig_Copy(t *testing.T) {
	original := DefaultConfig()
	copied := original

	copied.HTTPAddr = ":9999"
	copied.Outbox.BatchSize = 1

	if original.HTTPAddr != ":8080" {
		t.Error("original config was modified")
	}
	if original.Outbox.BatchSize == 1 {
		t.Error("original outbox config was modified")
	}
}

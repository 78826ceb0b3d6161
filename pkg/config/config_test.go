package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"INSTANCE_ID", "WORKERS", "IO_WORKERS", "HANDLER_WORKERS",
		"DATABASE", "DATABASE_SIZE", "LISTEN_ADDRESS",
		"PROCESSOR_DEFAULT_ADDRESS", "PROCESSOR_FALLBACK_ADDRESS",
	}
	for _, v := range vars {
		old, ok := os.LookupEnv(v)
		os.Unsetenv(v)
		t.Cleanup(func() {
			if ok {
				os.Setenv(v, old)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Coordinator {
		t.Error("expected INSTANCE_ID=0 to be coordinator by default")
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
	if cfg.Database != DefaultDatabase {
		t.Errorf("Database = %q, want %q", cfg.Database, DefaultDatabase)
	}
}

func TestLoadNonCoordinator(t *testing.T) {
	clearEnv(t)
	os.Setenv("INSTANCE_ID", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Coordinator {
		t.Error("expected INSTANCE_ID=1 to not be coordinator")
	}
}

func TestValidateRejectsZeroWorkers(t *testing.T) {
	cfg := Config{
		Workers: 0, IOWorkers: 1, HandlerWorkers: 1,
		Database: "x", DatabaseSize: 1, ListenAddress: "x",
		ProcessorDefaultAddress: "x", ProcessorFallbackAddress: "x",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero workers")
	}
}

func TestValidateRejectsIOWorkersExceedingSlots(t *testing.T) {
	cfg := Config{
		Workers: 2, IOWorkers: 3, HandlerWorkers: 1,
		Database: "x", DatabaseSize: 1, ListenAddress: "x",
		ProcessorDefaultAddress: "x", ProcessorFallbackAddress: "x",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when IO_WORKERS exceeds WORKERS")
	}
}

func TestValidateRejectsMissingDatabase(t *testing.T) {
	cfg := Config{
		Workers: 1, IOWorkers: 1, HandlerWorkers: 1,
		DatabaseSize: 1, ListenAddress: "x",
		ProcessorDefaultAddress: "x", ProcessorFallbackAddress: "x",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty DATABASE")
	}
}

// Package config loads the payment intake service's configuration from
// environment variables, the way sa6mwa-lockd's root config.go does: a
// single immutable struct built once at startup, named defaults, and a
// Validate method — no hidden globals consulted from deep in the stack.
package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// DefaultWorkers is the IPC slot / worker-process count when WORKERS is unset.
	DefaultWorkers = 8
	// DefaultIOWorkers is the proxy's IO thread count when IO_WORKERS is unset.
	DefaultIOWorkers = 4
	// DefaultHandlerWorkers is the blocking-handler pool size when HANDLER_WORKERS is unset.
	DefaultHandlerWorkers = 4
	// DefaultDatabase is the KV environment directory when DATABASE is unset.
	DefaultDatabase = "/data/database"
	// DefaultDatabaseSize is the bbolt map size in bytes when DATABASE_SIZE is unset.
	DefaultDatabaseSize = 10 * 1024 * 1024
	// DefaultListenAddress is the HTTP bind address when LISTEN_ADDRESS is unset.
	DefaultListenAddress = "0.0.0.0:8080"
	// DefaultProcessorDefaultAddress is PROCESSOR_DEFAULT_ADDRESS's default.
	DefaultProcessorDefaultAddress = "payment-processor-default:8080"
	// DefaultProcessorFallbackAddress is PROCESSOR_FALLBACK_ADDRESS's default.
	DefaultProcessorFallbackAddress = "payment-processor-fallback:8080"
)

// Config is the immutable, validated configuration for one replica.
type Config struct {
	InstanceID               int
	Coordinator              bool
	Workers                  int
	IOWorkers                int
	HandlerWorkers           int
	Database                 string
	DatabaseSize             int64
	ListenAddress            string
	ProcessorDefaultAddress  string
	ProcessorFallbackAddress string
}

// Load reads Config from the process environment, applying defaults for
// anything unset, then validates it.
func Load() (Config, error) {
	cfg := Config{
		InstanceID:               readInt("INSTANCE_ID", 0),
		Workers:                  readInt("WORKERS", DefaultWorkers),
		IOWorkers:                readInt("IO_WORKERS", DefaultIOWorkers),
		HandlerWorkers:           readInt("HANDLER_WORKERS", DefaultHandlerWorkers),
		Database:                 readString("DATABASE", DefaultDatabase),
		DatabaseSize:             readInt64("DATABASE_SIZE", DefaultDatabaseSize),
		ListenAddress:            readString("LISTEN_ADDRESS", DefaultListenAddress),
		ProcessorDefaultAddress:  readString("PROCESSOR_DEFAULT_ADDRESS", DefaultProcessorDefaultAddress),
		ProcessorFallbackAddress: readString("PROCESSOR_FALLBACK_ADDRESS", DefaultProcessorFallbackAddress),
	}
	cfg.Coordinator = cfg.InstanceID == 0

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports a ConfigInvalid-class error (spec.md §7) for any field
// that would make startup unsafe.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("config: WORKERS must be > 0, got %d", c.Workers)
	}
	if c.IOWorkers <= 0 {
		return fmt.Errorf("config: IO_WORKERS must be > 0, got %d", c.IOWorkers)
	}
	if c.IOWorkers > c.Workers {
		return fmt.Errorf("config: IO_WORKERS (%d) must not exceed WORKERS (%d): a proxy thread with no slot blocks forever", c.IOWorkers, c.Workers)
	}
	if c.HandlerWorkers <= 0 {
		return fmt.Errorf("config: HANDLER_WORKERS must be > 0, got %d", c.HandlerWorkers)
	}
	if c.Database == "" {
		return fmt.Errorf("config: DATABASE must not be empty")
	}
	if c.DatabaseSize <= 0 {
		return fmt.Errorf("config: DATABASE_SIZE must be > 0, got %d", c.DatabaseSize)
	}
	if c.ListenAddress == "" {
		return fmt.Errorf("config: LISTEN_ADDRESS must not be empty")
	}
	if c.ProcessorDefaultAddress == "" || c.ProcessorFallbackAddress == "" {
		return fmt.Errorf("config: both PROCESSOR_DEFAULT_ADDRESS and PROCESSOR_FALLBACK_ADDRESS are required")
	}
	return nil
}

func readString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func readInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func readInt64(name string, def int64) int64 {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

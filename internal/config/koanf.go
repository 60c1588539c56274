// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/upsync/config.yaml",
	"/etc/upsync/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config file path.
const ConfigPathEnvVar = "UPSYNC_CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are applied
// first, then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8640,
			Host:              "0.0.0.0",
			Timeout:           30 * time.Second,
			Environment:       "development",
			APIKey:            "",
			CORSOrigins:       []string{},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			URL:             "",
			MaxConns:        8,
			MinConns:        2,
			ConnMaxLifetime: 30 * time.Minute,
			MigrateOnStart:  true,
		},
		Upstream: UpstreamConfig{
			BaseURL:           "",
			APIVersion:        "2026-07",
			Timeout:           30 * time.Second,
			RetryMax:          3,
			RetryAfterDefault: 60 * time.Second,
			BackoffBase:       time.Second,
			BackoffCap:        30 * time.Second,
			PageSize:          100,
			RequestsPerSecond: 5,
			RequestBurst:      10,
			LowQuotaThreshold: 10,
			BreakerDisabled:   false,
		},
		Credentials: CredentialsConfig{
			EncryptionKey: "",
			CacheTTL:      5 * time.Minute,
		},
		Sync: SyncConfig{
			Interval:         0, // scheduler disabled unless configured
			SweepConcurrency: 8,
			RunTimeout:       10 * time.Minute,
			Resources:        []string{}, // empty = all resources
		},
		Locks: LocksConfig{
			Driver:        "memory",
			RedisAddr:     "",
			RedisPassword: "",
			RedisDB:       0,
			TTL:           15 * time.Minute,
		},
		Events: EventsConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: false,
			StoreDir:       "/data/nats",
			MaxReconnects:  60,
			ReconnectWait:  2 * time.Second,
			SubjectPrefix:  "upsync",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config File: optional YAML config file (if one exists)
//  3. Environment Variables: override any setting
//
// Precedence: ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated
// slices when they arrive as env var strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"sync.resources",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings; the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file): nothing to do
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return empty string and are skipped, preventing random
// environment noise from polluting the config.
//
// Examples:
//   - FANLINE_BASE_URL -> upstream.base_url
//   - UPSYNC_RETRY_MAX -> upstream.retry_max
//   - DATABASE_URL -> database.url
//   - UPSYNC_HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"upsync_http_port":           "server.port",
		"upsync_http_host":           "server.host",
		"upsync_http_timeout":        "server.timeout",
		"environment":                "server.environment",
		"upsync_api_key":             "server.api_key",
		"upsync_cors_origins":        "server.cors_origins",
		"upsync_rate_limit_requests": "server.rate_limit_reqs",
		"upsync_rate_limit_window":   "server.rate_limit_window",
		"upsync_disable_rate_limit":  "server.rate_limit_disabled",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Database
		"database_url":            "database.url",
		"upsync_database_url":     "database.url",
		"upsync_db_max_conns":     "database.max_conns",
		"upsync_db_min_conns":     "database.min_conns",
		"upsync_db_conn_lifetime": "database.conn_max_lifetime",
		"upsync_db_migrate":       "database.migrate_on_start",

		// Upstream (Fanline)
		"fanline_base_url":           "upstream.base_url",
		"fanline_api_version":        "upstream.api_version",
		"upsync_upstream_timeout":    "upstream.timeout",
		"upsync_retry_max":           "upstream.retry_max",
		"upsync_retry_after_default": "upstream.retry_after_default",
		"upsync_backoff_base":        "upstream.backoff_base",
		"upsync_backoff_cap":         "upstream.backoff_cap",
		"upsync_page_size":           "upstream.page_size",
		"upsync_requests_per_second": "upstream.requests_per_second",
		"upsync_request_burst":       "upstream.request_burst",
		"upsync_low_quota_threshold": "upstream.low_quota_threshold",
		"upsync_breaker_disabled":    "upstream.breaker_disabled",

		// Credentials
		"upsync_encryption_key":       "credentials.encryption_key",
		"upsync_credential_cache_ttl": "credentials.cache_ttl",

		// Sync
		"upsync_sync_interval":     "sync.interval",
		"upsync_sweep_concurrency": "sync.sweep_concurrency",
		"upsync_run_timeout":       "sync.run_timeout",
		"upsync_sync_resources":    "sync.resources",

		// Locks
		"upsync_lock_driver":    "locks.driver",
		"upsync_redis_addr":     "locks.redis_addr",
		"upsync_redis_password": "locks.redis_password",
		"upsync_redis_db":       "locks.redis_db",
		"upsync_lock_ttl":       "locks.ttl",

		// Events
		"upsync_events_enabled":        "events.enabled",
		"upsync_nats_url":              "events.url",
		"upsync_nats_embedded":         "events.embedded_server",
		"upsync_nats_store_dir":        "events.store_dir",
		"upsync_nats_max_reconnects":   "events.max_reconnects",
		"upsync_nats_reconnect_wait":   "events.reconnect_wait",
		"upsync_events_subject_prefix": "events.subject_prefix",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped
	return ""
}

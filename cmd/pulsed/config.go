package main

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// settings is the daemon's runtime configuration. The scoring policy
// lives separately in the policy file (pkg/config); settings covers
// wiring: ports, backends, upstream endpoints, schedule.
type settings struct {
	Addr        string `koanf:"addr"`
	DatabaseURL string `koanf:"database_url"`
	APIKey      string `koanf:"api_key"`
	PolicyPath  string `koanf:"policy_path"`

	// Cron expression for the recompute loop.
	RecomputeSchedule string `koanf:"recompute_schedule"`
	RecomputeBatch    int    `koanf:"recompute_batch"`
	RecomputeWorkers  int    `koanf:"recompute_workers"`

	CodeAPIURL   string `koanf:"code_api_url"`
	CodeAPIToken string `koanf:"code_api_token"`
	RegistryURL  string `koanf:"registry_url"`
	ChainAPIURL  string `koanf:"chain_api_url"`
	TVLAPIURL    string `koanf:"tvl_api_url"`

	// Archive backend: local, s3, or gcs.
	ArchiveBackend string `koanf:"archive_backend"`
	ArchiveDir     string `koanf:"archive_dir"`
	S3Bucket       string `koanf:"s3_bucket"`
	S3Region       string `koanf:"s3_region"`
	S3Endpoint     string `koanf:"s3_endpoint"`
	S3AccessKey    string `koanf:"s3_access_key"`
	S3SecretKey    string `koanf:"s3_secret_key"`
	GCSBucket      string `koanf:"gcs_bucket"`
}

func defaultSettings() settings {
	return settings{
		Addr:              ":8080",
		DatabaseURL:       "postgres://localhost:5432/pulsecheck?sslmode=disable",
		PolicyPath:        "pulsecheck.yaml",
		RecomputeSchedule: "@every 15m",
		ArchiveBackend:    "local",
		ArchiveDir:        "/tmp/pulsecheck-data",
	}
}

// loadSettings layers defaults, an optional YAML file (PULSE_CONFIG),
// and PULSE_-prefixed environment variables, in that precedence order.
func loadSettings() (*settings, error) {
	cfg := defaultSettings()

	k := koanf.New(".")

	if path := os.Getenv("PULSE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// PULSE_DATABASE_URL -> database_url
	envProvider := env.Provider("PULSE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "pulse_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("database_url must not be empty")
	}
	return &cfg, nil
}

// Package yaml loads corpus.Config from YAML files.
package yaml

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/fwojciec/corpus"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Environment variables that override file values.
const (
	EnvDBURI   = "CORPUS_DB_URI"
	EnvDBPath  = "CORPUS_DB_PATH"
	EnvMaxDocs = "CORPUS_MAX_DOCS"
)

// LoadConfig reads the YAML file at path, applies environment overrides
// and defaults, and validates the result.
func LoadConfig(path string) (*corpus.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, corpus.Errorf(corpus.EINVALID, "read config: %v", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data. Environment overrides are applied
// after .env is loaded from the working directory, if present.
func ParseConfig(data []byte) (*corpus.Config, error) {
	var cfg corpus.Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, corpus.Errorf(corpus.EINVALID, "parse config: %v", err)
	}

	if err := loadEnvFile(); err != nil {
		return nil, err
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile loads .env without overriding variables already set.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func applyEnv(cfg *corpus.Config) error {
	if v := os.Getenv(EnvDBURI); v != "" {
		cfg.DB.URI = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv(EnvMaxDocs); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return corpus.Errorf(corpus.EINVALID, "%s: %v", EnvMaxDocs, err)
		}
		cfg.Logic.MaxDocs = &n
	}
	return nil
}

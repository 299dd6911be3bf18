package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, SPARK_CONFIG env, ./spark.yaml, ~/.config/spark/config.yaml)
//  3. Environment variable overrides (SPARK_ prefix)
//  4. Secret file reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
//  1. Explicit configPath argument
//  2. SPARK_CONFIG environment variable
//  3. ./spark.yaml in the current directory
//  4. ~/.config/spark/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check SPARK_CONFIG env var.
	if envPath := os.Getenv("SPARK_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{"spark.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "spark", "config.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Unknown keys are rejected so typos fail loudly; fields not present
// in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnvOverrides maps SPARK_* environment variables to config
// fields. Environment values win over the YAML file so deployments
// can keep credentials out of it.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPARK_HOST"); v != "" {
		cfg.Credential.Host = v
	}
	if v := os.Getenv("SPARK_CHAT_PATH"); v != "" {
		cfg.Credential.ChatPath = v
	}
	if v := os.Getenv("SPARK_EMBEDDING_PATH"); v != "" {
		cfg.Credential.EmbeddingPath = v
	}
	if v := os.Getenv("SPARK_API_KEY"); v != "" {
		cfg.Credential.APIKey = v
	}
	if v := os.Getenv("SPARK_API_SECRET"); v != "" {
		cfg.Credential.APISecret = v
	}
	if v := os.Getenv("SPARK_API_SECRET_FILE"); v != "" {
		cfg.Credential.APISecretFile = v
	}
	if v := os.Getenv("SPARK_MODEL"); v != "" {
		cfg.Chat.Model = v
	}
	if v := os.Getenv("SPARK_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("SPARK_TERMINATION"); v != "" {
		cfg.Stream.Termination = v
	}
	if v := os.Getenv("SPARK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("SPARK_RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("SPARK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SPARK_DEBUG"); v != "" {
		cfg.Log.Debug = v
	}
}

// resolveFileReferences reads _file fields and populates the
// corresponding value fields. The file content is trimmed of
// surrounding whitespace; an explicit value always wins over the file.
func resolveFileReferences(cfg *Config) error {
	// credential.api_secret_file -> credential.api_secret
	if cfg.Credential.APISecretFile != "" && cfg.Credential.APISecret == "" {
		val, err := readSecretFile(cfg.Credential.APISecretFile)
		if err != nil {
			return fmt.Errorf("credential.api_secret_file: %w", err)
		}
		cfg.Credential.APISecret = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

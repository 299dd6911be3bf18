// Package config provides unified configuration for the spark-go
// client and the commands built on it.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (SPARK_ prefix)
//  4. Secret file reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the Spark client tooling.
type Config struct {
	Credential CredentialConfig `yaml:"credential"`
	Chat       ChatConfig       `yaml:"chat"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Stream     StreamConfig     `yaml:"stream"`
	Retry      RetryConfig      `yaml:"retry"`
	Timeout    time.Duration    `yaml:"timeout"` // single-shot call budget, default: 120s
	Log        LogConfig        `yaml:"log"`
}

// CredentialConfig holds the endpoint and the signing key pair.
type CredentialConfig struct {
	Host          string `yaml:"host"`            // default: spark-api.xf-yun.com
	ChatPath      string `yaml:"chat_path"`       // default: /v1.1/chat
	EmbeddingPath string `yaml:"embedding_path"`  // default: /v1/embeddings
	APIKey        string `yaml:"api_key"`         // required
	APISecret     string `yaml:"api_secret"`      // required unless api_secret_file is set
	APISecretFile string `yaml:"api_secret_file"` // _file variant for api_secret
}

// ChatConfig holds the client-level chat defaults. The pointer fields
// distinguish "explicitly zero" from "not set"; nil fields fall back
// to the built-in sampling defaults.
type ChatConfig struct {
	Model       string   `yaml:"model"` // default: generalv3.5
	Temperature *float64 `yaml:"temperature"`
	TopP        *float64 `yaml:"top_p"`
	TopK        *int     `yaml:"top_k"`
	MaxTokens   *int     `yaml:"max_tokens"`
	User        string   `yaml:"user"` // end-user identifier forwarded to the provider
}

// EmbeddingConfig holds the embedding defaults.
type EmbeddingConfig struct {
	Model string `yaml:"model"` // default: embedding-v1
}

// StreamConfig holds streaming behaviour settings.
type StreamConfig struct {
	Termination string `yaml:"termination"` // "usage" or "end_flag", default: "usage"
}

// RetryConfig holds the backoff policy for transport failures.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`     // default: 3
	InitialInterval time.Duration `yaml:"initial_interval"` // default: 250ms
	MaxInterval     time.Duration `yaml:"max_interval"`     // default: 2s
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // TRACE, DEBUG, INFO, WARN or ERROR, default: INFO
	Debug string `yaml:"debug"` // comma-separated debug categories, e.g. "client,streaming"
}

// Defaults returns a Config with all default values filled in. The
// credential key pair has no default and must come from the YAML file,
// the environment or a secret file.
func Defaults() Config {
	return Config{
		Credential: CredentialConfig{
			Host:          "spark-api.xf-yun.com",
			ChatPath:      "/v1.1/chat",
			EmbeddingPath: "/v1/embeddings",
		},
		Chat: ChatConfig{
			Model: "generalv3.5",
		},
		Embedding: EmbeddingConfig{
			Model: "embedding-v1",
		},
		Stream: StreamConfig{
			Termination: "usage",
		},
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 250 * time.Millisecond,
			MaxInterval:     2 * time.Second,
		},
		Timeout: 120 * time.Second,
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

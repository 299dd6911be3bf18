package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error joining one entry per offending field path.
func (c *Config) Validate() error {
	var errs []error

	// credential.host must be a bare host, no scheme.
	if c.Credential.Host == "" {
		errs = append(errs, fmt.Errorf("credential.host is required"))
	} else if strings.Contains(c.Credential.Host, "://") {
		errs = append(errs, fmt.Errorf("credential.host must be a bare host without scheme, got %q", c.Credential.Host))
	}

	// Endpoint paths are absolute.
	if !strings.HasPrefix(c.Credential.ChatPath, "/") {
		errs = append(errs, fmt.Errorf("credential.chat_path must start with \"/\", got %q", c.Credential.ChatPath))
	}
	if !strings.HasPrefix(c.Credential.EmbeddingPath, "/") {
		errs = append(errs, fmt.Errorf("credential.embedding_path must start with \"/\", got %q", c.Credential.EmbeddingPath))
	}

	// The signing key pair is required; the secret may come from a file.
	if c.Credential.APIKey == "" {
		errs = append(errs, fmt.Errorf("credential.api_key is required"))
	}
	if c.Credential.APISecret == "" && c.Credential.APISecretFile == "" {
		errs = append(errs, fmt.Errorf("credential.api_secret or credential.api_secret_file is required"))
	}

	// chat.model is required; sampling knobs must stay in range.
	if c.Chat.Model == "" {
		errs = append(errs, fmt.Errorf("chat.model is required"))
	}
	if c.Chat.Temperature != nil && (*c.Chat.Temperature < 0 || *c.Chat.Temperature > 2) {
		errs = append(errs, fmt.Errorf("chat.temperature must be within [0, 2], got %v", *c.Chat.Temperature))
	}
	if c.Chat.TopP != nil && (*c.Chat.TopP <= 0 || *c.Chat.TopP > 1) {
		errs = append(errs, fmt.Errorf("chat.top_p must be within (0, 1], got %v", *c.Chat.TopP))
	}
	if c.Chat.TopK != nil && (*c.Chat.TopK < 1 || *c.Chat.TopK > 6) {
		errs = append(errs, fmt.Errorf("chat.top_k must be within [1, 6], got %d", *c.Chat.TopK))
	}
	if c.Chat.MaxTokens != nil && *c.Chat.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("chat.max_tokens must be > 0, got %d", *c.Chat.MaxTokens))
	}

	if c.Embedding.Model == "" {
		errs = append(errs, fmt.Errorf("embedding.model is required"))
	}

	// stream.termination must be a known value.
	switch c.Stream.Termination {
	case "usage", "end_flag":
		// valid
	default:
		errs = append(errs, fmt.Errorf("stream.termination must be \"usage\" or \"end_flag\", got %q", c.Stream.Termination))
	}

	// Retry policy must describe at least one attempt.
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be >= 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.InitialInterval <= 0 {
		errs = append(errs, fmt.Errorf("retry.initial_interval must be > 0, got %v", c.Retry.InitialInterval))
	}
	if c.Retry.MaxInterval <= 0 {
		errs = append(errs, fmt.Errorf("retry.max_interval must be > 0, got %v", c.Retry.MaxInterval))
	}

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be > 0, got %v", c.Timeout))
	}

	// log.level must be a known value.
	switch strings.ToUpper(c.Log.Level) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
		// valid
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of TRACE, DEBUG, INFO, WARN, ERROR, got %q", c.Log.Level))
	}

	// log.debug categories must all be known.
	for _, cat := range strings.Split(c.Log.Debug, ",") {
		switch strings.TrimSpace(strings.ToLower(cat)) {
		case "", "client", "streaming", "auth", "embeddings", "config", "all":
			// valid
		default:
			errs = append(errs, fmt.Errorf("log.debug has unknown category %q", strings.TrimSpace(cat)))
		}
	}

	return errors.Join(errs...)
}

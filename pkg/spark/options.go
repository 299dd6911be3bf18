package spark

import (
	"fmt"

	"github.com/liugddx/spark-go/pkg/api"
)

// Built-in defaults, the lowest option layer. They apply beneath client
// defaults and per-call overrides.
const (
	DefaultChatModel      = "generalv3.5"
	DefaultTemperature    = 0.7
	DefaultEmbeddingModel = "embedding-v1"
)

// DefaultChatOptions returns the built-in option layer.
func DefaultChatOptions() *api.ChatOptions {
	return &api.ChatOptions{
		Model:       DefaultChatModel,
		Temperature: api.Float64(DefaultTemperature),
	}
}

// MergeOptions folds option layers in ascending priority: a field set on
// a later layer overrides the same field from earlier layers, unset
// fields fall through. nil layers are skipped and no input is mutated;
// tool slices are copied so the merged result never aliases a layer.
func MergeOptions(layers ...*api.ChatOptions) api.ChatOptions {
	var merged api.ChatOptions
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		if layer.Model != "" {
			merged.Model = layer.Model
		}
		if layer.User != "" {
			merged.User = layer.User
		}
		if layer.Temperature != nil {
			merged.Temperature = layer.Temperature
		}
		if layer.TopP != nil {
			merged.TopP = layer.TopP
		}
		if layer.TopK != nil {
			merged.TopK = layer.TopK
		}
		if layer.MaxTokens != nil {
			merged.MaxTokens = layer.MaxTokens
		}
		if layer.PresencePenalty != nil {
			merged.PresencePenalty = layer.PresencePenalty
		}
		if layer.FrequencyPenalty != nil {
			merged.FrequencyPenalty = layer.FrequencyPenalty
		}
		if layer.ResponseFormat != nil {
			merged.ResponseFormat = layer.ResponseFormat
		}
		if layer.Tools != nil {
			merged.Tools = append([]api.Tool(nil), layer.Tools...)
		}
		if layer.ToolChoice != nil {
			merged.ToolChoice = layer.ToolChoice
		}
	}
	return merged
}

// validateOptions enforces the provider's documented parameter ranges
// before a request is built. Violations never reach the wire.
func validateOptions(o *api.ChatOptions) error {
	if o.Model == "" {
		return api.NewConfigurationError("model", "is required")
	}
	if o.Temperature != nil && (*o.Temperature < 0 || *o.Temperature > 2) {
		return api.NewConfigurationError("temperature", fmt.Sprintf("must be within [0, 2], got %v", *o.Temperature))
	}
	if o.TopP != nil && (*o.TopP <= 0 || *o.TopP > 1) {
		return api.NewConfigurationError("topP", fmt.Sprintf("must be within (0, 1], got %v", *o.TopP))
	}
	if o.TopK != nil && (*o.TopK < 1 || *o.TopK > 6) {
		return api.NewConfigurationError("topK", fmt.Sprintf("must be within [1, 6], got %d", *o.TopK))
	}
	if o.PresencePenalty != nil && (*o.PresencePenalty < -2 || *o.PresencePenalty > 2) {
		return api.NewConfigurationError("presencePenalty", fmt.Sprintf("must be within [-2, 2], got %v", *o.PresencePenalty))
	}
	if o.FrequencyPenalty != nil && (*o.FrequencyPenalty < -2 || *o.FrequencyPenalty > 2) {
		return api.NewConfigurationError("frequencyPenalty", fmt.Sprintf("must be within [-2, 2], got %v", *o.FrequencyPenalty))
	}
	return nil
}

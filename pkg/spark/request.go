package spark

import (
	"fmt"

	"github.com/liugddx/spark-go/pkg/api"
)

// BuildChatCompletionRequest converts a validated conversation plus
// merged options into the wire request. The options must already be the
// result of MergeOptions; they are range-checked here so an invalid
// value never leaves the process.
//
// Spark accepts at most one system message and expects it to lead the
// message list. The remaining messages keep their original order.
func BuildChatCompletionRequest(messages []api.Message, opts api.ChatOptions, stream bool) (*ChatCompletionRequest, error) {
	if err := validateOptions(&opts); err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, api.NewInvalidConversationError("conversation needs at least one message")
	}

	var system *api.Message
	rest := make([]api.Message, 0, len(messages))
	for i := range messages {
		msg := messages[i]
		if !msg.Role.Known() {
			return nil, api.NewInvalidConversationError(fmt.Sprintf("unknown role %q at message %d", msg.Role, i))
		}
		if msg.Role == api.RoleSystem {
			if system != nil {
				return nil, api.NewInvalidConversationError("conversation holds more than one system message")
			}
			system = &messages[i]
			continue
		}
		rest = append(rest, msg)
	}

	wire := make([]ChatCompletionMessage, 0, len(messages))
	if system != nil {
		wire = append(wire, ChatCompletionMessage{Role: string(system.Role), Content: system.Content})
	}
	for _, msg := range rest {
		wire = append(wire, ChatCompletionMessage{Role: string(msg.Role), Content: msg.Content})
	}

	req := &ChatCompletionRequest{
		Model:            opts.Model,
		User:             opts.User,
		Messages:         wire,
		Temperature:      opts.Temperature,
		TopP:             opts.TopP,
		TopK:             opts.TopK,
		PresencePenalty:  opts.PresencePenalty,
		FrequencyPenalty: opts.FrequencyPenalty,
		Stream:           stream,
		MaxTokens:        opts.MaxTokens,
		ResponseFormat:   opts.ResponseFormat,
		Tools:            opts.Tools,
		ToolChoice:       opts.ToolChoice,
	}
	return req, nil
}

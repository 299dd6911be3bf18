package spark

import (
	"context"
	"errors"
	"time"

	"github.com/liugddx/spark-go/pkg/api"
	"github.com/liugddx/spark-go/pkg/observability"
	"github.com/liugddx/spark-go/pkg/retry"
)

// ProviderName identifies this adapter in logs and metrics.
const ProviderName = "xinghuo"

// ChatModel layers option merging, retries, and metrics over a Client.
// It implements both the single-shot and the streaming contract.
type ChatModel struct {
	client   *Client
	defaults *api.ChatOptions
	retrier  *retry.Retrier
}

var (
	_ api.ChatModel          = (*ChatModel)(nil)
	_ api.StreamingChatModel = (*ChatModel)(nil)
)

// NewChatModel builds a model with per-client default options. The
// defaults are range-checked here so a bad temperature fails at
// construction instead of on every call. defaults and retrier may be
// nil; a nil retrier means single attempts.
func NewChatModel(client *Client, defaults *api.ChatOptions, retrier *retry.Retrier) (*ChatModel, error) {
	if client == nil {
		return nil, api.NewConfigurationError("client", "is required")
	}
	merged := MergeOptions(DefaultChatOptions(), defaults)
	if err := validateOptions(&merged); err != nil {
		return nil, err
	}
	return &ChatModel{client: client, defaults: defaults, retrier: retrier}, nil
}

// Call performs a single-shot completion. Per-call options on the
// prompt override the model defaults, which override the built-ins.
func (m *ChatModel) Call(ctx context.Context, prompt *api.Prompt) (*api.ChatResponse, error) {
	req, err := m.buildRequest(prompt, false)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var cc *ChatCompletion
	err = m.retrier.Do(ctx, func() error {
		var callErr error
		cc, callErr = m.client.ChatCompletion(ctx, req)
		return callErr
	})
	observability.RecordRequest("chat", req.Model, outcomeOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	resp := toChatResponse(cc, req.Model)
	observability.RecordTokens(req.Model, resp.Usage)
	return resp, nil
}

// Stream performs a streaming completion. Each delivered chunk carries
// the delta for that frame; the channel closes after the terminal
// chunk, an error event, or context cancellation. Retries apply only to
// establishing the stream, never to a stream that already delivered.
func (m *ChatModel) Stream(ctx context.Context, prompt *api.Prompt) (<-chan api.StreamChunk, error) {
	req, err := m.buildRequest(prompt, true)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var events <-chan StreamEvent
	err = m.retrier.Do(ctx, func() error {
		var callErr error
		events, callErr = m.client.ChatCompletionStream(ctx, req)
		return callErr
	})
	if err != nil {
		observability.RecordRequest("chat_stream", req.Model, outcomeOf(err), time.Since(start))
		return nil, err
	}

	out := make(chan api.StreamChunk, streamBuffer)
	go func() {
		defer close(out)

		var agg Aggregator
		var streamErr error
	loop:
		for ev := range events {
			if ev.Err != nil {
				streamErr = ev.Err
				select {
				case out <- api.StreamChunk{Err: ev.Err}:
				case <-ctx.Done():
				}
				break loop
			}
			agg.Add(ev.Completion)
			observability.RecordChunk(req.Model)
			select {
			case out <- api.StreamChunk{Response: toChatResponse(ev.Completion, req.Model)}:
			case <-ctx.Done():
				streamErr = ctx.Err()
				break loop
			}
		}

		outcome := "ok"
		if streamErr != nil {
			if errors.Is(streamErr, context.Canceled) {
				outcome = "cancelled"
			} else {
				outcome = outcomeOf(streamErr)
			}
		}
		final := agg.Result()
		observability.RecordTokens(req.Model, toUsage(final.Usage))
		observability.RecordRequest("chat_stream", req.Model, outcome, time.Since(start))
	}()
	return out, nil
}

// buildRequest merges the option layers and converts the conversation.
func (m *ChatModel) buildRequest(prompt *api.Prompt, stream bool) (*ChatCompletionRequest, error) {
	if prompt == nil {
		return nil, api.NewInvalidConversationError("prompt is required")
	}
	opts := MergeOptions(DefaultChatOptions(), m.defaults, prompt.Options)
	return BuildChatCompletionRequest(prompt.Messages, opts, stream)
}

package spark

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/liugddx/spark-go/pkg/api"
	"github.com/liugddx/spark-go/pkg/debug"
)

// maxLineSize bounds a single SSE line. Spark chunks are small, but a
// tool-call payload can stretch a frame well past the bufio default.
const maxLineSize = 1024 * 1024

// StreamEvent is one item on a streaming channel: either a parsed chunk
// or a terminal error. After an event with Err set the channel closes.
type StreamEvent struct {
	Completion *ChatCompletion
	Err        error
}

// TerminationPolicy decides whether a delivered chunk is the last one.
// The chunk it matches is still delivered before the stream stops.
type TerminationPolicy func(*ChatCompletion) bool

// TerminateOnUsage stops the stream once a chunk carries usage
// accounting. Spark sends usage exactly once, on the final chunk.
func TerminateOnUsage(cc *ChatCompletion) bool {
	return cc != nil && cc.Usage != nil
}

// TerminateOnEndFlag stops the stream on the provider's explicit
// end-of-stream marker.
func TerminateOnEndFlag(cc *ChatCompletion) bool {
	return cc != nil && cc.IsEnd
}

// parseSSEStream reads data: frames from body and emits a StreamEvent
// per parsed chunk until the policy matches, the provider signals
// [DONE], the body ends, or ctx is cancelled. Malformed frames are
// logged and skipped. The caller owns ch and closes it afterwards.
func parseSSEStream(ctx context.Context, body io.Reader, terminate TerminationPolicy, ch chan<- StreamEvent) {
	if terminate == nil {
		terminate = TerminateOnUsage
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		if payload == "[DONE]" {
			return
		}

		var chunk ChatCompletion
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			slog.Warn("skipping malformed stream chunk",
				"error", err,
				"payload", truncate(payload, 200))
			continue
		}
		debug.Log("streaming", "received chunk", "content", debug.Truncate(chunk.Content(), 80))

		if err := completionError(&chunk); err != nil {
			select {
			case ch <- StreamEvent{Err: err}:
			case <-ctx.Done():
			}
			return
		}

		select {
		case ch <- StreamEvent{Completion: &chunk}:
		case <-ctx.Done():
			return
		}

		if terminate(&chunk) {
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		select {
		case ch <- StreamEvent{Err: api.NewTransportError("reading stream", err)}:
		case <-ctx.Done():
		}
	}
}

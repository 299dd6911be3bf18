package spark

import (
	"testing"

	"github.com/liugddx/spark-go/pkg/api"
)

func deltaChunk(id, content string) *ChatCompletion {
	return &ChatCompletion{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: 1700000000,
		Choices: []Choice{{Delta: &ChatCompletionMessage{Content: content}}},
	}
}

func TestAggregate_SingleChunk(t *testing.T) {
	chunk := deltaChunk("cha000001", "Hello")
	chunk.Choices[0].Delta.Role = "assistant"
	chunk.Choices[0].FinishReason = "stop"
	chunk.Usage = &Usage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8}

	got := Aggregate([]*ChatCompletion{chunk})

	if got.Content() != "Hello" {
		t.Errorf("content = %q, want %q", got.Content(), "Hello")
	}
	if got.Role() != "assistant" {
		t.Errorf("role = %q, want assistant", got.Role())
	}
	if got.ID != "cha000001" {
		t.Errorf("id = %q, want cha000001", got.ID)
	}
	if got.Usage == nil || got.Usage.TotalTokens != 8 {
		t.Errorf("usage = %+v, want total 8", got.Usage)
	}
	if len(got.Choices) != 1 || got.Choices[0].FinishReason != "stop" {
		t.Errorf("choices = %+v, want one with finish_reason stop", got.Choices)
	}
}

func TestAggregate_ConcatenatesInArrivalOrder(t *testing.T) {
	chunks := []*ChatCompletion{
		deltaChunk("cha000001", "He"),
		deltaChunk("cha000001", "llo"),
		deltaChunk("cha000001", " world"),
	}
	chunks[0].Choices[0].Delta.Role = "assistant"
	chunks[2].Choices[0].FinishReason = "stop"
	chunks[2].Usage = &Usage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8}

	got := Aggregate(chunks)

	if got.Content() != "Hello world" {
		t.Errorf("content = %q, want %q", got.Content(), "Hello world")
	}
	if got.Usage == nil || got.Usage.PromptTokens != 5 || got.Usage.CompletionTokens != 3 || got.Usage.TotalTokens != 8 {
		t.Errorf("usage = %+v, want {5 3 8}", got.Usage)
	}
	if got.Choices[0].FinishReason != "stop" {
		t.Errorf("finish_reason = %q, want stop", got.Choices[0].FinishReason)
	}
}

func TestAggregate_UsageFromLastCarryingChunk(t *testing.T) {
	chunks := []*ChatCompletion{
		deltaChunk("1", "a"),
		{ID: "1", Usage: &Usage{PromptTokens: 2, CompletionTokens: 1, TotalTokens: 3}},
		{ID: "1", Usage: &Usage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8}},
	}

	got := Aggregate(chunks)
	if got.Usage == nil || got.Usage.TotalTokens != 8 {
		t.Errorf("usage = %+v, want the last chunk's {5 3 8}", got.Usage)
	}
}

func TestAggregate_RoleFromFirstSpecifyingChunk(t *testing.T) {
	first := deltaChunk("1", "a") // no role
	second := deltaChunk("1", "b")
	second.Choices[0].Delta.Role = "assistant"
	third := deltaChunk("1", "c")
	third.Choices[0].Delta.Role = "tool"

	got := Aggregate([]*ChatCompletion{first, second, third})
	if got.Role() != "assistant" {
		t.Errorf("role = %q, want the first specified role", got.Role())
	}
}

func TestAggregate_DefaultRoleAssistant(t *testing.T) {
	got := Aggregate([]*ChatCompletion{deltaChunk("1", "hi")})
	if got.Role() != "assistant" {
		t.Errorf("role = %q, want assistant default", got.Role())
	}
}

func TestAggregate_EmptySequence(t *testing.T) {
	got := Aggregate(nil)
	if got == nil {
		t.Fatal("expected non-nil result for empty sequence")
	}
	if len(got.Choices) != 0 {
		t.Errorf("expected zero choices, got %d", len(got.Choices))
	}
	if got.Content() != "" {
		t.Errorf("expected empty content, got %q", got.Content())
	}
}

func TestAggregate_IdentityFromFirstChunkOnDrift(t *testing.T) {
	chunks := []*ChatCompletion{
		deltaChunk("cha-first", "a"),
		deltaChunk("cha-second", "b"),
	}

	got := Aggregate(chunks)
	if got.ID != "cha-first" {
		t.Errorf("id = %q, want the first chunk's id", got.ID)
	}
	if got.Content() != "ab" {
		t.Errorf("content = %q, want ab", got.Content())
	}
}

func TestAggregate_LegacyResultChunks(t *testing.T) {
	// Older protocol versions put text in a flat result field.
	chunks := []*ChatCompletion{
		{ID: "1", Result: "He"},
		{ID: "1", Result: "llo"},
		{ID: "1", Result: " world", IsEnd: true, Usage: &Usage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8}},
	}

	got := Aggregate(chunks)
	if got.Content() != "Hello world" {
		t.Errorf("content = %q, want %q", got.Content(), "Hello world")
	}
	if !got.IsEnd {
		t.Error("expected is_end carried into the aggregate")
	}
}

func TestAggregate_FinishReasonLastNonEmpty(t *testing.T) {
	first := deltaChunk("1", "a")
	first.Choices[0].FinishReason = "length"
	second := deltaChunk("1", "b")
	third := deltaChunk("1", "c")
	third.Choices[0].FinishReason = "stop"

	got := Aggregate([]*ChatCompletion{first, second, third})
	if got.Choices[0].FinishReason != "stop" {
		t.Errorf("finish_reason = %q, want the last non-empty", got.Choices[0].FinishReason)
	}
}

func TestAggregateEvents_StopsAtFirstError(t *testing.T) {
	ch := make(chan StreamEvent, 4)
	ch <- StreamEvent{Completion: deltaChunk("1", "par")}
	ch <- StreamEvent{Completion: deltaChunk("1", "tial")}
	ch <- StreamEvent{Err: api.NewProviderError("10013", "audit failed")}
	close(ch)

	got, err := AggregateEvents(ch)
	if err == nil {
		t.Fatal("expected the stream error to surface")
	}
	assertErrorType(t, err, api.ErrorTypeProvider)
	if got.Content() != "partial" {
		t.Errorf("partial content = %q, want %q", got.Content(), "partial")
	}
}

func TestAggregateEvents_CleanStream(t *testing.T) {
	ch := make(chan StreamEvent, 4)
	ch <- StreamEvent{Completion: deltaChunk("1", "all")}
	ch <- StreamEvent{Completion: deltaChunk("1", " good")}
	close(ch)

	got, err := AggregateEvents(ch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content() != "all good" {
		t.Errorf("content = %q, want %q", got.Content(), "all good")
	}
}

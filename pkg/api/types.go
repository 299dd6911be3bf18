package api

import "context"

// ---------------------------------------------------------------------------
// Conversation model
// ---------------------------------------------------------------------------

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Known reports whether the role is one the provider wire protocol accepts.
func (r Role) Known() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Message is a single conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolMessage builds a tool-role message.
func ToolMessage(content string) Message {
	return Message{Role: RoleTool, Content: content}
}

// Prompt couples a conversation with per-call option overrides. Options
// may be nil, in which case the model's defaults apply unchanged.
type Prompt struct {
	Messages []Message
	Options  *ChatOptions
}

// NewPrompt builds a prompt without runtime option overrides.
func NewPrompt(messages ...Message) *Prompt {
	return &Prompt{Messages: messages}
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// ChatOptions holds every tunable completion parameter. Pointer fields
// distinguish "unset" from a genuine zero; unset fields fall through to
// the next lower option layer when merged (per-call over client defaults
// over built-in defaults).
type ChatOptions struct {
	Model            string
	User             string
	Temperature      *float64
	TopP             *float64
	TopK             *int
	MaxTokens        *int
	PresencePenalty  *float64
	FrequencyPenalty *float64
	ResponseFormat   *ResponseFormat
	Tools            []Tool
	ToolChoice       any
}

// ResponseFormat constrains the shape of the completion output.
type ResponseFormat struct {
	Type string `json:"type"` // "text" or "json_object"
}

// Tool declares a capability the model may invoke. The adapter passes
// tools through to the provider untouched; executing them is the
// caller's concern.
type Tool struct {
	Type      string              `json:"type"`
	Function  *FunctionDefinition `json:"function,omitempty"`
	WebSearch *WebSearch          `json:"web_search,omitempty"`
}

// FunctionDefinition describes a callable function tool.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// WebSearch toggles the provider-hosted web search tool.
type WebSearch struct {
	Enable bool `json:"enable"`
}

// Float64 returns a pointer to v, for populating optional option fields.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v, for populating optional option fields.
func Int(v int) *int { return &v }

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

// ChatResponse is the logical result of a completion call. For streaming
// calls each chunk is delivered as its own ChatResponse carrying one
// incremental fragment.
type ChatResponse struct {
	ID          string       `json:"id,omitempty"`
	Model       string       `json:"model,omitempty"`
	Created     int64        `json:"created,omitempty"`
	Generations []Generation `json:"generations"`
	Usage       *Usage       `json:"usage,omitempty"`
}

// Text returns the content of the first generation, or "" when the
// response carries none.
func (r *ChatResponse) Text() string {
	if r == nil || len(r.Generations) == 0 {
		return ""
	}
	return r.Generations[0].Message.Content
}

// Generation is one completion candidate within a ChatResponse.
type Generation struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Usage reports token consumption for a call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamChunk is one event on a streaming channel. Exactly one of
// Response and Err is set; an Err event is terminal and the channel is
// closed after it.
type StreamChunk struct {
	Response *ChatResponse
	Err      error
}

// ---------------------------------------------------------------------------
// Embeddings
// ---------------------------------------------------------------------------

// EmbeddingRequest asks for vector representations of a text batch.
// Providers bound the batch size; the Spark adapter enforces 1..16.
type EmbeddingRequest struct {
	Input []string
	Model string
	User  string
}

// EmbeddingResponse carries the vectors for one request, ordered by the
// index of the input text they encode.
type EmbeddingResponse struct {
	Model      string      `json:"model,omitempty"`
	Embeddings []Embedding `json:"embeddings"`
	Usage      *Usage      `json:"usage,omitempty"`
}

// Embedding is a single vector with the position of its source text.
type Embedding struct {
	Index  int       `json:"index"`
	Vector []float32 `json:"vector"`
}

// ---------------------------------------------------------------------------
// Model interfaces
// ---------------------------------------------------------------------------

// ChatModel is implemented by adapters that answer chat prompts in a
// single round trip.
type ChatModel interface {
	// Call runs one completion and blocks until the provider answers.
	Call(ctx context.Context, prompt *Prompt) (*ChatResponse, error)
}

// StreamingChatModel extends ChatModel with incremental delivery. The
// returned channel is closed by the producer after the terminal chunk or
// error event; cancelling ctx abandons the stream and releases the
// underlying connection.
type StreamingChatModel interface {
	ChatModel
	Stream(ctx context.Context, prompt *Prompt) (<-chan StreamChunk, error)
}

// EmbeddingModel is implemented by adapters that embed text batches.
type EmbeddingModel interface {
	Embed(ctx context.Context, req *EmbeddingRequest) (*EmbeddingResponse, error)
}

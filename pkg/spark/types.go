package spark

import "github.com/liugddx/spark-go/pkg/api"

// Wire types for the Spark chat and embedding protocol. The JSON field
// names are the provider contract and must not change.

// ChatCompletionRequest is the JSON body posted to the chat endpoint.
// Optional numeric fields are pointers so that an unset field is omitted
// rather than sent as zero. ResponseFormat and Tools pass through the
// generic api shapes unchanged; their JSON tags already match the wire.
type ChatCompletionRequest struct {
	Model            string                  `json:"model"`
	User             string                  `json:"user,omitempty"`
	Messages         []ChatCompletionMessage `json:"messages"`
	Temperature      *float64                `json:"temperature,omitempty"`
	TopP             *float64                `json:"top_p,omitempty"`
	TopK             *int                    `json:"top_k,omitempty"`
	PresencePenalty  *float64                `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64                `json:"frequency_penalty,omitempty"`
	Stream           bool                    `json:"stream"`
	MaxTokens        *int                    `json:"max_tokens,omitempty"`
	ResponseFormat   *api.ResponseFormat     `json:"response_format,omitempty"`
	Tools            []api.Tool              `json:"tools,omitempty"`
	ToolChoice       any                     `json:"tool_choice,omitempty"`
}

// ChatCompletionMessage is one wire-format conversation turn.
type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletion is the response body of a single-shot call and the
// frame payload of a streaming call; both protocol variants share the
// shape. Newer deployments populate choices; older ones flatten the text
// into result. code, message and sid form the provider error envelope,
// which arrives under HTTP 200.
type ChatCompletion struct {
	ID           string   `json:"id,omitempty"`
	Object       string   `json:"object,omitempty"`
	Created      int64    `json:"created,omitempty"`
	Choices      []Choice `json:"choices,omitempty"`
	Result       string   `json:"result,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
	IsEnd        bool     `json:"is_end,omitempty"`
	Usage        *Usage   `json:"usage,omitempty"`

	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Sid     string `json:"sid,omitempty"`
}

// Content returns the completion's text fragment: the first choice when
// present, otherwise the legacy flat result field.
func (cc *ChatCompletion) Content() string {
	if len(cc.Choices) > 0 {
		return cc.Choices[0].Content()
	}
	return cc.Result
}

// Role returns the role carried by the first choice, or "" when no
// variant specifies one.
func (cc *ChatCompletion) Role() string {
	if len(cc.Choices) > 0 {
		return cc.Choices[0].Role()
	}
	return ""
}

// Choice carries either a complete message or a partial delta; exactly
// one of the two is populated per chunk. Content and Role expose both
// variants uniformly so consumers never branch on which one arrived.
type Choice struct {
	Index        int                    `json:"index"`
	Message      *ChatCompletionMessage `json:"message,omitempty"`
	Delta        *ChatCompletionMessage `json:"delta,omitempty"`
	FinishReason string                 `json:"finish_reason,omitempty"`
}

// Content returns the text of whichever variant is populated.
func (c *Choice) Content() string {
	switch {
	case c.Message != nil:
		return c.Message.Content
	case c.Delta != nil:
		return c.Delta.Content
	}
	return ""
}

// Role returns the role of whichever variant is populated.
func (c *Choice) Role() string {
	switch {
	case c.Message != nil:
		return c.Message.Role
	case c.Delta != nil:
		return c.Delta.Role
	}
	return ""
}

// Usage reports token consumption as the provider counts it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Total returns total_tokens, falling back to the sum of prompt and
// completion tokens when the provider omitted it.
func (u *Usage) Total() int {
	if u.TotalTokens != 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

// MaxEmbeddingBatch is the provider's hard cap on texts per embedding
// call; larger batches are rejected before transport.
const MaxEmbeddingBatch = 16

// EmbeddingRequest is the JSON body posted to the embedding endpoint.
type EmbeddingRequest struct {
	Input  []string `json:"input"`
	Model  string   `json:"model"`
	UserID string   `json:"user_id,omitempty"`
}

// EmbeddingList is the embedding endpoint's response body. A non-zero
// error_code or non-empty error_msg marks a provider-level failure.
type EmbeddingList struct {
	Object    string          `json:"object,omitempty"`
	Data      []EmbeddingData `json:"data"`
	Model     string          `json:"model,omitempty"`
	ErrorCode int             `json:"error_code,omitempty"`
	ErrorMsg  string          `json:"error_msg,omitempty"`
	Usage     *Usage          `json:"usage,omitempty"`
}

// EmbeddingData is one vector with the index of the input text it
// encodes.
type EmbeddingData struct {
	Object    string    `json:"object,omitempty"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

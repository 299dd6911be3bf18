package spark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/liugddx/spark-go/pkg/api"
	"github.com/liugddx/spark-go/pkg/auth"
	"github.com/liugddx/spark-go/pkg/debug"
	"github.com/liugddx/spark-go/pkg/observability"
)

// streamBuffer is the event channel capacity. It gives the consumer
// slack without letting an abandoned stream pile up chunks.
const streamBuffer = 16

// Config carries everything a Client needs to reach one Spark
// deployment. Zero fields fall back to DefaultConfig values; the
// credential pair has no default and must be supplied.
type Config struct {
	// Host is the API host without a scheme.
	Host string
	// ChatPath selects the protocol version and model family, for
	// example /v1.1/chat.
	ChatPath string
	// EmbeddingPath is the text embedding endpoint.
	EmbeddingPath string

	APIKey    string
	APISecret string

	// Timeout bounds single-shot calls. Streaming calls ignore it and
	// live for as long as their context.
	Timeout time.Duration

	// Termination decides when a stream is complete. Defaults to
	// TerminateOnUsage.
	Termination TerminationPolicy

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// DefaultConfig returns the production endpoint configuration.
func DefaultConfig() Config {
	return Config{
		Host:          "spark-api.xf-yun.com",
		ChatPath:      "/v1.1/chat",
		EmbeddingPath: "/v1/embeddings",
		Timeout:       120 * time.Second,
		Termination:   TerminateOnUsage,
	}
}

// Client is the low-level Spark HTTP client. Every request is signed
// per call, so a Client stays valid indefinitely. Client is safe for
// concurrent use.
type Client struct {
	cfg          Config
	chatCred     auth.Credential
	embedCred    auth.Credential
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient validates the credential set and prepares the HTTP
// transports. Streaming uses a second client without a global timeout;
// both share one Transport so connection pooling still applies.
func NewClient(cfg Config) (*Client, error) {
	defaults := DefaultConfig()
	if cfg.Host == "" {
		cfg.Host = defaults.Host
	}
	if cfg.ChatPath == "" {
		cfg.ChatPath = defaults.ChatPath
	}
	if cfg.EmbeddingPath == "" {
		cfg.EmbeddingPath = defaults.EmbeddingPath
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Termination == nil {
		cfg.Termination = defaults.Termination
	}

	chatCred := auth.Credential{
		Host:      cfg.Host,
		Path:      cfg.ChatPath,
		Method:    http.MethodPost,
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if err := chatCred.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &observability.Transport{},
		}
	}
	streamClient := &http.Client{
		Transport:     httpClient.Transport,
		CheckRedirect: httpClient.CheckRedirect,
		Jar:           httpClient.Jar,
	}

	return &Client{
		cfg:          cfg,
		chatCred:     chatCred,
		embedCred:    chatCred.WithPath(cfg.EmbeddingPath),
		httpClient:   httpClient,
		streamClient: streamClient,
	}, nil
}

// ChatCompletion performs a single-shot completion. The request must
// not have its stream flag set; use ChatCompletionStream for that.
func (c *Client) ChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletion, error) {
	if req == nil {
		return nil, api.NewPreconditionError("request", "is required")
	}
	if req.Stream {
		return nil, api.NewPreconditionError("stream", "must be false for a single-shot completion")
	}

	resp, err := c.send(ctx, c.httpClient, c.chatCred, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, mapHTTPError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, api.NewTransportError("reading response body", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		slog.Warn("provider returned an empty completion body")
		return &ChatCompletion{}, nil
	}

	var cc ChatCompletion
	if err := json.Unmarshal(trimmed, &cc); err != nil {
		return nil, api.NewTransportError("decoding response body", err)
	}
	if err := completionError(&cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

// ChatCompletionStream performs a streaming completion. The returned
// channel closes after the terminal chunk, a [DONE] sentinel, end of
// body, a failed event, or context cancellation, whichever comes first.
func (c *Client) ChatCompletionStream(ctx context.Context, req *ChatCompletionRequest) (<-chan StreamEvent, error) {
	if req == nil {
		return nil, api.NewPreconditionError("request", "is required")
	}
	if !req.Stream {
		return nil, api.NewPreconditionError("stream", "must be true for a streaming completion")
	}

	resp, err := c.send(ctx, c.streamClient, c.chatCred, req, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, mapHTTPError(resp)
	}

	// Audit rejections come back as a plain JSON envelope with HTTP 200
	// even when a stream was requested.
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		defer resp.Body.Close()
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return nil, api.NewTransportError("reading response body", err)
		}
		var cc ChatCompletion
		if err := json.Unmarshal(bytes.TrimSpace(data), &cc); err != nil {
			return nil, api.NewTransportError("decoding response body", err)
		}
		if err := completionError(&cc); err != nil {
			return nil, err
		}
		return nil, api.NewTransportError("provider answered a stream request with a JSON body", nil)
	}

	ch := make(chan StreamEvent, streamBuffer)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		parseSSEStream(ctx, resp.Body, c.cfg.Termination, ch)
	}()
	return ch, nil
}

// Embeddings vectorises up to MaxEmbeddingBatch texts in one call.
func (c *Client) Embeddings(ctx context.Context, req *EmbeddingRequest) (*EmbeddingList, error) {
	if req == nil || len(req.Input) == 0 {
		return nil, api.NewPreconditionError("input", "needs at least one text")
	}
	if len(req.Input) > MaxEmbeddingBatch {
		return nil, api.NewPreconditionError("input",
			fmt.Sprintf("accepts at most %d texts per call, got %d", MaxEmbeddingBatch, len(req.Input)))
	}

	wire := *req
	if wire.Model == "" {
		wire.Model = DefaultEmbeddingModel
	}

	resp, err := c.send(ctx, c.httpClient, c.embedCred, &wire, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, mapHTTPError(resp)
	}

	var list EmbeddingList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, api.NewTransportError("decoding embedding response", err)
	}
	if err := embeddingError(&list); err != nil {
		return nil, err
	}
	return &list, nil
}

// send signs the URL for this call, serialises the payload and performs
// the request on the given transport. The signed URL embeds the
// credentials, so it is never logged.
func (c *Client) send(ctx context.Context, hc *http.Client, cred auth.Credential, payload any, stream bool) (*http.Response, error) {
	signed, err := auth.Sign(cred, time.Now())
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, api.NewConfigurationError("request", "cannot encode request body: "+err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, cred.Method, signed.URL, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewTransportError("building request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	debug.Log("client", "sending request",
		"host", cred.Host, "path", cred.Path, "stream", stream)
	debug.Raw("client", string(body))

	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}
	debug.Log("client", "received response", "status", resp.StatusCode)
	return resp, nil
}

// Close releases idle connections on both transports.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
	c.streamClient.CloseIdleConnections()
}

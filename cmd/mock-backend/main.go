// Command mock-backend runs a deterministic Spark-protocol server for
// conformance testing. It verifies the signed-URL query parameters the
// way the real endpoint does and returns predictable completions based
// on prompt content.
//
// Configuration:
//
//	MOCK_PORT       - Listen port (default: 9090)
//	MOCK_API_SECRET - When set, the HMAC signature of every request is
//	                  recomputed under this secret and verified.
package main

import (
	"context"
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liugddx/spark-go/pkg/auth"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mock backend failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}
	secret := os.Getenv("MOCK_API_SECRET")

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.With(verifySignature(secret)).Post("/v1.1/chat", handleChat)
	r.With(verifySignature(secret)).Post("/v1/embeddings", handleEmbeddings)

	srv := &http.Server{Addr: ":" + port, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mock backend starting", "port", port, "verify_signature", secret != "")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("mock backend shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// --- Signature verification ---

// verifySignature checks the signed-URL query parameters. All three
// must be present; when a secret is configured the authorization value
// is regenerated and compared, mirroring the provider's own check.
func verifySignature(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			authorization := q.Get("authorization")
			date := q.Get("date")
			host := q.Get("host")
			if authorization == "" || date == "" || host == "" {
				writeEnvelope(w, http.StatusUnauthorized, 10163, "missing authorization parameters")
				return
			}
			if secret != "" {
				if err := checkSignature(secret, authorization, date, host, r.Method, r.URL.Path); err != nil {
					slog.Warn("signature rejected", "path", r.URL.Path, "error", err)
					writeEnvelope(w, http.StatusForbidden, 10163, "HMAC signature does not match")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkSignature regenerates the authorization value from the request
// parameters and the shared secret, then compares in constant time.
func checkSignature(secret, authorization, date, host, method, path string) error {
	decoded, err := base64.StdEncoding.DecodeString(authorization)
	if err != nil {
		return fmt.Errorf("decoding authorization: %w", err)
	}
	apiKey := authField(string(decoded), "api_key")
	if apiKey == "" {
		return fmt.Errorf("authorization carries no api_key")
	}
	when, err := time.Parse(http.TimeFormat, date)
	if err != nil {
		return fmt.Errorf("parsing date: %w", err)
	}

	expected, err := auth.Sign(auth.Credential{
		Host:      host,
		Path:      path,
		Method:    method,
		APIKey:    apiKey,
		APISecret: secret,
	}, when)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected.Authorization), []byte(authorization)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// authField pulls one quoted field out of the decoded authorization
// value, e.g. api_key="..".
func authField(origin, name string) string {
	for _, part := range strings.Split(origin, ",") {
		part = strings.TrimSpace(part)
		if rest, ok := strings.CutPrefix(part, name+`="`); ok {
			if end := strings.IndexByte(rest, '"'); end >= 0 {
				return rest[:end]
			}
		}
	}
	return ""
}

// --- Wire types ---

type chatRequest struct {
	Model    string        `json:"model"`
	User     string        `json:"user,omitempty"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type embeddingRequest struct {
	Input  []string `json:"input"`
	Model  string   `json:"model,omitempty"`
	UserID string   `json:"user_id,omitempty"`
}

// --- Chat handler ---

func handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, 10007, "invalid request body")
		return
	}

	// A prompt asking for a provider error gets the documented
	// HTTP-200 error envelope, exercising the client's error mapping.
	if strings.Contains(strings.ToLower(lastUserMessage(&req)), "provider error") {
		if req.Stream {
			handleChatStreamError(w)
			return
		}
		writeEnvelope(w, http.StatusOK, 10013, "input contains sensitive or blocked words")
		return
	}

	if req.Stream {
		handleChatStream(w, &req)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "cha-mock-000001",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"choices": []map[string]any{
			{
				"index":   0,
				"message": map[string]any{"role": "assistant", "content": replyFor(&req)},
			},
		},
		"usage": map[string]any{
			"prompt_tokens": 5, "completion_tokens": 3, "total_tokens": 8,
		},
	})
}

// replyFor keys the canned reply on the newest user message.
func replyFor(req *chatRequest) string {
	lower := strings.ToLower(lastUserMessage(req))
	switch {
	case strings.Contains(lower, "count from 1 to 5"):
		return "1, 2, 3, 4, 5"
	case hasSystemMessage(req):
		return "Ahoy there, matey!"
	default:
		return "Hello world"
	}
}

func lastUserMessage(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return req.Messages[i].Content
		}
	}
	return ""
}

func hasSystemMessage(req *chatRequest) bool {
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			return true
		}
	}
	return false
}

// --- Streaming ---

// handleChatStream sends the reply as SSE delta chunks with usage on
// the final chunk, then the [DONE] sentinel.
func handleChatStream(w http.ResponseWriter, req *chatRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fragments := fragmentsFor(req)

	// Delta chunks, the first one carrying the role.
	for i, fragment := range fragments {
		writeStreamChunk(w, fragment, i == 0, false, 0)
		flusher.Flush()
	}

	// Final chunk with usage and the end flag.
	writeStreamChunk(w, "", false, true, len(fragments))
	flusher.Flush()

	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// fragmentsFor splits the canned reply into the delta fragments the
// conformance tests expect.
func fragmentsFor(req *chatRequest) []string {
	if replyFor(req) == "Hello world" {
		return []string{"He", "llo", " world"}
	}
	reply := replyFor(req)
	mid := len(reply) / 2
	return []string{reply[:mid], reply[mid:]}
}

func writeStreamChunk(w http.ResponseWriter, content string, isFirst, isLast bool, completionTokens int) {
	delta := map[string]any{"content": content}
	if isFirst {
		delta["role"] = "assistant"
	}

	chunk := map[string]any{
		"id":      "cha-mock-stream",
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"choices": []map[string]any{
			{"index": 0, "delta": delta},
		},
	}
	if isLast {
		chunk["is_end"] = true
		chunk["usage"] = map[string]any{
			"prompt_tokens":     5,
			"completion_tokens": completionTokens,
			"total_tokens":      5 + completionTokens,
		}
		chunk["choices"] = []map[string]any{
			{"index": 0, "delta": map[string]any{"content": ""}, "finish_reason": "stop"},
		}
	}

	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// handleChatStreamError emits the error envelope as the first frame.
func handleChatStreamError(w http.ResponseWriter) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	data, _ := json.Marshal(map[string]any{
		"code":    10013,
		"message": "input contains sensitive or blocked words",
		"sid":     "cha-mock-blocked",
	})
	fmt.Fprintf(w, "data: %s\n\n", data)
	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// --- Embeddings handler ---

// handleEmbeddings returns one deterministic unit vector per input so
// round-trip tests can assert exact values.
func handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req embeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, 10007, "invalid request body")
		return
	}
	if len(req.Input) == 0 || len(req.Input) > 16 {
		writeEmbeddingError(w, 10014, fmt.Sprintf("batch size must be 1..16, got %d", len(req.Input)))
		return
	}

	data := make([]map[string]any, len(req.Input))
	for i := range req.Input {
		vec := make([]float32, 4)
		vec[i%4] = 1
		data[i] = map[string]any{
			"object":    "embedding",
			"index":     i,
			"embedding": vec,
		}
	}

	model := req.Model
	if model == "" {
		model = "embedding-v1"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   data,
		"model":  model,
		"usage": map[string]any{
			"prompt_tokens": len(req.Input), "total_tokens": len(req.Input),
		},
	})
}

// --- Error envelopes ---

// writeEnvelope emits the chat error envelope. The real endpoint
// reports business errors with HTTP 200, so status is the caller's
// choice.
func writeEnvelope(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": message,
		"sid":     "cha-mock-error",
	})
}

// writeEmbeddingError emits the embedding error envelope, which uses
// different field names than the chat one.
func writeEmbeddingError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"object":     "list",
		"error_code": code,
		"error_msg":  message,
	})
}

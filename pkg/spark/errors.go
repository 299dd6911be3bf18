package spark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/liugddx/spark-go/pkg/api"
)

// maxErrorBody caps how much of a failed response we read when looking
// for a provider error envelope.
const maxErrorBody = 4096

// mapHTTPError converts a non-2xx response into an api.Error. When the
// body carries a parseable provider envelope the failure is attributed
// to the provider; otherwise it is a transport failure.
func mapHTTPError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if perr, ok := extractProviderError(data); ok {
		return perr
	}
	if len(data) > 0 {
		return api.NewTransportError(
			fmt.Sprintf("provider returned HTTP %d: %s", resp.StatusCode, truncate(string(data), 200)), nil)
	}
	return api.NewTransportError(fmt.Sprintf("provider returned HTTP %d", resp.StatusCode), nil)
}

// extractProviderError pulls code/message/sid out of a response body.
// The second return is false when the body does not look like a
// provider envelope.
func extractProviderError(data []byte) (error, bool) {
	var envelope struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Sid     string `json:"sid"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, false
	}
	if envelope.Code == 0 && envelope.Message == "" {
		return nil, false
	}
	code := ""
	if envelope.Code != 0 {
		code = strconv.Itoa(envelope.Code)
	}
	return api.NewProviderError(code, envelope.Message), true
}

// mapNetworkError converts a failure from the HTTP client into an
// api.Error, keeping context cancellation distinguishable for callers.
func mapNetworkError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return api.NewTransportError("request cancelled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return api.NewTransportError("request timed out", err)
	default:
		return api.NewTransportError("request failed", err)
	}
}

// completionError reports the in-band error envelope Spark delivers
// with HTTP 200 responses. A zero code means success.
func completionError(cc *ChatCompletion) error {
	if cc == nil || cc.Code == 0 {
		return nil
	}
	return api.NewProviderError(strconv.Itoa(cc.Code), cc.Message)
}

// embeddingError is the embedding flavour of completionError. Some
// failures arrive with only error_msg populated, so either field marks
// a provider error.
func embeddingError(list *EmbeddingList) error {
	if list == nil || (list.ErrorCode == 0 && list.ErrorMsg == "") {
		return nil
	}
	code := ""
	if list.ErrorCode != 0 {
		code = strconv.Itoa(list.ErrorCode)
	}
	return api.NewProviderError(code, list.ErrorMsg)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

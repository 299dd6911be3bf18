package spark

import (
	"context"
	"fmt"
	"time"

	"github.com/liugddx/spark-go/pkg/api"
	"github.com/liugddx/spark-go/pkg/observability"
	"github.com/liugddx/spark-go/pkg/retry"
)

// EmbeddingModel vectorises text batches through a Client.
type EmbeddingModel struct {
	client  *Client
	model   string
	retrier *retry.Retrier
}

var _ api.EmbeddingModel = (*EmbeddingModel)(nil)

// NewEmbeddingModel builds an embedding model. An empty model name
// falls back to DefaultEmbeddingModel; retrier may be nil.
func NewEmbeddingModel(client *Client, model string, retrier *retry.Retrier) (*EmbeddingModel, error) {
	if client == nil {
		return nil, api.NewConfigurationError("client", "is required")
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &EmbeddingModel{client: client, model: model, retrier: retrier}, nil
}

// Embed vectorises up to MaxEmbeddingBatch texts. Results come back in
// input order regardless of how the provider ordered them.
func (m *EmbeddingModel) Embed(ctx context.Context, req *api.EmbeddingRequest) (*api.EmbeddingResponse, error) {
	if req == nil || len(req.Input) == 0 {
		return nil, api.NewPreconditionError("input", "needs at least one text")
	}
	model := m.model
	if req.Model != "" {
		model = req.Model
	}
	wire := &EmbeddingRequest{Input: req.Input, Model: model, UserID: req.User}

	start := time.Now()
	var list *EmbeddingList
	err := m.retrier.Do(ctx, func() error {
		var callErr error
		list, callErr = m.client.Embeddings(ctx, wire)
		return callErr
	})
	observability.RecordRequest("embeddings", model, outcomeOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	embeddings := make([]api.Embedding, len(list.Data))
	for _, d := range list.Data {
		if d.Index < 0 || d.Index >= len(embeddings) {
			return nil, api.NewTransportError(
				fmt.Sprintf("embedding index %d out of range for %d results", d.Index, len(list.Data)), nil)
		}
		embeddings[d.Index] = api.Embedding{Index: d.Index, Vector: d.Embedding}
	}

	respModel := list.Model
	if respModel == "" {
		respModel = model
	}
	return &api.EmbeddingResponse{
		Model:      respModel,
		Embeddings: embeddings,
		Usage:      toUsage(list.Usage),
	}, nil
}

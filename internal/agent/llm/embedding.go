package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/askpy/server/internal/agent/model"
	"github.com/askpy/server/internal/core"
	errx "github.com/askpy/server/internal/core/error"
)

// Embedder converts text into a fixed-length vector for nearest-neighbor
// lookups. The embedding model is fixed by configuration, not per-request:
// query vectors must live in the same space the documents were ingested in.
type Embedder struct {
	client *genai.Client
	cfg    model.EmbeddingConfig
	policy core.CallPolicy
}

func NewEmbedder(client *genai.Client, cfg model.EmbeddingConfig, policy core.CallPolicy) *Embedder {
	return &Embedder{client: client, cfg: cfg, policy: policy}
}

// Embed returns the query embedding for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp *genai.EmbedContentResponse
	err := core.Retry(ctx, e.policy, func(ctx context.Context) error {
		cfg := &genai.EmbedContentConfig{
			TaskType: "RETRIEVAL_QUERY",
		}
		if e.cfg.Dimensions > 0 {
			cfg.OutputDimensionality = genai.Ptr(int32(e.cfg.Dimensions))
		}
		r, err := e.client.Models.EmbedContent(ctx, e.cfg.Model, genai.Text(text), cfg)
		if err != nil {
			return errx.WrapCollaborator("embedding model", err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errx.WrapCollaborator("embedding model", fmt.Errorf("empty embedding for query"))
	}
	return resp.Embeddings[0].Values, nil
}

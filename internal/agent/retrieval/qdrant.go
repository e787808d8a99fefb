// Package retrieval implements the knowledge-base gateway: embed the query,
// run a nearest-neighbor lookup against the vector index, and return the
// stored text of the best matches. The index is populated by a separate
// ingestion pipeline; this package only queries it.
package retrieval

import (
	"context"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/askpy/server/internal/core"
	errx "github.com/askpy/server/internal/core/error"
	logx "github.com/askpy/server/pkg/logger"
)

const (
	// MaxChunks bounds how many chunks a lookup returns.
	MaxChunks = 3

	// payloadTextField is the payload key holding the chunk text, set by
	// the ingestion pipeline.
	payloadTextField = "page_content"
)

// Embedder turns a query into the fixed-length vector the index was built with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds the vector index connection settings.
type Config struct {
	Host       string `envconfig:"QDRANT_HOST" default:"localhost"`
	Port       int    `envconfig:"QDRANT_PORT" default:"6334"`
	APIKey     string `envconfig:"QDRANT_API_KEY"`
	UseTLS     bool   `envconfig:"QDRANT_USE_TLS" default:"false"`
	Collection string `envconfig:"QDRANT_COLLECTION" default:"kb-index"`
}

// Gateway retrieves previously-indexed text chunks relevant to a query.
type Gateway struct {
	client     *qdrant.Client
	embedder   Embedder
	collection string
	policy     core.CallPolicy
}

func NewGateway(cfg Config, embedder Embedder, policy core.CallPolicy) (*Gateway, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, errx.WrapCollaborator("vector index", err)
	}
	return &Gateway{
		client:     client,
		embedder:   embedder,
		collection: cfg.Collection,
		policy:     policy,
	}, nil
}

// Search returns up to MaxChunks chunk texts ordered by relevance
// (descending). No matches is a valid outcome and yields an empty slice,
// not an error; errors are reserved for collaborator failures.
func (g *Gateway) Search(ctx context.Context, query string) ([]string, error) {
	vector, err := g.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	var points []*qdrant.ScoredPoint
	err = core.Retry(ctx, g.policy, func(ctx context.Context) error {
		res, err := g.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: g.collection,
			Query:          qdrant.NewQuery(vector...),
			Limit:          qdrant.PtrOf(uint64(MaxChunks)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return errx.WrapCollaborator("vector index", err)
		}
		points = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	chunks := chunkTexts(points)
	logx.Debug().Int("matches", len(points)).Int("chunks", len(chunks)).Msg("knowledge base lookup")
	return chunks, nil
}

// Close releases the underlying index connection.
func (g *Gateway) Close() error {
	return g.client.Close()
}

// chunkTexts extracts the stored text field from each match's payload,
// skipping matches without one.
func chunkTexts(points []*qdrant.ScoredPoint) []string {
	chunks := make([]string, 0, len(points))
	for _, p := range points {
		if p == nil {
			continue
		}
		v, ok := p.Payload[payloadTextField]
		if !ok {
			continue
		}
		text := strings.TrimSpace(v.GetStringValue())
		if text == "" {
			continue
		}
		chunks = append(chunks, text)
	}
	return chunks
}

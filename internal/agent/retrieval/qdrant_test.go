package retrieval

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
)

func TestChunkTextsExtractsPayloadField(t *testing.T) {
	points := []*qdrant.ScoredPoint{
		{Payload: qdrant.NewValueMap(map[string]any{"page_content": "first chunk"})},
		{Payload: qdrant.NewValueMap(map[string]any{"page_content": "second chunk"})},
	}

	chunks := chunkTexts(points)
	assert.Equal(t, []string{"first chunk", "second chunk"}, chunks)
}

func TestChunkTextsSkipsMissingOrEmptyText(t *testing.T) {
	points := []*qdrant.ScoredPoint{
		nil,
		{Payload: qdrant.NewValueMap(map[string]any{"source": "doc.pdf"})},
		{Payload: qdrant.NewValueMap(map[string]any{"page_content": "   "})},
		{Payload: qdrant.NewValueMap(map[string]any{"page_content": "kept"})},
	}

	chunks := chunkTexts(points)
	assert.Equal(t, []string{"kept"}, chunks)
}

func TestChunkTextsEmptyMatches(t *testing.T) {
	assert.Empty(t, chunkTexts(nil))
}

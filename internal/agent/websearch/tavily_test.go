package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpy/server/internal/core"
)

func testPolicy() core.CallPolicy {
	return core.CallPolicy{Timeout: time.Second, Attempts: 1, BaseDelay: time.Millisecond}
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGateway(Config{
		APIKey:     "test-key",
		Endpoint:   srv.URL,
		MaxResults: 3,
	}, testPolicy())
}

func TestSearchFormatsResults(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req.APIKey)
		assert.Equal(t, "python decorators", req.Query)
		assert.Equal(t, 3, req.MaxResults)

		json.NewEncoder(w).Encode(tavilyResponse{
			Query: req.Query,
			Results: []tavilyResult{
				{Title: "Decorators", Content: "A decorator wraps a function.", URL: "https://docs.python.org/3/glossary.html"},
				{Title: "PEP 318", Content: "Decorators for functions and methods.", URL: "https://peps.python.org/pep-0318/"},
			},
		})
	})

	got, err := g.Search(context.Background(), "python decorators")
	require.NoError(t, err)

	want := "Title: Decorators\nContent: A decorator wraps a function.\nSource: https://docs.python.org/3/glossary.html\n\n" +
		"Title: PEP 318\nContent: Decorators for functions and methods.\nSource: https://peps.python.org/pep-0318/"
	assert.Equal(t, want, got)
}

func TestSearchNoResultsReturnsMarker(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tavilyResponse{Results: nil})
	})

	got, err := g.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, NoResultsMarker, got)
}

func TestSearchProviderErrorPropagates(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := g.Search(context.Background(), "anything")
	assert.Error(t, err)
}

func TestSearchRetriesTransientFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(tavilyResponse{
			Results: []tavilyResult{{Title: "t", Content: "c", URL: "u"}},
		})
	}))
	t.Cleanup(srv.Close)

	g := NewGateway(Config{APIKey: "k", Endpoint: srv.URL, MaxResults: 3}, core.CallPolicy{
		Timeout:   time.Second,
		Attempts:  2,
		BaseDelay: time.Millisecond,
	})

	got, err := g.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Contains(t, got, "Title: t")
}

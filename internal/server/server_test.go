package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpy/server/internal/agent/model"
	errx "github.com/askpy/server/internal/core/error"
)

type stubRunner struct {
	reply string
	err   error
	seen  model.TurnRequest
}

func (s *stubRunner) RunTurn(_ context.Context, in model.TurnRequest) (string, error) {
	s.seen = in
	return s.reply, s.err
}

// testConfig supplies a CORS origin because gin-contrib/cors panics at
// construction when no origins are allowed.
func testConfig() Config {
	return Config{CORSOrigins: []string{"http://localhost:5000"}}
}

func postQuery(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestQueryReturnsResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	runner := &stubRunner{reply: "a decorator wraps a function"}
	router := NewRouter(runner, testConfig())

	rec := postQuery(t, router, `{"query":"What is a decorator?","model_name":"gemini-2.5-flash","thread_id":"t-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a decorator wraps a function", resp["response"])

	assert.Equal(t, "t-1", runner.seen.ConversationID)
	assert.Equal(t, "What is a decorator?", runner.seen.Query)
	assert.Equal(t, "gemini-2.5-flash", runner.seen.ModelName)
}

func TestQueryRejectsMissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(&stubRunner{}, testConfig())

	rec := postQuery(t, router, `{"query":"no thread id"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestQuerySurfacesTurnFailureStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	runner := &stubRunner{err: errx.WrapCollaborator("web search", errors.New("down"))}
	router := NewRouter(runner, testConfig())

	rec := postQuery(t, router, `{"query":"q","thread_id":"t-1"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errx.CollaboratorErrorMessage, resp["detail"])
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(&stubRunner{}, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

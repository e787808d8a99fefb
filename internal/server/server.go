// Package server provides the HTTP boundary: one query endpoint that runs a
// single conversation turn and returns the reply.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/askpy/server/internal/agent/flow"
	"github.com/askpy/server/internal/agent/model"
	errx "github.com/askpy/server/internal/core/error"
	logx "github.com/askpy/server/pkg/logger"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr        string   `envconfig:"SERVER_ADDR" default:":8000"`
	CORSOrigins []string `envconfig:"SERVER_CORS_ORIGINS" default:"http://localhost:5000"`
}

type queryRequest struct {
	Query     string `json:"query" binding:"required"`
	ModelName string `json:"model_name"`
	ThreadID  string `json:"thread_id" binding:"required"`
}

type queryResponse struct {
	Response string `json:"response"`
}

// NewRouter builds the gin engine with the query and health endpoints.
func NewRouter(runner flow.Runner, cfg Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/query", handleQuery(runner))

	return router
}

func handleQuery(runner flow.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req queryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
			return
		}

		response, err := runner.RunTurn(c.Request.Context(), model.TurnRequest{
			ConversationID: req.ThreadID,
			Query:          req.Query,
			ModelName:      req.ModelName,
		})
		if err != nil {
			logx.Error().Err(err).Str("thread_id", req.ThreadID).Msg("query turn failed")
			c.JSON(errx.StatusOf(err), gin.H{"detail": errx.MessageOf(err)})
			return
		}

		c.JSON(http.StatusOK, queryResponse{Response: response})
	}
}

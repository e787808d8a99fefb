package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/askpy/server/internal/agent/flow"
	"github.com/askpy/server/internal/agent/flow/conversations"
	"github.com/askpy/server/internal/agent/llm"
	"github.com/askpy/server/internal/agent/model"
	"github.com/askpy/server/internal/agent/repo"
	"github.com/askpy/server/internal/agent/retrieval"
	"github.com/askpy/server/internal/agent/websearch"
	"github.com/askpy/server/internal/core"
	"github.com/askpy/server/internal/server"
	logx "github.com/askpy/server/pkg/logger"
	pkgredis "github.com/askpy/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis  pkgredis.Config
	Server server.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Judgment     model.JudgmentModelConfig
	Answer       model.AnswerModelConfig
	Embedding    model.EmbeddingConfig
	Prompt       model.PromptConfig
	Conversation model.ConversationConfig
	Collaborator model.CollaboratorConfig

	// Gateways
	Qdrant retrieval.Config
	Tavily websearch.Config
}

func main() {
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})
	if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", cfg.Conversation.TTL).Msg("Invalid CONVERSATION_TTL")
	}
	policy, err := callPolicy(cfg.Collaborator)
	if err != nil {
		logx.Fatal().Err(err).Msg("Invalid collaborator config")
	}

	// Conversation state store
	var conversationRepo model.ConversationRepository
	switch cfg.Conversation.Store {
	case "memory":
		conversationRepo = repo.NewMemoryConversationRepository()
		logx.Info().Msg("Using in-memory conversation store")
	default:
		rdb, err := cfg.Redis.New()
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
		}
		defer rdb.Close()
		conversationRepo = repo.NewRedisConversationRepository(rdb, ttl)
		logx.Info().Msg("Connected to Redis")
	}

	// Collaborator clients, constructed once and parameterized per call
	genaiClient, err := llm.NewGenAIClient(ctx, llm.ClientConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create model client")
	}
	embedder := llm.NewEmbedder(genaiClient, cfg.Embedding, policy)

	knowledge, err := retrieval.NewGateway(cfg.Qdrant, embedder, policy)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to connect to vector index")
	}
	defer knowledge.Close()

	orchestrator, err := flow.NewOrchestrator(flow.Config{
		Judgment:  llm.NewJudgmentClient(genaiClient, &cfg.Judgment, policy),
		Generator: llm.NewGenerationClient(genaiClient, &cfg.Answer, policy),
		Knowledge: knowledge,
		Web:       websearch.NewGateway(cfg.Tavily, policy),
		Messages:  conversations.NewMessagesManager(conversationRepo, cfg.Conversation),
		Prompt:    cfg.Prompt,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build turn orchestrator")
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.NewRouter(orchestrator, cfg.Server),
	}

	go func() {
		logx.Info().Str("addr", cfg.Server.Addr).Msg("Serving")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logx.Info().Msg("Server stopped")
}

// callPolicy parses the collaborator duration strings into a CallPolicy.
func callPolicy(cfg model.CollaboratorConfig) (core.CallPolicy, error) {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return core.CallPolicy{}, err
	}
	baseDelay, err := time.ParseDuration(cfg.RetryBaseDelay)
	if err != nil {
		return core.CallPolicy{}, err
	}
	return core.CallPolicy{
		Timeout:   timeout,
		Attempts:  cfg.RetryAttempts,
		BaseDelay: baseDelay,
	}, nil
}

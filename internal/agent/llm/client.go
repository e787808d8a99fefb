package llm

import (
	"context"
	"fmt"

	logx "github.com/askpy/server/pkg/logger"
	"google.golang.org/genai"

	"github.com/askpy/server/internal/agent/model"
)

// ClientConfig holds provider-level settings shared by all model calls.
type ClientConfig struct {
	APIKey  string
	BaseURL string
}

// NewGenAIClient creates the single genai client used by every model-backed
// collaborator. Constructed once at process start; the model name is a
// per-call parameter.
func NewGenAIClient(ctx context.Context, config ClientConfig) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// logUsage records token usage and cost for one model invocation.
func logUsage(role, modelName string, usage *genai.GenerateContentResponseUsageMetadata) {
	if !model.CostEnabled() || usage == nil {
		return
	}
	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(usage, pricing)
	logx.Debug().
		Str("role", role).
		Str("model", modelName).
		Int32("prompt_tokens", usage.PromptTokenCount).
		Int32("completion_tokens", usage.CandidatesTokenCount).
		Int32("total_tokens", usage.TotalTokenCount).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/askpy/server/internal/agent/model"
	"github.com/askpy/server/internal/core"
	errx "github.com/askpy/server/internal/core/error"
)

// GenerationClient produces free-text answers. Used only by the final
// answer step of a turn.
type GenerationClient struct {
	client *genai.Client
	cfg    *model.AnswerModelConfig
	policy core.CallPolicy
}

func NewGenerationClient(client *genai.Client, cfg *model.AnswerModelConfig, policy core.CallPolicy) *GenerationClient {
	return &GenerationClient{client: client, cfg: cfg, policy: policy}
}

// Generate invokes the model once with the prompt and returns its text.
func (c *GenerationClient) Generate(ctx context.Context, modelName, prompt string) (string, error) {
	if modelName == "" {
		modelName = c.cfg.Model
	}

	var resp *genai.GenerateContentResponse
	err := core.Retry(ctx, c.policy, func(ctx context.Context) error {
		r, err := c.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(c.cfg.Temperature),
			MaxOutputTokens: int32(c.cfg.MaxTokens),
		})
		if err != nil {
			return errx.WrapCollaborator("answer model", err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return "", err
	}
	logUsage("answer", modelName, resp.UsageMetadata)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errx.WrapCollaborator("answer model", fmt.Errorf("empty model response"))
	}
	return text, nil
}

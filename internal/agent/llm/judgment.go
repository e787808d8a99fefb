package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"

	"github.com/askpy/server/internal/agent/model"
	"github.com/askpy/server/internal/core"
	errx "github.com/askpy/server/internal/core/error"
)

// judgment response schemas, mirrored by the types in internal/agent/model.
var (
	topicSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"on_topic": {Type: genai.TypeBoolean},
		},
		Required: []string{"on_topic"},
	}

	routeSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"route": {
				Type: genai.TypeString,
				Enum: []string{string(model.RouteRag), string(model.RouteAnswer), string(model.RouteEnd)},
			},
			"reply": {
				Type:        genai.TypeString,
				Description: "filled only when route == 'end'",
			},
		},
		Required: []string{"route"},
	}

	sufficiencySchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"sufficient": {Type: genai.TypeBoolean},
		},
		Required: []string{"sufficient"},
	}
)

// JudgmentClient asks a model for one of the predefined outcome shapes.
// A response that cannot be parsed into the expected shape is a hard error
// for that call (errx.ErrMalformedJudgment), never a silently-defaulted value.
type JudgmentClient struct {
	client *genai.Client
	cfg    *model.JudgmentModelConfig
	policy core.CallPolicy
}

func NewJudgmentClient(client *genai.Client, cfg *model.JudgmentModelConfig, policy core.CallPolicy) *JudgmentClient {
	return &JudgmentClient{client: client, cfg: cfg, policy: policy}
}

// CheckTopic asks whether the query falls inside the supported topic domain.
func (c *JudgmentClient) CheckTopic(ctx context.Context, modelName, prompt string) (model.TopicVerdict, error) {
	var verdict model.TopicVerdict
	if err := c.invoke(ctx, modelName, prompt, topicSchema, &verdict); err != nil {
		return model.TopicVerdict{}, err
	}
	return verdict, nil
}

// DecideRoute classifies the query into rag/answer/end, with an optional
// canned reply for end.
func (c *JudgmentClient) DecideRoute(ctx context.Context, modelName, prompt string) (model.RouteDecision, error) {
	var decision model.RouteDecision
	if err := c.invoke(ctx, modelName, prompt, routeSchema, &decision); err != nil {
		return model.RouteDecision{}, err
	}
	switch decision.Route {
	case model.RouteRag, model.RouteAnswer, model.RouteEnd:
	default:
		return model.RouteDecision{}, errx.WrapJudgment(fmt.Errorf("unexpected route %q", decision.Route))
	}
	return decision, nil
}

// JudgeSufficiency asks whether retrieved knowledge-base content suffices
// to answer the query.
func (c *JudgmentClient) JudgeSufficiency(ctx context.Context, modelName, prompt string) (model.SufficiencyVerdict, error) {
	var verdict model.SufficiencyVerdict
	if err := c.invoke(ctx, modelName, prompt, sufficiencySchema, &verdict); err != nil {
		return model.SufficiencyVerdict{}, err
	}
	return verdict, nil
}

func (c *JudgmentClient) invoke(ctx context.Context, modelName, prompt string, schema *genai.Schema, out any) error {
	if modelName == "" {
		modelName = c.cfg.Model
	}

	var resp *genai.GenerateContentResponse
	err := core.Retry(ctx, c.policy, func(ctx context.Context) error {
		r, err := c.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature:      genai.Ptr(c.cfg.Temperature),
			MaxOutputTokens:  int32(c.cfg.MaxTokens),
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		})
		if err != nil {
			return errx.WrapCollaborator("judgment model", err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return err
	}
	logUsage("judgment", modelName, resp.UsageMetadata)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return errx.WrapJudgment(fmt.Errorf("empty model response"))
	}
	if err := decodeStrict(text, out); err != nil {
		return errx.WrapJudgment(err)
	}
	return nil
}

// decodeStrict parses exactly one JSON object into out, rejecting unknown
// fields and trailing content.
func decodeStrict(s string, out any) error {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing content after judgment object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("trailing content after judgment object")
	}
	return nil
}

// Package prompts renders the orchestrator's prompt templates. Templates are
// embedded at build time; known tokens are substituted with a Replacer so
// braces inside the template JSON examples stay untouched.
package prompts

import (
	_ "embed"
	"strings"

	"github.com/askpy/server/internal/agent/model"
)

//go:embed template/topic_prompt.txt
var topicPrompt string

//go:embed template/route_prompt.txt
var routePrompt string

//go:embed template/sufficiency_prompt.txt
var sufficiencyPrompt string

//go:embed template/answer_prompt.txt
var answerPrompt string

// NoContextMarker is inserted into the answer prompt when neither retrieval
// nor web search produced usable context.
const NoContextMarker = "No context available"

// RenderTopic builds the topic-eligibility classification prompt.
func RenderTopic(cfg model.PromptConfig, query string) string {
	return strings.NewReplacer(
		"{topic_domain}", cfg.TopicDomain,
		"{query}", query,
	).Replace(topicPrompt)
}

// RenderRoute builds the routing classification prompt.
func RenderRoute(cfg model.PromptConfig, query string) string {
	return strings.NewReplacer(
		"{topic_domain}", cfg.TopicDomain,
		"{query}", query,
	).Replace(routePrompt)
}

// RenderSufficiency builds the retrieval sufficiency prompt. An empty
// retrieved blob is rendered as-is so the judge sees there is nothing.
func RenderSufficiency(query, retrieved string) string {
	return strings.NewReplacer(
		"{query}", query,
		"{retrieved}", retrieved,
	).Replace(sufficiencyPrompt)
}

// RenderAnswer builds the final answer prompt from the question, the
// assembled context blob, and the recent conversation transcript.
func RenderAnswer(cfg model.PromptConfig, query, context, history string) string {
	if strings.TrimSpace(context) == "" {
		context = NoContextMarker
	}
	return strings.NewReplacer(
		"{topic_domain}", cfg.TopicDomain,
		"{query}", query,
		"{context}", context,
		"{history}", history,
	).Replace(answerPrompt)
}

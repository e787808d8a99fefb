// Package flow implements the turn orchestrator: a fixed-topology state
// machine that classifies a query's topic eligibility, routes it, retrieves
// knowledge-base context, falls back to live web search when retrieval is
// judged insufficient, and produces exactly one assistant reply per turn.
//
// The topology is small and fixed, so nodes are dispatched through a plain
// table keyed by node id rather than a graph engine:
//
//	checkTopic -> route -> {ragLookup, answer, end}
//	ragLookup  -> {answer, webSearch}
//	webSearch  -> answer
package flow

import (
	"context"
	"fmt"
	"net/http"

	"github.com/askpy/server/internal/agent/flow/conversations"
	"github.com/askpy/server/internal/agent/model"
	errx "github.com/askpy/server/internal/core/error"
	logx "github.com/askpy/server/pkg/logger"
)

// node identifies one state of the turn state machine.
type node string

const (
	nodeCheckTopic node = "check_topic"
	nodeRoute      node = "route"
	nodeRagLookup  node = "rag_lookup"
	nodeWebSearch  node = "web_search"
	nodeAnswer     node = "answer"
	nodeEnd        node = "end"
)

// maxSteps caps one run; the longest legal path is four nodes.
const maxSteps = 8

// Judgment asks a model for one of the predefined structured outcomes.
type Judgment interface {
	CheckTopic(ctx context.Context, modelName, prompt string) (model.TopicVerdict, error)
	DecideRoute(ctx context.Context, modelName, prompt string) (model.RouteDecision, error)
	JudgeSufficiency(ctx context.Context, modelName, prompt string) (model.SufficiencyVerdict, error)
}

// Generator produces the free-text answer. Invoked at most once per turn.
type Generator interface {
	Generate(ctx context.Context, modelName, prompt string) (string, error)
}

// KnowledgeSearcher returns relevant previously-indexed text chunks.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// WebSearcher returns formatted live search results.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Runner executes one turn of a conversation.
type Runner interface {
	RunTurn(ctx context.Context, in model.TurnRequest) (string, error)
}

// Config holds everything needed to compose the turn flow end-to-end.
type Config struct {
	Judgment  Judgment
	Generator Generator
	Knowledge KnowledgeSearcher
	Web       WebSearcher
	Messages  *conversations.MessagesManager
	Prompt    model.PromptConfig
}

// nodeFunc runs one node against the turn state and names the next node.
type nodeFunc func(ctx context.Context, st *model.TurnState) (node, error)

// Orchestrator drives the turn state machine. It is stateless across turns;
// all per-turn state lives in the TurnState owned by one RunTurn call.
type Orchestrator struct {
	judgment  Judgment
	generator Generator
	knowledge KnowledgeSearcher
	web       WebSearcher
	messages  *conversations.MessagesManager
	prompt    model.PromptConfig

	handlers map[node]nodeFunc
}

// NewOrchestrator validates the collaborators and builds the dispatch table.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.Judgment == nil {
		return nil, fmt.Errorf("judgment client is nil")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generation client is nil")
	}
	if cfg.Knowledge == nil {
		return nil, fmt.Errorf("retrieval gateway is nil")
	}
	if cfg.Web == nil {
		return nil, fmt.Errorf("web search gateway is nil")
	}
	if cfg.Messages == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}

	o := &Orchestrator{
		judgment:  cfg.Judgment,
		generator: cfg.Generator,
		knowledge: cfg.Knowledge,
		web:       cfg.Web,
		messages:  cfg.Messages,
		prompt:    cfg.Prompt,
	}
	o.handlers = map[node]nodeFunc{
		nodeCheckTopic: o.checkTopic,
		nodeRoute:      o.route,
		nodeRagLookup:  o.ragLookup,
		nodeWebSearch:  o.webSearch,
		nodeAnswer:     o.answer,
	}
	return o, nil
}

// RunTurn runs the node sequence for one turn and, only after the whole run
// succeeds, commits the user message and the new assistant reply to the
// conversation. On any node error nothing is appended; the caller may retry
// the entire turn safely.
func (o *Orchestrator) RunTurn(ctx context.Context, in model.TurnRequest) (string, error) {
	if in.ConversationID == "" {
		return "", errx.New(fmt.Errorf("empty conversation id"), http.StatusBadRequest, "conversation id is required")
	}
	if in.Query == "" {
		return "", errx.New(fmt.Errorf("empty query"), http.StatusBadRequest, "query is required")
	}

	st := &model.TurnState{
		ConversationID: in.ConversationID,
		Query:          in.Query,
		ModelName:      in.ModelName,
	}

	current := nodeCheckTopic
	for steps := 0; current != nodeEnd; steps++ {
		if steps >= maxSteps {
			return "", errx.New(fmt.Errorf("step cap exceeded at node %q", current), http.StatusInternalServerError, errx.SystemErrorMessage)
		}
		// Cancellation aborts between nodes, before anything is committed.
		if err := ctx.Err(); err != nil {
			return "", err
		}

		handler, ok := o.handlers[current]
		if !ok {
			return "", errx.New(fmt.Errorf("no handler for node %q", current), http.StatusInternalServerError, errx.SystemErrorMessage)
		}

		next, err := handler(ctx, st)
		if err != nil {
			logx.Error().Err(err).
				Str("conversation_id", st.ConversationID).
				Str("node", string(current)).
				Msg("turn failed")
			return "", err
		}

		logx.Debug().
			Str("conversation_id", st.ConversationID).
			Str("node", string(current)).
			Str("next", string(next)).
			Str("route", string(st.Route)).
			Msg("node complete")
		current = next
	}

	if err := o.messages.CommitTurn(ctx, st.ConversationID, st.Query, st.Reply); err != nil {
		return "", err
	}
	return st.Reply, nil
}

var _ Runner = (*Orchestrator)(nil)

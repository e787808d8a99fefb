package flow

import (
	"context"
	"strings"

	"github.com/askpy/server/internal/agent/flow/prompts"
	"github.com/askpy/server/internal/agent/model"
	logx "github.com/askpy/server/pkg/logger"
)

// checkTopic asks whether the query is inside the supported topic domain.
// It only records the verdict; enforcement happens downstream so a single
// node owns the off-topic reply.
func (o *Orchestrator) checkTopic(ctx context.Context, st *model.TurnState) (node, error) {
	verdict, err := o.judgment.CheckTopic(ctx, st.ModelName, prompts.RenderTopic(o.prompt, st.Query))
	if err != nil {
		return nodeEnd, err
	}
	st.OnTopic = verdict.OnTopic
	st.Route = model.RouteAnswer
	return nodeRoute, nil
}

// route classifies the query into rag/answer/end. An off-topic verdict
// overrides whatever the classifier chose: the turn ends with the fixed
// refusal reply and no retrieval or generation happens.
func (o *Orchestrator) route(ctx context.Context, st *model.TurnState) (node, error) {
	decision, err := o.judgment.DecideRoute(ctx, st.ModelName, prompts.RenderRoute(o.prompt, st.Query))
	if err != nil {
		return nodeEnd, err
	}

	if !st.OnTopic {
		logx.Debug().Str("conversation_id", st.ConversationID).Msg("off-topic query, refusing")
		st.Route = model.RouteEnd
		st.Reply = o.prompt.RefusalReply
		return nodeEnd, nil
	}

	st.Route = decision.Route
	switch decision.Route {
	case model.RouteEnd:
		reply := strings.TrimSpace(decision.Reply)
		if reply == "" {
			reply = o.prompt.GreetingReply
		}
		st.Reply = reply
		return nodeEnd, nil
	case model.RouteRag:
		return nodeRagLookup, nil
	default:
		return nodeAnswer, nil
	}
}

// ragLookup queries the knowledge base exactly once and asks the judge
// whether the result suffices. Insufficient (including empty) retrieval
// falls back to web search; the knowledge base is never re-queried.
func (o *Orchestrator) ragLookup(ctx context.Context, st *model.TurnState) (node, error) {
	chunks, err := o.knowledge.Search(ctx, st.Query)
	if err != nil {
		return nodeEnd, err
	}
	st.Knowledge = strings.Join(chunks, "\n\n")

	verdict, err := o.judgment.JudgeSufficiency(ctx, st.ModelName, prompts.RenderSufficiency(st.Query, st.Knowledge))
	if err != nil {
		return nodeEnd, err
	}

	if verdict.Sufficient {
		st.Route = model.RouteAnswer
		return nodeAnswer, nil
	}
	logx.Debug().Str("conversation_id", st.ConversationID).Msg("retrieval insufficient, falling back to web search")
	st.Route = model.RouteWeb
	return nodeWebSearch, nil
}

// webSearch fetches live results and always proceeds to the answer node.
func (o *Orchestrator) webSearch(ctx context.Context, st *model.TurnState) (node, error) {
	blob, err := o.web.Search(ctx, st.Query)
	if err != nil {
		return nodeEnd, err
	}
	st.Web = blob
	st.Route = model.RouteAnswer
	return nodeAnswer, nil
}

// answer assembles the context from whichever source is populated and makes
// the single generation call of the turn.
func (o *Orchestrator) answer(ctx context.Context, st *model.TurnState) (node, error) {
	// Route already refuses off-topic turns; this recheck keeps the node
	// safe if the topology ever changes.
	if !st.OnTopic {
		st.Route = model.RouteEnd
		st.Reply = o.prompt.RefusalReply
		return nodeEnd, nil
	}

	var ctxParts []string
	if st.Knowledge != "" {
		ctxParts = append(ctxParts, "Knowledge Base information:\n"+st.Knowledge)
	}
	if st.Web != "" {
		ctxParts = append(ctxParts, "Web Search Results:\n"+st.Web)
	}
	contextBlob := strings.Join(ctxParts, "\n\n")

	transcript, err := o.messages.BuildTranscript(ctx, st.ConversationID)
	if err != nil {
		return nodeEnd, err
	}

	reply, err := o.generator.Generate(ctx, st.ModelName, prompts.RenderAnswer(o.prompt, st.Query, contextBlob, transcript))
	if err != nil {
		return nodeEnd, err
	}
	st.Reply = reply
	return nodeEnd, nil
}

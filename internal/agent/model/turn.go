package model

// Route is the orchestrator's categorical decision for how a turn's query
// should be satisfied.
type Route string

const (
	RouteRag    Route = "rag"
	RouteAnswer Route = "answer"
	RouteWeb    Route = "web"
	RouteEnd    Route = "end"
)

// Valid reports whether r is one of the known route tags.
func (r Route) Valid() bool {
	switch r {
	case RouteRag, RouteAnswer, RouteWeb, RouteEnd:
		return true
	}
	return false
}

// TurnRequest is the input for processing one turn of a conversation.
type TurnRequest struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
	ModelName      string `json:"model_name"`
}

// TurnState carries the orchestration state for a single turn. It exists
// only for the duration of one run, is owned exclusively by that run, and
// is never persisted or shared across turns.
type TurnState struct {
	ConversationID string
	Query          string
	ModelName      string

	// Route is set by every node before it exits.
	Route Route

	// OnTopic is set by the topic check and consulted by later nodes.
	OnTopic bool

	// Knowledge holds retrieved knowledge-base text, empty when retrieval
	// found nothing or was never attempted.
	Knowledge string

	// Web holds formatted web search results, empty when the fallback was
	// never taken.
	Web string

	// Reply is the single assistant message produced by the turn.
	Reply string
}

// RouteDecision is the structured output of the routing judgment.
// Reply is populated only when Route is "end".
type RouteDecision struct {
	Route Route  `json:"route"`
	Reply string `json:"reply"`
}

// TopicVerdict is the structured output of the topic eligibility judgment.
type TopicVerdict struct {
	OnTopic bool `json:"on_topic"`
}

// SufficiencyVerdict is the structured output of the retrieval sufficiency
// judgment.
type SufficiencyVerdict struct {
	Sufficient bool `json:"sufficient"`
}

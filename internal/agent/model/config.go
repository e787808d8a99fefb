package model

// ================ Config ================

// JudgmentModelConfig configures the structured-judgment model calls
// (topic check, routing, sufficiency). Model is the fallback used when the
// request does not carry a model name.
type JudgmentModelConfig struct {
	Model       string  `envconfig:"JUDGMENT_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"JUDGMENT_MAX_TOKENS" default:"512"`
	Temperature float32 `envconfig:"JUDGMENT_TEMPERATURE" default:"0.1"`
}

// AnswerModelConfig configures the free-text answer generation call.
type AnswerModelConfig struct {
	Model       string  `envconfig:"ANSWER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ANSWER_MAX_TOKENS" default:"2048"`
	Temperature float32 `envconfig:"ANSWER_TEMPERATURE" default:"0.4"`
}

// EmbeddingConfig configures query embedding for knowledge-base lookups.
// Dimensions must match the vector index the documents were ingested into.
type EmbeddingConfig struct {
	Model      string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	Dimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`
}

// ConversationConfig configures conversation persistence and the history
// window used for answer context.
type ConversationConfig struct {
	TTL   string `envconfig:"CONVERSATION_TTL" default:"24h"`
	Store string `envconfig:"CONVERSATION_STORE" default:"redis"`

	History struct {
		MaxTurns int `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"10"`
	}
}

// PromptConfig configures the supported topic domain and the fixed replies
// the orchestrator emits without invoking the answer model.
type PromptConfig struct {
	TopicDomain   string `envconfig:"PROMPT_TOPIC_DOMAIN" default:"the Python programming language"`
	RefusalReply  string `envconfig:"PROMPT_REFUSAL_REPLY" default:"Sorry, I am not capable of answering non-Python questions."`
	GreetingReply string `envconfig:"PROMPT_GREETING_REPLY" default:"Hello!"`
}

// CollaboratorConfig bounds every external collaborator call. Timeout and
// RetryBaseDelay are duration strings parsed at startup.
type CollaboratorConfig struct {
	Timeout        string `envconfig:"COLLABORATOR_TIMEOUT" default:"30s"`
	RetryAttempts  int    `envconfig:"COLLABORATOR_RETRY_ATTEMPTS" default:"2"`
	RetryBaseDelay string `envconfig:"COLLABORATOR_RETRY_BASE_DELAY" default:"300ms"`
}

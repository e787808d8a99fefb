package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpy/server/internal/agent/model"
)

func TestDecodeStrictRouteDecision(t *testing.T) {
	var decision model.RouteDecision
	require.NoError(t, decodeStrict(`{"route":"end","reply":"Hello!"}`, &decision))
	assert.Equal(t, model.RouteEnd, decision.Route)
	assert.Equal(t, "Hello!", decision.Reply)
}

func TestDecodeStrictOmittedReply(t *testing.T) {
	var decision model.RouteDecision
	require.NoError(t, decodeStrict(`{"route":"rag"}`, &decision))
	assert.Equal(t, model.RouteRag, decision.Route)
	assert.Empty(t, decision.Reply)
}

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	var verdict model.TopicVerdict
	err := decodeStrict(`{"on_topic":true,"confidence":0.9}`, &verdict)
	assert.Error(t, err)
}

func TestDecodeStrictRejectsTrailingContent(t *testing.T) {
	var verdict model.SufficiencyVerdict
	err := decodeStrict(`{"sufficient":true}{"sufficient":false}`, &verdict)
	assert.Error(t, err)
}

func TestDecodeStrictRejectsNonObject(t *testing.T) {
	var verdict model.TopicVerdict
	err := decodeStrict(`"yes"`, &verdict)
	assert.Error(t, err)
}

func TestDecodeStrictBooleanVerdicts(t *testing.T) {
	var topic model.TopicVerdict
	require.NoError(t, decodeStrict(`{"on_topic":false}`, &topic))
	assert.False(t, topic.OnTopic)

	var sufficiency model.SufficiencyVerdict
	require.NoError(t, decodeStrict(`{"sufficient":true}`, &sufficiency))
	assert.True(t, sufficiency.Sufficient)
}

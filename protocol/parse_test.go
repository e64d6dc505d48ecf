package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage_SystemInit(t *testing.T) {
	line := []byte(`{"kind":"system-init","session_id":"sess-123","model":"claude-sonnet-4-5","cwd":"/tmp","tools":["Read","Task"],"agents":["researcher","reviewer"]}`)

	msg, err := ParseMessage(line)
	require.NoError(t, err)

	m, ok := msg.(SystemInitMessage)
	require.True(t, ok)
	assert.Equal(t, "sess-123", m.SessionID)
	assert.Equal(t, "claude-sonnet-4-5", m.Model)
	assert.Equal(t, []string{"researcher", "reviewer"}, m.Agents)
}

func TestParseMessage_AssistantTurn(t *testing.T) {
	line := []byte(`{"kind":"assistant-turn","parent_task_id":null,"message":{"model":"claude-sonnet-4-5","content":[{"type":"text","text":"hi"}],"usage":{"input_tokens":10,"cache_read_input_tokens":5}}}`)

	msg, err := ParseMessage(line)
	require.NoError(t, err)

	m, ok := msg.(AssistantTurnMessage)
	require.True(t, ok)
	assert.Nil(t, m.ParentTaskID)
	assert.Equal(t, 10, m.Message.Usage.InputTokens)

	blocks, ok := m.Message.Content.AsBlocks()
	require.True(t, ok)
	require.Len(t, blocks, 1)
}

func TestParseMessage_AssistantTurn_NestedParent(t *testing.T) {
	line := []byte(`{"kind":"assistant-turn","parent_task_id":"toolu_parent","message":{"content":[]}}`)

	msg, err := ParseMessage(line)
	require.NoError(t, err)

	m, ok := msg.(AssistantTurnMessage)
	require.True(t, ok)
	require.NotNil(t, m.ParentTaskID)
	assert.Equal(t, "toolu_parent", *m.ParentTaskID)
}

func TestParseMessage_UserTurn_HookBlocked(t *testing.T) {
	line := []byte(`{"kind":"user-turn","subtype":"hook_blocked","message":{"content":"edit rejected by hook"}}`)

	msg, err := ParseMessage(line)
	require.NoError(t, err)

	m, ok := msg.(UserTurnMessage)
	require.True(t, ok)
	assert.True(t, m.IsHookBlocked())
}

func TestParseMessage_FinalResult(t *testing.T) {
	line := []byte(`{"kind":"final-result","result":"done","is_error":false,"usage":{"input_tokens":100},"modelUsage":{"claude-sonnet-4-5":{"inputTokens":100,"contextWindow":200000}}}`)

	msg, err := ParseMessage(line)
	require.NoError(t, err)

	m, ok := msg.(FinalResultMessage)
	require.True(t, ok)
	assert.Equal(t, "done", m.Result)
	assert.Equal(t, 200000, m.ModelUsage["claude-sonnet-4-5"].ContextWindow)
}

func TestParseMessage_UnknownKind(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"kind":"telemetry","data":{}}`))
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestParseMessage_InvalidJSON(t *testing.T) {
	_, err := ParseMessage([]byte(`{not json`))
	assert.Error(t, err)
}

func TestParseTraceEntry_Wrapped(t *testing.T) {
	line := []byte(`{"id":"e1","timestamp":"2026-08-01T10:00:00Z","direction":"received","message":{"kind":"system-compact"}}`)

	msg, err := ParseTraceEntry(line)
	require.NoError(t, err)
	_, ok := msg.(SystemCompactMessage)
	assert.True(t, ok)
}

func TestParseTraceEntry_RawFallback(t *testing.T) {
	line := []byte(`{"kind":"error","message":"boom"}`)

	msg, err := ParseTraceEntry(line)
	require.NoError(t, err)

	m, ok := msg.(ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, "boom", m.Message)
}

func TestFlexibleContent_StringAndBlocks(t *testing.T) {
	var m TurnContent
	require.NoError(t, jsonUnmarshal(`{"content":"plain"}`, &m))
	s, ok := m.Content.AsString()
	require.True(t, ok)
	assert.Equal(t, "plain", s)
	_, ok = m.Content.AsBlocks()
	assert.False(t, ok)

	require.NoError(t, jsonUnmarshal(`{"content":[{"type":"text","text":"x"}]}`, &m))
	_, ok = m.Content.AsString()
	assert.False(t, ok)
	blocks, ok := m.Content.AsBlocks()
	require.True(t, ok)
	assert.Len(t, blocks, 1)
}

func jsonUnmarshal(s string, v interface{}) error {
	return json.Unmarshal([]byte(s), v)
}

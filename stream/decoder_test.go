package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpad/agentcore/protocol"
)

func decodeLine(t *testing.T, d *Decoder, line string) []Event {
	t.Helper()
	msg, err := protocol.ParseMessage([]byte(line))
	require.NoError(t, err)
	return d.Decode(msg)
}

func TestDecode_SystemInit(t *testing.T) {
	d := NewDecoder()

	events := decodeLine(t, d, `{"kind":"system-init","session_id":"sess-1","agents":["researcher"]}`)
	require.Len(t, events, 1)

	started, ok := events[0].(SessionStartedEvent)
	require.True(t, ok)
	assert.Equal(t, "sess-1", started.SessionID)
	assert.Equal(t, []string{"researcher"}, started.AgentRoster)
}

func TestDecode_SystemInit_NoSessionID(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"system-init"}`)
	assert.Empty(t, events)
}

func TestDecode_SystemCompact(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"system-compact","trigger":"auto"}`)
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeCompactBoundary, events[0].Type())
}

func TestDecode_AssistantTurn_BlocksInOrder(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"assistant-turn","parent_task_id":null,"message":{"content":[
		{"type":"thinking","thinking":"let me see"},
		{"type":"text","text":"hello"},
		{"type":"tool_use","id":"toolu_1","name":"Read","input":{"file_path":"/tmp/a"}}
	]}}`)
	require.Len(t, events, 3)

	assert.Equal(t, EventTypeThinking, events[0].Type())
	assert.Equal(t, EventTypeText, events[1].Type())

	tool, ok := events[2].(ToolInvokedEvent)
	require.True(t, ok)
	assert.Equal(t, "toolu_1", tool.ID)
	assert.Equal(t, "Read", tool.Name)
	assert.Equal(t, "/tmp/a", tool.Input["file_path"])
	assert.Nil(t, tool.ParentTaskID)
}

func TestDecode_AssistantTurn_SynthesizesMissingToolID(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"assistant-turn","message":{"content":[{"type":"tool_use","name":"Bash","input":{}}]}}`)
	require.Len(t, events, 1)

	tool, ok := events[0].(ToolInvokedEvent)
	require.True(t, ok)
	assert.NotEmpty(t, tool.ID)
	assert.True(t, strings.HasPrefix(tool.ID, "tool_"))
}

func TestDecode_AssistantTurn_UsageOnTopLevelOnly(t *testing.T) {
	d := NewDecoder(WithDefaultModel("claude-sonnet-4-5"))

	top := decodeLine(t, d, `{"kind":"assistant-turn","parent_task_id":null,"message":{"content":[],"usage":{"input_tokens":1000,"cache_read_input_tokens":99000}}}`)
	require.Len(t, top, 1)
	usage, ok := top[0].(UsageEvent)
	require.True(t, ok)
	assert.Equal(t, 100000, usage.Info.OccupiedTokens)
	assert.Equal(t, 200000, usage.Info.ContextWindowSize)
	assert.Equal(t, 50, usage.Info.Percentage)
	assert.Equal(t, "claude-sonnet-4-5", usage.Info.Model)

	nested := decodeLine(t, d, `{"kind":"assistant-turn","parent_task_id":"toolu_parent","message":{"content":[],"usage":{"input_tokens":1000,"cache_read_input_tokens":99000}}}`)
	assert.Empty(t, nested, "child-task turns must never produce usage")
}

func TestDecode_Usage_PercentageClamped(t *testing.T) {
	d := NewDecoder(WithContextWindow("tiny-model", 100))

	events := decodeLine(t, d, `{"kind":"assistant-turn","message":{"model":"tiny-model","content":[],"usage":{"input_tokens":500}}}`)
	require.Len(t, events, 1)
	usage := events[0].(UsageEvent)
	assert.Equal(t, 100, usage.Info.Percentage)
}

func TestDecode_UserTurn_ToolResults(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"user-turn","message":{"content":[
		{"type":"tool_result","tool_use_id":"toolu_1","content":"file contents"},
		{"type":"tool_result","tool_use_id":"toolu_2","content":{"lines":3},"is_error":true}
	]}}`)
	require.Len(t, events, 2)

	first, ok := events[0].(ToolCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "toolu_1", first.ID)
	assert.Equal(t, "file contents", first.Content)
	assert.False(t, first.IsError)

	second, ok := events[1].(ToolCompletedEvent)
	require.True(t, ok)
	assert.True(t, second.IsError)
	assert.Contains(t, second.Content, "\"lines\": 3", "structured results are pretty-printed")
}

func TestDecode_UserTurn_DedicatedResultField(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"user-turn","tool_use_id":"toolu_9","tool_use_result":{"status":"ok"},"message":{"content":"ignored"}}`)
	require.Len(t, events, 1)

	done, ok := events[0].(ToolCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "toolu_9", done.ID)
	assert.Contains(t, done.Content, "\"status\": \"ok\"")
}

func TestDecode_UserTurn_DedicatedFieldNotDuplicated(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"user-turn","tool_use_id":"toolu_1","tool_use_result":"dup","message":{"content":[
		{"type":"tool_result","tool_use_id":"toolu_1","content":"from block"}
	]}}`)
	require.Len(t, events, 1)
	assert.Equal(t, "from block", events[0].(ToolCompletedEvent).Content)
}

func TestDecode_UserTurn_HookBlocked(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"user-turn","subtype":"hook_blocked","tool_use_id":"toolu_1","tool_use_result":"should not emit","message":{"content":"edit rejected"}}`)
	require.Len(t, events, 1, "blocked turns emit exactly one event")

	blocked, ok := events[0].(BlockedEvent)
	require.True(t, ok)
	assert.Equal(t, "edit rejected", blocked.Content)
}

func TestDecode_Delta_TextAndThinking(t *testing.T) {
	d := NewDecoder()

	events := decodeLine(t, d, `{"kind":"delta","parent_task_id":null,"event":{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"chunk"}}}`)
	require.Len(t, events, 1)
	assert.Equal(t, "chunk", events[0].(TextEvent).Content)

	events = decodeLine(t, d, `{"kind":"delta","event":{"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"hmm"}}}`)
	require.Len(t, events, 1)
	assert.Equal(t, "hmm", events[0].(ThinkingEvent).Content)
}

func TestDecode_Delta_ToolUseStart(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"delta","parent_task_id":"toolu_parent","event":{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_n","name":"Grep","input":{}}}}`)
	require.Len(t, events, 1)

	tool := events[0].(ToolInvokedEvent)
	assert.Equal(t, "toolu_n", tool.ID)
	require.NotNil(t, tool.ParentTaskID)
	assert.Equal(t, "toolu_parent", *tool.ParentTaskID)
}

func TestDecode_Delta_InputJSONFragmentSkipped(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"delta","event":{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"q\":"}}}`)
	assert.Empty(t, events)
}

func TestDecode_Delta_Malformed(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"delta","event":{"type":"content_block_delta","index":0,"delta":"not an object"}}`)
	assert.Empty(t, events, "malformed deltas are skipped, never panic")
}

func TestDecode_FinalResult_EmitsNothing(t *testing.T) {
	d := NewDecoder()
	events := decodeLine(t, d, `{"kind":"final-result","result":"done","is_error":false,"usage":{"input_tokens":123456}}`)
	assert.Empty(t, events, "usage is never sourced from final results")
}

func TestDecode_Error(t *testing.T) {
	d := NewDecoder()

	events := decodeLine(t, d, `{"kind":"error","message":"stream broke"}`)
	require.Len(t, events, 1)
	assert.Equal(t, "stream broke", events[0].(ErrorEvent).Content)

	events = decodeLine(t, d, `{"kind":"error"}`)
	assert.Empty(t, events)
}

func TestDecode_NilMessage(t *testing.T) {
	d := NewDecoder()
	assert.Empty(t, d.Decode(nil))
}

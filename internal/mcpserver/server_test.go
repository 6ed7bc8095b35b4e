package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boshu2/taskmcp/internal/progress"
	"github.com/boshu2/taskmcp/internal/storage"
	"github.com/boshu2/taskmcp/internal/taskmgr"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := storage.NewFileStorage(storage.WithBaseDir(filepath.Join(t.TempDir(), "docs")))
	return New(taskmgr.New(store), "", "test")
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func handle(t *testing.T, s *Server, msg string) string {
	t.Helper()
	resp := s.MCP().HandleMessage(context.Background(), json.RawMessage(msg))
	require.NotNil(t, resp)
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(data)
}

func TestToolHandler_StartAndAnswer(t *testing.T) {
	s := newTestServer(t)
	ops := taskmgr.Operations()

	res, err := s.toolHandler(ops[0])(context.Background(), callRequest("start", nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "(1/7)")

	res, err = s.toolHandler(ops[1])(context.Background(), callRequest("submit-answer", map[string]any{"answer": "할일 관리"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "(2/7)")
}

func TestToolHandler_MissingArgumentIsProtocolError(t *testing.T) {
	s := newTestServer(t)

	_, err := s.toolHandler(taskmgr.Operations()[1])(context.Background(), callRequest("submit-answer", nil))
	require.ErrorIs(t, err, taskmgr.ErrMissingArgument)
}

func TestListTools(t *testing.T) {
	s := newTestServer(t)

	out := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	for _, info := range taskmgr.Operations() {
		assert.Contains(t, out, `"name":"`+string(info.Name)+`"`)
	}
	assert.Contains(t, out, `"required":["answer"]`)
}

func TestCallTool_OverJSONRPC(t *testing.T) {
	s := newTestServer(t)

	out := handle(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"status","arguments":{},"_meta":{"progressToken":"tok-1"}}}`)
	assert.Contains(t, out, "진행중인 프로젝트가 없습니다")
	assert.NotContains(t, out, `"isError":true`)
}

func TestGetPrompt(t *testing.T) {
	s := newTestServer(t)

	out := handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"prompts/get","params":{"name":"task-plan"}}`)
	assert.Contains(t, out, "프로젝트 계획 수립")
	assert.Contains(t, out, "plan 도구를 호출하세요")
}

func TestPromptText(t *testing.T) {
	for _, info := range taskmgr.Operations() {
		text := promptText(info)
		assert.True(t, strings.HasPrefix(text, info.Description), text)
		assert.Contains(t, text, string(info.Name))
	}
}

func TestProgressToken(t *testing.T) {
	req := callRequest("status", nil)
	assert.Nil(t, progressToken(req))

	req.Params.Meta = &mcp.Meta{ProgressToken: "abc"}
	assert.Equal(t, mcp.ProgressToken("abc"), progressToken(req))
}

func TestProgressSink_NoServerInContext(t *testing.T) {
	// Without a server in the context the sink is a no-op.
	progressSink("tok").Publish(context.Background(), progress.Update{Message: "x", Step: 1})
}

// Package mcpserver exposes the task manager operations as MCP tools and
// prompts over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	stdlog "log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/boshu2/taskmcp/internal/progress"
	"github.com/boshu2/taskmcp/internal/taskmgr"
)

// DefaultName is the server name announced during initialization.
const DefaultName = "task-manager"

const progressMethod = "notifications/progress"

const instructions = `프로젝트 작업 관리 서버입니다.
1. start 로 요구사항 질문을 시작하고 submit-answer 로 7개의 질문에 답합니다.
2. plan 으로 docs/project_task.md 작업 계획을 만듭니다.
3. start-task, complete, resume 으로 작업을 진행하고 status 로 진행 상황을 확인합니다.
4. reset 은 작업 디렉토리를 삭제합니다.`

// Server wires the dispatcher into an MCP server.
type Server struct {
	mgr *taskmgr.Manager
	mcp *server.MCPServer
}

// New registers one tool and one prompt per operation.
func New(mgr *taskmgr.Manager, name, version string) *Server {
	if name == "" {
		name = DefaultName
	}

	s := &Server{
		mgr: mgr,
		mcp: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(true),
			server.WithPromptCapabilities(true),
			server.WithRecovery(),
			server.WithInstructions(instructions),
		),
	}

	for _, info := range taskmgr.Operations() {
		s.mcp.AddTool(toolDefinition(info), s.toolHandler(info))
		s.mcp.AddPrompt(mcp.NewPrompt(info.Alias, mcp.WithPromptDescription(info.Description)), promptHandler(info))
	}
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP on in/out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(stdlog.New(zerolog.Ctx(ctx), "", 0))
	zerolog.Ctx(ctx).Info().Int("tools", len(taskmgr.Operations())).Msg("serving MCP over stdio")
	return stdio.Listen(ctx, in, out)
}

func toolDefinition(info taskmgr.Info) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(info.Description)}
	for _, arg := range info.Arguments {
		opts = append(opts, mcp.WithString(arg, mcp.Required(), mcp.Description(argumentDescription(arg))))
	}
	return mcp.NewTool(string(info.Name), opts...)
}

func argumentDescription(arg string) string {
	if arg == taskmgr.ArgAnswer {
		return "현재 질문에 대한 답변"
	}
	return arg
}

// toolHandler dispatches a tool call. Unknown names and missing arguments
// surface as protocol errors; everything else is tool result text.
func (s *Server) toolHandler(info taskmgr.Info) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var opts []taskmgr.CallOption
		if token := progressToken(req); token != nil {
			opts = append(opts, taskmgr.WithSink(progressSink(token)))
		}

		res, err := s.mgr.Dispatch(ctx, string(info.Name), req.GetArguments(), opts...)
		if err != nil {
			return nil, err
		}
		if res.IsError {
			return mcp.NewToolResultError(res.Text), nil
		}
		return mcp.NewToolResultText(res.Text), nil
	}
}

func promptHandler(info taskmgr.Info) server.PromptHandlerFunc {
	return func(context.Context, mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return mcp.NewGetPromptResult(info.Description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText(info))),
		}), nil
	}
}

func promptText(info taskmgr.Info) string {
	if len(info.Arguments) > 0 {
		return fmt.Sprintf("%s: task-manager의 %s 도구를 %s 인자와 함께 호출하세요.", info.Description, info.Name, info.Arguments[0])
	}
	return fmt.Sprintf("%s: task-manager의 %s 도구를 호출하세요.", info.Description, info.Name)
}

func progressToken(req mcp.CallToolRequest) mcp.ProgressToken {
	if req.Params.Meta == nil {
		return nil
	}
	return req.Params.Meta.ProgressToken
}

// progressSink forwards session updates as progress notifications to the
// client that made the call.
func progressSink(token mcp.ProgressToken) progress.Sink {
	return progress.SinkFunc(func(ctx context.Context, u progress.Update) {
		srv := server.ServerFromContext(ctx)
		if srv == nil {
			return
		}
		params := map[string]any{
			"progressToken": token,
			"progress":      u.Step,
			"message":       u.Message,
		}
		if u.Final {
			params["total"] = u.Step
		}
		if err := srv.SendNotificationToClient(ctx, progressMethod, params); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("progress notification not delivered")
		}
	})
}

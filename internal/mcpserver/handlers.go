package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mark3labs/snek/internal/logger"
	"github.com/mark3labs/snek/internal/taskrun"
)

func (s *Server) registerTools(m *server.MCPServer) {
	m.AddTool(
		mcp.NewTool("list-tasks",
			mcp.WithDescription("List the project's public tasks with their subtasks"),
		),
		s.handleListTasks,
	)
	m.AddTool(
		mcp.NewTool("run-task",
			mcp.WithDescription("Run a task or a single subtask (task:subtask) and everything it depends on"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Task name, e.g. test or style:flake8"),
			),
		),
		s.handleRunTask,
	)
}

// handleListTasks describes every public task, one per line, followed by
// its subtasks.
func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	engine, err := s.factory(ctx)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}

	var b strings.Builder
	for _, t := range engine.Set.Public() {
		if t.Doc != "" {
			fmt.Fprintf(&b, "%s - %s\n", t.Name, t.Doc)
		} else {
			fmt.Fprintf(&b, "%s\n", t.Name)
		}
		for _, sub := range t.Subtasks {
			fmt.Fprintf(&b, "  %s:%s\n", t.Name, sub.Name)
		}
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("No tasks defined"), nil
	}
	return mcp.NewToolResultText(strings.TrimSuffix(b.String(), "\n")), nil
}

// handleRunTask runs one task. The reply carries the progress lines and
// the output of failing actions; a failed task is reported as text.
func (s *Server) handleRunTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultText("error: no arguments provided"), nil
	}
	name, ok := args["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return mcp.NewToolResultText("error: missing or empty 'name' parameter"), nil
	}
	name = strings.TrimSpace(name)

	engine, err := s.factory(ctx)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}
	if _, _, err := engine.Set.Lookup(name); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}

	var out bytes.Buffer
	engine.Out = &out
	engine.Reporter = &taskrun.PlainReporter{Out: &out}
	engine.Verbosity = 0

	s.runMu.Lock()
	defer s.runMu.Unlock()

	logger.Info("MCP run-task %s", name)
	if err := engine.Run(ctx, name); err != nil {
		logger.Warn("MCP run-task %s failed: %v", name, err)
		return mcp.NewToolResultText(fmt.Sprintf("%serror: %v", out.String(), err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%stask %s succeeded", out.String(), name)), nil
}

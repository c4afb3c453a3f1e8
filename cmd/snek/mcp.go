package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/snek/internal/mcpserver"
	"github.com/mark3labs/snek/internal/taskrun"
	"github.com/mark3labs/snek/internal/tasks"
	"github.com/spf13/cobra"
)

var mcpFlags struct {
	addr string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the project's tasks to MCP clients",
	Long: `Start an MCP server over streamable HTTP exposing two tools:
list-tasks and run-task. The server runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlags.addr, "addr", "127.0.0.1:0", "Listen address")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Each tool call gets an engine built from the current config and files.
	srv := mcpserver.New(func(ctx context.Context) (*taskrun.Engine, error) {
		s, err := newSession()
		if err != nil {
			return nil, err
		}
		// Tool calls cannot answer prompts, so release is declined.
		s.noPrompt = true
		return s.engine(tasks.Options{})
	}, version)

	if _, err := srv.Start(ctx, mcpFlags.addr); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\n", srv.URL())

	<-ctx.Done()
	return srv.Stop()
}

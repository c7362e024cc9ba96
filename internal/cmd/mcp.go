package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/tierdev/tier-cli/internal/iocontext"
	tiermcp "github.com/tierdev/tier-cli/internal/mcp"
)

func newMCPCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve tier operations as MCP tools over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout.

The server exposes whoami, pull, push and projectDir as tools. It uses the
same configuration and stored login as the other commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inv, err := requireInvocation(ctx)
			if err != nil {
				return err
			}
			s := tiermcp.NewServer(&mcpBackend{inv: inv}, app.Version)
			return tiermcp.Serve(ctx, s, iocontext.Stdin(ctx), iocontext.Stdout(ctx))
		},
	}
}

// mcpBackend answers MCP tool calls with the same client the commands use.
type mcpBackend struct {
	inv *invocation
}

func (b *mcpBackend) Whoami(ctx context.Context) (json.RawMessage, error) {
	c, err := b.inv.authedClient()
	if err != nil {
		return nil, err
	}
	return c.Ping(ctx)
}

func (b *mcpBackend) Pull(ctx context.Context) (json.RawMessage, error) {
	c, err := b.inv.authedClient()
	if err != nil {
		return nil, err
	}
	return c.PullModel(ctx)
}

func (b *mcpBackend) Push(ctx context.Context, model json.RawMessage) (json.RawMessage, error) {
	c, err := b.inv.authedClient()
	if err != nil {
		return nil, err
	}
	return c.PushModel(ctx, model)
}

func (b *mcpBackend) ProjectDir() string {
	root, err := b.inv.projectRoot()
	if err != nil {
		return ""
	}
	return root
}

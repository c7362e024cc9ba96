// Package mcp exposes tier operations as tools on a stdio MCP server.
package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tierdev/tier-cli/internal/cmdutil"
)

const serverName = "tier"

// Tool names.
const (
	ToolWhoami     = "tier_whoami"
	ToolPull       = "tier_pull"
	ToolPush       = "tier_push"
	ToolProjectDir = "tier_project_dir"
)

// Backend performs the tier operations behind each tool.
type Backend interface {
	Whoami(ctx context.Context) (json.RawMessage, error)
	Pull(ctx context.Context) (json.RawMessage, error)
	Push(ctx context.Context, model json.RawMessage) (json.RawMessage, error)
	ProjectDir() string
}

// NewServer builds an MCP server with one tool per tier operation.
func NewServer(b Backend, version string) *server.MCPServer {
	s := server.NewMCPServer(serverName, version, server.WithToolCapabilities(false))
	h := &handlers{backend: b}

	s.AddTool(mcp.NewTool(ToolWhoami,
		mcp.WithDescription("Show the tier account the current credential belongs to"),
	), h.whoami)

	s.AddTool(mcp.NewTool(ToolPull,
		mcp.WithDescription("Fetch the current pricing model as JSON"),
	), h.pull)

	s.AddTool(mcp.NewTool(ToolPush,
		mcp.WithDescription("Upload a pricing model. Comments and trailing commas are allowed."),
		mcp.WithString("model",
			mcp.Required(),
			mcp.Description("Pricing model document (JSON or JSONC)"),
		),
	), h.push)

	s.AddTool(mcp.NewTool(ToolProjectDir,
		mcp.WithDescription("Show the project directory credentials are scoped to"),
	), h.projectDir)

	return s
}

// Serve runs s over the given stdio streams until ctx is done or stdin closes.
func Serve(ctx context.Context, s *server.MCPServer, stdin io.Reader, stdout io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, stdin, stdout)
}

type handlers struct {
	backend Backend
}

func (h *handlers) whoami(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(ToolWhoami)(h.backend.Whoami(ctx))
}

func (h *handlers) pull(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(ToolPull)(h.backend.Pull(ctx))
}

func (h *handlers) push(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := req.GetString("model", "")
	if raw == "" {
		return mcp.NewToolResultError("model is required"), nil
	}
	model, err := cmdutil.ParseModel([]byte(cmdutil.NormalizeJSONInput(raw)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ToolPush)(h.backend.Push(ctx, model))
}

func (h *handlers) projectDir(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(h.backend.ProjectDir()), nil
}

// jsonResult turns a backend reply into a tool result. Backend failures are
// reported to the model as tool errors, not protocol errors.
func jsonResult(tool string) func(json.RawMessage, error) (*mcp.CallToolResult, error) {
	return func(body json.RawMessage, err error) (*mcp.CallToolResult, error) {
		if err != nil {
			slog.Debug("mcp tool failed", "tool", tool, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(body) == 0 {
			body = json.RawMessage("null")
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

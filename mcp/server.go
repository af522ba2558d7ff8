// Package mcp exposes the purchase-history client over the Model Context
// Protocol so agent frameworks can list records and trigger sync cycles.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	kaimono "github.com/mfujimori/kaimono"
)

// Server wraps the MCP server with kaimono tools.
type Server struct {
	client    *kaimono.Client
	mcpServer *server.MCPServer
}

// ToolResult represents the result of a tool call.
type ToolResult struct {
	Content string
	IsError bool
}

// ToolInfo represents a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer creates a new MCP server with kaimono tools registered.
func NewServer(client *kaimono.Client) *Server {
	s := &Server{client: client}

	s.mcpServer = server.NewMCPServer(
		"kaimono",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// HandleMessage processes a raw JSON-RPC message and returns a response.
// This is primarily for testing the MCP protocol layer.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: "purchase_list", Description: "List the locally persisted purchase history"},
		{Name: "purchase_sync", Description: "Run one incremental sync cycle against the purchase feed"},
	}
}

// CallTool executes a tool by name with the given arguments.
// This is used for testing and direct invocation.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	switch name {
	case "purchase_list":
		return s.handleList(ctx, args)
	case "purchase_sync":
		return s.handleSync(ctx, args)
	default:
		return &ToolResult{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}, nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("purchase_list",
		mcp.WithDescription("List the locally persisted purchase history, oldest first. Optionally limited to the most recent N records."),
		mcp.WithNumber("limit",
			mcp.Description("Return only the most recent N records (default: all)"),
		),
	), s.mcpHandleList)

	s.mcpServer.AddTool(mcp.NewTool("purchase_sync",
		mcp.WithDescription("Run one incremental sync cycle: resolve the missing date window, fetch it from the purchase feed and persist the new records atomically."),
	), s.mcpHandleSync)
}

func (s *Server) mcpHandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleList(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleSync(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func toMCPResult(r *ToolResult) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: r.Content,
			},
		},
	}
	if r.IsError {
		result.IsError = true
	}
	return result
}

// Internal handlers

type listEntry struct {
	ID          int64  `json:"id"`
	Hash        string `json:"hash"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	PurchasedAt string `json:"purchased_at"`
}

func (s *Server) handleList(ctx context.Context, args map[string]any) (*ToolResult, error) {
	logs, err := s.client.Logs()
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("list failed: %v", err), IsError: true}, nil
	}

	if limit, ok := args["limit"].(float64); ok && limit > 0 && int(limit) < len(logs) {
		logs = logs[len(logs)-int(limit):]
	}

	entries := make([]listEntry, len(logs))
	for i, l := range logs {
		entries[i] = listEntry{
			ID:          l.ID,
			Hash:        l.Hash,
			Name:        l.Name,
			Price:       l.Price,
			PurchasedAt: l.PurchasedAt.String(),
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return &ToolResult{Content: string(data)}, nil
}

func (s *Server) handleSync(ctx context.Context, _ map[string]any) (*ToolResult, error) {
	outcome, err := s.client.Sync(ctx)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("sync failed: %v", err), IsError: true}, nil
	}

	window := "none"
	if outcome.Window != nil {
		window = outcome.Window.String()
	}
	msg := fmt.Sprintf("sync complete: window=%s fetched=%d persisted=%d skipped=%d",
		window, outcome.Fetched, outcome.Persisted, outcome.Skipped)
	return &ToolResult{Content: msg}, nil
}

package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/karpagadevi/templed/internal/agent"
)

// NewMCPServer creates an MCP server exposing the temple agent to
// MCP-capable chat clients.
func NewMCPServer(a Responder) *server.MCPServer {
	s := server.NewMCPServer(
		"templed",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("templed — question answering about Indian temples, combining a fine-tuned temple expert model with live web search."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("ask_temple",
			mcp.WithDescription("Answer a question about an Indian temple, routing between the fine-tuned model and live web search as needed."),
			mcp.WithString("query", mcp.Description("The question to answer"), mcp.Required()),
			mcp.WithBoolean("show_reasoning", mcp.Description("Emit the reasoning trace to the server log for this call")),
		),
		mcpAsk(a),
	)

	s.AddTool(
		mcp.NewTool("conversation_history",
			mcp.WithDescription("Return recent question/answer interactions."),
			mcp.WithNumber("last", mcp.Description("Number of entries to return (default 5)")),
		),
		mcpHistory(a),
	)

	s.AddTool(
		mcp.NewTool("clear_history",
			mcp.WithDescription("Clear the conversation history."),
		),
		mcpClearHistory(a),
	)

	s.AddTool(
		mcp.NewTool("agent_stats",
			mcp.WithDescription("Return agent statistics: strategy usage, temples discussed, and search-quota counters."),
		),
		mcpStats(a),
	)

	return s
}

func mcpAsk(a Responder) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		trace := agent.TraceDefault
		if req.GetBool("show_reasoning", false) {
			trace = agent.TraceOn
		}

		resp := a.Respond(ctx, query, trace)

		b, err := json.Marshal(resp)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpHistory(a Responder) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		last := req.GetInt("last", 5)
		if last <= 0 {
			last = 5
		}

		entries := a.History(last)
		if len(entries) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(entries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal history: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpClearHistory(a Responder) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a.ClearHistory()
		return mcpText("Conversation history cleared."), nil
	}
}

func mcpStats(a Responder) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(a.Stats())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(s string) *mcp.CallToolResult {
	return mcp.NewToolResultText(s)
}

func mcpError(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultError(msg)
}

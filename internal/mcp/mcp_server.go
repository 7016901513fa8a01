// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/civiclens/civiclens/internal/contract"
)

// NewMCPServer initializes and configures the CivicLens MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.APIClient, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"CivicLens Timeline Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		mgr:     mgr,
	}

	// --- 1. Tool: list_topics ---
	s.AddTool(mcp.NewTool("list_topics",
		mcp.WithDescription("List civic topics with their events and open actionables."),
	), h.handleListTopics)

	// --- 2. Tool: list_events ---
	s.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List civic events with their engagement totals and trend."),
	), h.handleListEvents)

	// --- 3. Tool: get_event ---
	s.AddTool(mcp.NewTool("get_event",
		mcp.WithDescription("Fetch one event including its engagement timeline."),
		mcp.WithNumber("event_id", mcp.Description("The event identifier."), mcp.Required()),
	), h.handleGetEvent)

	// --- 4. Tool: merge_timelines ---
	s.AddTool(mcp.NewTool("merge_timelines",
		mcp.WithDescription("Align several event timelines on one time axis, carrying each value forward until it changes."),
		mcp.WithString("event_ids", mcp.Description("Comma separated event identifiers, e.g. '7,9'."), mcp.Required()),
		mcp.WithString("metric", mcp.Description("Metric to plot. Defaults to 'engagement'."), mcp.Enum("engagement", "likes", "comments")),
		mcp.WithBoolean("cumulative", mcp.Description("Plot running totals instead of per-sample values.")),
	), h.handleMergeTimelines)

	// --- 5. Tool: trend_path ---
	s.AddTool(mcp.NewTool("trend_path",
		mcp.WithDescription("Build the smoothed SVG path, axis ticks and summary stats for one event."),
		mcp.WithNumber("event_id", mcp.Description("The event identifier."), mcp.Required()),
		mcp.WithBoolean("closed", mcp.Description("Close the path into a loop.")),
		mcp.WithNumber("tension", mcp.Description("Curve tension, 0 < t <= 2. Defaults to 0.5.")),
		mcp.WithString("metric", mcp.Description("Metric to plot."), mcp.Enum("engagement", "likes", "comments")),
	), h.handleTrendPath)

	// --- 6. Tool: search ---
	s.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Find the topic that best matches a free text query."),
		mcp.WithString("query", mcp.Description("Free text query."), mcp.Required()),
	), h.handleSearch)

	return s
}

// StartMCPServer starts the CivicLens MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.APIClient, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, client, mgr)
	return server.ServeStdio(s)
}

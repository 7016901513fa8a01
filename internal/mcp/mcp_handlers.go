package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/civiclens/civiclens/core"
	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/internal/outwriter"
	"github.com/civiclens/civiclens/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.APIClient
	mgr     contract.CacheManager
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

// eventID reads a required positive event_id argument.
func eventID(request mcp.CallToolRequest) (int, error) {
	id := request.GetInt("event_id", 0)
	if id <= 0 {
		return 0, fmt.Errorf("event_id must be a positive integer")
	}
	return id, nil
}

func (h *toolHandler) handleListTopics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topics, err := h.client.ListTopics(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing topics failed: %v", err)), nil
	}
	return jsonResult(topics), nil
}

func (h *toolHandler) handleListEvents(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events, err := h.client.ListEvents(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing events failed: %v", err)), nil
	}
	return jsonResult(events), nil
}

func (h *toolHandler) handleGetEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := eventID(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid event parameters: %v", err)), nil
	}

	event, err := h.client.GetEvent(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching event %d failed: %v", id, err)), nil
	}
	return jsonResult(event), nil
}

func (h *toolHandler) handleMergeTimelines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	ids, err := contract.ParseIDList(request.GetString("event_ids", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid merge parameters: %v", err)), nil
	}
	cfg.EventIDs = ids
	if err := cfg.ApplyMetric(request.GetString("metric", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid merge parameters: %v", err)), nil
	}
	cfg.Cumulative = request.GetBool("cumulative", cfg.Cumulative)

	start := time.Now()
	result, err := core.BuildMerge(core.WithSuppressHeader(ctx), cfg, h.client, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("merge failed: %v", err)), nil
	}

	return renderJSON(cfg, func(buf *bytes.Buffer) error {
		return outwriter.PrintMergeResults(buf, result, cfg, time.Since(start))
	}), nil
}

func (h *toolHandler) handleTrendPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	id, err := eventID(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid trend parameters: %v", err)), nil
	}
	cfg.EventIDs = []int{id}
	cfg.Closed = request.GetBool("closed", cfg.Closed)
	if tension := request.GetFloat("tension", 0); tension != 0 {
		if tension < 0 || tension > contract.MaxTension {
			return mcp.NewToolResultError(fmt.Sprintf("invalid trend parameters: tension must be in (0, %.1f]", contract.MaxTension)), nil
		}
		cfg.Tension = tension
	}
	if err := cfg.ApplyMetric(request.GetString("metric", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid trend parameters: %v", err)), nil
	}

	start := time.Now()
	result, err := core.BuildTrend(core.WithSuppressHeader(ctx), cfg, h.client, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("trend failed: %v", err)), nil
	}

	return renderJSON(cfg, func(buf *bytes.Buffer) error {
		return outwriter.PrintTrendResults(buf, result, cfg, time.Since(start))
	}), nil
}

func (h *toolHandler) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(request.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("invalid search parameters: query cannot be empty"), nil
	}

	result, err := h.client.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(result), nil
}

// renderJSON runs one of the JSON printers into a text result.
func renderJSON(cfg *contract.Config, render func(*bytes.Buffer) error) *mcp.CallToolResult {
	cfg.Output = schema.JSONOut
	cfg.OutputFile = ""

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering failed: %v", err))
	}
	return mcp.NewToolResultText(buf.String())
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/outwriter"
	"github.com/huangsam/repodex/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	reader *outwriter.IndexReader
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// readError turns a reader error into a tool error, hinting at a missing build.
func readError(what string, err error) *mcp.CallToolResult {
	if errors.Is(err, outwriter.ErrArtifactNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("%s not found: %v (run 'repodex build' first?)", what, err))
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", what, err))
}

func (h *toolHandler) handleGetManifest(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manifest, err := h.reader.Manifest()
	if err != nil {
		return readError("manifest", err), nil
	}
	return jsonResult(manifest)
}

func (h *toolHandler) handleGetShard(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	shard, err := h.reader.Shard(name)
	if err != nil {
		return readError("shard", err), nil
	}
	if l := request.GetInt("limit", 0); l > 0 && len(shard.Items) > l {
		shard.Items = shard.Items[:l]
	}
	return jsonResult(shard)
}

func (h *toolHandler) handleGetProject(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug := request.GetString("slug", "")
	if slug == "" {
		return mcp.NewToolResultError("slug is required"), nil
	}
	detail, err := h.reader.Detail(slug)
	if err != nil {
		return readError("project", err), nil
	}
	return jsonResult(detail)
}

func (h *toolHandler) handleSearchProjects(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := outwriter.SearchQuery{
		Text:        request.GetString("query", ""),
		Tag:         request.GetString("tag", ""),
		Source:      schema.Source(request.GetString("source", "")),
		HealthLabel: schema.HealthLabel(request.GetString("health_label", "")),
		Limit:       request.GetInt("limit", contract.DefaultResultLimit),
	}
	if q.Source != "" {
		if _, ok := schema.ValidSources[q.Source]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid source '%s'. must be github or huggingface", q.Source)), nil
		}
	}
	if q.Limit < 1 || q.Limit > contract.MaxResultLimit {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be between 1 and %d", contract.MaxResultLimit)), nil
	}

	items, err := h.reader.Search(q)
	if err != nil {
		return readError("index items", err), nil
	}
	return jsonResult(map[string]any{"count": len(items), "items": items})
}

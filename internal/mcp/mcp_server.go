// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/repodex/internal/outwriter"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the repodex MCP server without starting it.
// Tools read the index under outDir on every call. This is exposed for unit testing.
func NewMCPServer(outDir, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Repodex Catalog Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{reader: outwriter.NewIndexReader(outDir)}

	// --- 1. Tool: get_manifest ---
	s.AddTool(mcp.NewTool("get_manifest",
		mcp.WithDescription("Return the manifest of the latest build: run id, totals and every shard with its item count."),
	), h.handleGetManifest)

	// --- 2. Tool: get_shard ---
	s.AddTool(mcp.NewTool("get_shard",
		mcp.WithDescription("Return the projects of one shard, ranked by score."),
		mcp.WithString("name", mcp.Description("Shard name as listed in the manifest, e.g. 'source-github', 'tag-vision' or 'lens-hidden-gems'."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of projects returned.")),
	), h.handleGetShard)

	// --- 3. Tool: get_project ---
	s.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Return the full record of one project: scores, health signals, momentum and tags."),
		mcp.WithString("slug", mcp.Description("Project slug as found in index items, e.g. 'github-org-repo'."), mcp.Required()),
	), h.handleGetProject)

	// --- 4. Tool: search_projects ---
	s.AddTool(mcp.NewTool("search_projects",
		mcp.WithDescription("Search the index by text and facets. Results are ranked by score."),
		mcp.WithString("query", mcp.Description("Case-insensitive text matched against name, full name and description.")),
		mcp.WithString("tag", mcp.Description("Only projects carrying this tag.")),
		mcp.WithString("source", mcp.Description("Only projects from this catalog."), mcp.Enum("github", "huggingface")),
		mcp.WithString("health_label", mcp.Description("Only projects with this health label."), mcp.Enum("alive", "steady", "decaying")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results. Defaults to 25.")),
	), h.handleSearchProjects)

	return s
}

// StartMCPServer serves the catalog tools over stdio.
func StartMCPServer(_ context.Context, outDir, version string) error {
	s := NewMCPServer(outDir, version)
	return server.ServeStdio(s)
}

// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes drift inspection tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/corporealshift/driftwatcher/internal/docfs"
	"github.com/corporealshift/driftwatcher/internal/drift"
	"github.com/corporealshift/driftwatcher/internal/frontmatter"
	"github.com/corporealshift/driftwatcher/internal/reconcile"
	"github.com/corporealshift/driftwatcher/internal/report"
)

// Server wraps the MCP server with drift tools. Every tool call scans
// the filesystem fresh so results never go stale between calls.
type Server struct {
	mcp    *server.MCPServer
	eng    *drift.Engine
	target string
}

// New creates a new MCP server with all drift tools registered. target
// is the default scan scope; tools accept an optional path override.
func New(eng *drift.Engine, target string) *Server {
	s := &Server{eng: eng, target: target}

	s.mcp = server.NewMCPServer(
		"Driftwatcher",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("report_drift",
		mcp.WithDescription("Scan tracked documentation and report the status of every "+
			"tracked entry as JSON (document path -> pattern -> CURRENT/DRIFTED/MISSING/INVALID)."),
		mcp.WithString("path", mcp.Description("Optional file or directory to scan (defaults to the configured target)")),
	), s.reportDrift)

	s.mcp.AddTool(mcp.NewTool("validate_tracking",
		mcp.WithDescription("Check that every tracked entry is well-formed: frontmatter parses, "+
			"hashes are present, and patterns resolve to existing files."),
		mcp.WithString("path", mcp.Description("Optional file or directory to validate (defaults to the configured target)")),
	), s.validateTracking)

	s.mcp.AddTool(mcp.NewTool("list_tracked",
		mcp.WithDescription("List the tracked patterns and recorded hashes of every document, "+
			"without hashing any source files."),
		mcp.WithString("path", mcp.Description("Optional file or directory to list (defaults to the configured target)")),
	), s.listTracked)

	s.mcp.AddTool(mcp.NewTool("accept_drift",
		mcp.WithDescription("Accept the current state of one tracked entry after reviewing the "+
			"documentation: re-records the hash of a DRIFTED entry, or removes a MISSING one. "+
			"Read the contract first via the get_frontmatter_contract tool or the "+
			"driftwatcher://frontmatter-format resource."),
		mcp.WithString("doc", mcp.Required(), mcp.Description("Path to the Markdown document")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Tracked pattern exactly as it appears in the document")),
	), s.acceptDrift)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_contract",
		mcp.WithDescription("Returns the canonical driftwatcher frontmatter contract. "+
			"Call this before editing tracked blocks to ensure correct structure."),
	), s.getFrontmatterContract)

	// Resource: frontmatter format contract.
	s.mcp.AddResource(
		mcp.NewResource("driftwatcher://frontmatter-format", "Frontmatter Format Contract",
			mcp.WithResourceDescription("Canonical driftwatcher tracked-block format that all documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// scanTarget returns the optional path argument, falling back to the
// configured target.
func (s *Server) scanTarget(req mcp.CallToolRequest) string {
	if p, err := req.RequireString("path"); err == nil && p != "" {
		return p
	}
	return s.target
}

func (s *Server) reportDrift(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.eng.Scan(ctx, s.scanTarget(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report.Map(res), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) validateTracking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.eng.Scan(ctx, s.scanTarget(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var problems []string
	checked := 0
	for _, rep := range res.Docs {
		if rep.Err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", rep.Doc, rep.Err))
			continue
		}
		checked += len(rep.Records)
		for _, rec := range rep.Records {
			switch rec.Status {
			case drift.StatusInvalid:
				if rec.StoredHash == "" {
					problems = append(problems, fmt.Sprintf("%s: entry %q has no hash", rep.Doc, rec.Spec))
				} else {
					problems = append(problems, fmt.Sprintf("%s: pattern %q is invalid", rep.Doc, rec.Spec))
				}
			case drift.StatusMissing:
				problems = append(problems, fmt.Sprintf("%s: pattern %q matches no files", rep.Doc, rec.Spec))
			}
		}
	}

	if len(problems) > 0 {
		return mcp.NewToolResultError(strings.Join(problems, "\n")), nil
	}
	if checked == 0 {
		return mcp.NewToolResultText("no tracked entries found"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("all %d tracked entries are valid", checked)), nil
}

func (s *Server) listTracked(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := docfs.FindDocs(s.scanTarget(req), s.eng.Extensions())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tracked := make(map[string]map[string]string)
	for _, docPath := range docs {
		data, readErr := docfs.ReadDocument(docPath)
		if readErr != nil {
			continue
		}
		doc, parseErr := frontmatter.Parse(data)
		if parseErr != nil || !doc.HasTracking {
			continue
		}
		entries := make(map[string]string, len(doc.Entries))
		for _, e := range doc.Entries {
			entries[e.Pattern] = e.Hash
		}
		tracked[docPath] = entries
	}

	if len(tracked) == 0 {
		return mcp.NewToolResultText("no tracked documents found"), nil
	}
	out, _ := json.MarshalIndent(tracked, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) acceptDrift(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docPath, err := req.RequireString("doc")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.eng.Scan(ctx, docPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var rec *drift.Record
	var doc string
	for _, rep := range res.Docs {
		if rep.Err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", rep.Doc, rep.Err)), nil
		}
		for i := range rep.Records {
			if rep.Records[i].Spec == pattern {
				rec = &rep.Records[i]
				doc = rep.Doc
				break
			}
		}
	}
	if rec == nil {
		return mcp.NewToolResultError(fmt.Sprintf("pattern %q is not tracked in %s", pattern, docPath)), nil
	}

	switch rec.Status {
	case drift.StatusDrifted, drift.StatusMissing:
	case drift.StatusCurrent:
		return mcp.NewToolResultError(fmt.Sprintf("pattern %q is current, nothing to accept", pattern)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("pattern %q is %s and cannot be accepted", pattern, rec.Status)), nil
	}

	item := reconcile.Item{Doc: doc, Record: *rec, Selected: true}
	if err := reconcile.NewUpdater(nil).Apply([]reconcile.Item{item}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if rec.Status == drift.StatusMissing {
		return mcp.NewToolResultText(fmt.Sprintf("removed %q from %s", pattern, doc)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated hash for %q in %s", pattern, doc)), nil
}

func (s *Server) getFrontmatterContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontmatterContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "driftwatcher://frontmatter-format",
			MIMEType: "text/markdown",
			Text:     FrontmatterContract,
		},
	}, nil
}

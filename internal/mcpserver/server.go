// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the Kyuubi document to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/kyuubi/internal/models"
	"github.com/starford/kyuubi/internal/parser"
	"github.com/starford/kyuubi/internal/render"
	"github.com/starford/kyuubi/internal/transform"
)

const syntaxURI = "kyuubi://syntax"

// DocumentService is the subset of the document holder the tools need.
type DocumentService interface {
	Snapshot() models.Document
	Set(ctx context.Context, text, origin string) models.Document
}

// Renderer turns transformed markdown into HTML.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Server wraps the MCP server with Kyuubi tools.
type Server struct {
	mcp      *server.MCPServer
	doc      DocumentService
	renderer Renderer
}

// New creates a new MCP server with all tools registered.
func New(doc DocumentService, renderer Renderer, version string) *Server {
	s := &Server{doc: doc, renderer: renderer}

	s.mcp = server.NewMCPServer(
		"Kyuubi",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Read the raw Markdown of the note open in the editor."),
	), s.getDocument)

	s.mcp.AddTool(mcp.NewTool("set_document",
		mcp.WithDescription("Replace the whole note with new Markdown. Open editor tabs update live. "+
			"Read the syntax guide first via the get_syntax tool or the "+syntaxURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Complete new Markdown text")),
	), s.setDocument)

	s.mcp.AddTool(mcp.NewTool("transform_markdown",
		mcp.WithDescription("Rewrite wiki-links, tags and embeds into standard Markdown and render HTML, "+
			"without touching the note."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown source")),
		mcp.WithBoolean("html", mcp.Description("Also return rendered HTML")),
	), s.transformMarkdown)

	s.mcp.AddTool(mcp.NewTool("get_outline",
		mcp.WithDescription("Return the note's title, headings, wiki-link targets, tags and embeds as JSON."),
	), s.getOutline)

	s.mcp.AddTool(mcp.NewTool("get_syntax",
		mcp.WithDescription("Return the guide to the note syntax (wiki-links, tags, embeds)."),
	), s.getSyntax)

	s.mcp.AddResource(
		mcp.NewResource(syntaxURI, "Note Syntax",
			mcp.WithResourceDescription("Wiki-link, tag and embed syntax understood by the preview."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSyntaxResource,
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

func (s *Server) getDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.doc.Snapshot().Raw), nil
}

func (s *Server) setDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc := s.doc.Set(ctx, content, models.OriginMCP)
	return mcp.NewToolResultText(fmt.Sprintf("saved revision %d (%d bytes)", doc.Revision, len(doc.Raw))), nil
}

func (s *Server) transformMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	markdown := transform.Transform(content)
	if !req.GetBool("html", false) {
		return mcp.NewToolResultText(markdown), nil
	}

	html, err := s.renderer.Render(markdown)
	if err != nil {
		slog.Error("mcp: render failed", slog.String("error", err.Error()))
		html = render.Fallback(markdown)
	}
	out, _ := json.MarshalIndent(map[string]string{"markdown": markdown, "html": html}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(parser.Inspect(s.doc.Snapshot().Raw), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getSyntax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SyntaxGuide), nil
}

func (s *Server) readSyntaxResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      syntaxURI,
			MIMEType: "text/markdown",
			Text:     SyntaxGuide,
		},
	}, nil
}

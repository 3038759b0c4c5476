// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Ansuz note store for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/normalize"
	"github.com/starford/ansuz/internal/notestore"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp   *server.MCPServer
	store *notestore.Store
}

// New creates a new MCP server with all Ansuz tools registered.
func New(store *notestore.Store) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("save_note",
		mcp.WithDescription("Save a text note with optional comma-separated tags and source provenance."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Note text")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags (normalized server-side)")),
		mcp.WithString("url", mcp.Description("Source page URL")),
		mcp.WithString("title", mcp.Description("Source page title")),
	), s.saveNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Substring search across note text, source titles and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes, optionally filtered by an exact tag."),
		mcp.WithString("tag", mcp.Description("Optional tag to filter by (exact match)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a single note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note by id. Deleting an unknown id succeeds. "+
			"Tag usage counts are not decremented until refresh_tag_statistics runs."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List the tag index: per-tag usage counts, timestamps and display colors."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("tag_statistics",
		mcp.WithDescription("Get the derived tag view: recent tags, popular tags, totals."),
	), s.tagStatistics)

	s.mcp.AddTool(mcp.NewTool("refresh_tag_statistics",
		mcp.WithDescription("Recompute tag usage counts from the notes collection. "+
			"Run after deletes to repair drifted counts."),
	), s.refreshStatistics)

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

func (s *Server) saveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text = normalize.CleanText(text)
	if text == "" {
		return mcp.NewToolResultError("text must not be empty"), nil
	}

	var rawURL, title, tags string
	if v, err := req.RequireString("url"); err == nil {
		rawURL = v
	}
	if v, err := req.RequireString("title"); err == nil {
		title = v
	}
	if v, err := req.RequireString("tags"); err == nil {
		tags = v
	}
	src := models.Source{
		URL:    rawURL,
		Title:  normalize.CleanText(title),
		Domain: normalize.Domain(rawURL),
	}
	content := models.NewTextNote(text, src, normalize.ParseTags(tags))

	note, err := s.store.CreateNote(ctx, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(note)
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.store.SearchNotes(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(notes)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var tag string
	if v, err := req.RequireString("tag"); err == nil {
		tag = v
	}
	var notes []models.Note
	var err error
	if tag != "" {
		notes, err = s.store.GetNotesByTag(ctx, tag)
	} else {
		notes, err = s.store.GetAllNotes(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(notes)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(note)
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s", id)), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.store.AllTags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tags)
}

func (s *Server) tagStatistics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.store.Statistics(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats)
}

func (s *Server) refreshStatistics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.store.RefreshStatistics(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

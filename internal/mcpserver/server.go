// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the reading list to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/itemservice"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

const contractURI = "folio://item-format"

// Server wraps the MCP server with reading-list tools.
type Server struct {
	mcp *server.MCPServer
	svc *itemservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *itemservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List reading-list items with their display ids. "+
			"The inbox holds work in progress; the archive holds finished and reference items."),
		mcp.WithString("status", mcp.Description("Only items with this status"), mcp.Enum("todo", "doing", "done")),
		mcp.WithString("list", mcp.Description("Only items in this list"), mcp.Enum("inbox", "archive")),
	), s.listItems)

	s.mcp.AddTool(mcp.NewTool("get_item",
		mcp.WithDescription("Get one item by display id, stable id, or id prefix (4+ characters)."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Item reference")),
	), s.getItem)

	s.mcp.AddTool(mcp.NewTool("add_item",
		mcp.WithDescription("Add an item to the reading list. Read the item contract first via "+
			"get_item_contract or the "+contractURI+" resource. Fails when the inbox is full "+
			"and the overflow strategy is abort."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Title of the item")),
		mcp.WithString("type", mcp.Description("Item type"), mcp.Enum(typeNames()...)),
		mcp.WithString("author", mcp.Description("Author or creator")),
		mcp.WithString("link", mcp.Description("URL of the item")),
		mcp.WithString("note", mcp.Description("Free-form note")),
		mcp.WithString("kind", mcp.Description("reference items skip the inbox"), mcp.Enum("normal", "reference")),
	), s.addItem)

	s.mcp.AddTool(mcp.NewTool("set_status",
		mcp.WithDescription("Change an item's status. done archives inbox items; todo or doing "+
			"reinstates archived items into the inbox when there is room."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Item reference")),
		mcp.WithString("status", mcp.Required(), mcp.Enum("todo", "doing", "done")),
	), s.setStatus)

	s.mcp.AddTool(mcp.NewTool("archive_item",
		mcp.WithDescription("Move an inbox item to the archive without changing its status."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Item reference")),
	), s.archiveItem)

	s.mcp.AddTool(mcp.NewTool("search_items",
		mcp.WithDescription("Full-text search over item names, authors, notes and links in both lists."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchItems)

	s.mcp.AddTool(mcp.NewTool("get_item_contract",
		mcp.WithDescription("Returns the item format and lifecycle rules. "+
			"Call this before adding or changing items."),
	), s.getItemContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Item Format Contract",
			mcp.WithResourceDescription("Fields, types and lifecycle of reading-list items."),
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

func typeNames() []string {
	out := make([]string, len(models.ItemTypes))
	for i, t := range models.ItemTypes {
		out[i] = string(t)
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// errorResult turns a service error into a tool error the model can act on.
func errorResult(err error) (*mcp.CallToolResult, error) {
	var full *apperr.InboxFullError
	if errors.As(err, &full) {
		return mcp.NewToolResultError(full.Error() + "\nOptions:\n- " + strings.Join(full.Remediation(), "\n- ")), nil
	}
	return mcp.NewToolResultError(err.Error()), nil
}

func (s *Server) listItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var f itemservice.Filter
	if v := req.GetString("status", ""); v != "" {
		st, err := models.ParseStatus(v)
		if err != nil {
			return errorResult(err)
		}
		f.Status = st
	}
	switch v := storage.List(req.GetString("list", "")); v {
	case "", storage.Inbox, storage.Archive:
		f.List = v
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown list %q", v)), nil
	}

	items, err := s.svc.List(ctx, f)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(items)
}

func (s *Server) getItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := s.svc.Get(ctx, ref)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(item)
}

func (s *Server) addItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Add(ctx, models.NewItemParams{
		Name:   strings.TrimSpace(name),
		Type:   req.GetString("type", ""),
		Author: req.GetString("author", ""),
		Link:   req.GetString("link", ""),
		Note:   req.GetString("note", ""),
		Kind:   req.GetString("kind", ""),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(res)
}

func (s *Server) setStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := models.ParseStatus(raw)
	if err != nil {
		return errorResult(err)
	}

	res, err := s.svc.SetStatus(ctx, ref, status)
	if err != nil {
		return errorResult(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s -> %s", res.Item.Name, res.Transition.OldStatus, res.Transition.NewStatus)
	switch {
	case !res.Transition.StatusChanged:
		b.WriteString(" (unchanged)")
	case len(res.MovedToArchive) > 0:
		b.WriteString(", moved to archive")
	case res.MovedToInbox:
		b.WriteString(", moved back to inbox")
	}
	for _, ev := range res.OverflowItems {
		fmt.Fprintf(&b, "\narchived to make room: %s", ev.Name)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) archiveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Archive(ctx, ref)
	if err != nil {
		return errorResult(err)
	}
	if !res.Moved {
		return mcp.NewToolResultText(fmt.Sprintf("already archived: %s", res.Item.Name)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("archived: %s", res.Item.Name)), nil
}

func (s *Server) searchItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(results)
}

func (s *Server) getItemContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ItemFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     ItemFormatContract,
		},
	}, nil
}
